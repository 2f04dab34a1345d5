package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/lostfound-backend/api/responses"
	"github.com/angelmondragon/lostfound-backend/internal/audit"
	"github.com/angelmondragon/lostfound-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/lostfound-backend/pkg/errors"
	"github.com/angelmondragon/lostfound-backend/pkg/logger"
)

const (
	defaultLoginHistoryLimit = 50
	maxLoginHistoryLimit     = 200
)

// LoginHistory reads a user's recorded logins.
type LoginHistory interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.LoginAuditEntry, error)
}

// LoginHistoryResponse wraps the entries of one user.
type LoginHistoryResponse struct {
	UserID  uuid.UUID        `json:"user_id"`
	Entries []audit.EntryDTO `json:"entries"`
}

// UserLoginHistory lists a user's logins, newest first. Mounted behind
// RequireStaff.
func UserLoginHistory(history LoginHistory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "login history unavailable"))
			return
		}

		userID, err := uuid.Parse(chi.URLParam(r, "userID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.NewValidation("user_id", "must be a UUID"))
			return
		}
		limit, err := parseHistoryLimit(r.URL.Query().Get("limit"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := history.ListByUser(r.Context(), userID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list login history"))
			return
		}
		responses.WriteSuccess(w, LoginHistoryResponse{UserID: userID, Entries: audit.FromModels(rows)})
	}
}

func parseHistoryLimit(raw string) (int, error) {
	if raw == "" {
		return defaultLoginHistoryLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, pkgerrors.NewValidation("limit", "must be a positive integer")
	}
	if n > maxLoginHistoryLimit {
		n = maxLoginHistoryLimit
	}
	return n, nil
}
