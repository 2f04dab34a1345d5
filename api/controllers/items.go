package controllers

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/lostfound-backend/api/middleware"
	"github.com/angelmondragon/lostfound-backend/api/responses"
	"github.com/angelmondragon/lostfound-backend/api/validators"
	"github.com/angelmondragon/lostfound-backend/internal/items"
	"github.com/angelmondragon/lostfound-backend/internal/profiles"
	"github.com/angelmondragon/lostfound-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/lostfound-backend/pkg/errors"
	"github.com/angelmondragon/lostfound-backend/pkg/logger"
)

const (
	itemCreatedRedirect = "/"
	imageFormField      = "image"
)

// ItemForm describes the item report form for the view layer.
type ItemForm struct {
	Statuses    []enums.ItemStatus `json:"statuses"`
	Initial     map[string]string  `json:"initial"`
	MaxUploadMB int64              `json:"max_upload_mb"`
}

func newItemForm(status enums.ItemStatus, maxUploadBytes int64) ItemForm {
	return ItemForm{
		Statuses:    enums.ItemStatuses(),
		Initial:     map[string]string{"status": status.String()},
		MaxUploadMB: maxUploadBytes >> 20,
	}
}

// ItemDetail serves a single item. Unknown and malformed ids are 404.
func ItemDetail(svc items.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		item, err := svc.Get(r.Context(), chi.URLParam(r, "itemID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AddItemForm returns the blank add form with status defaulting to lost.
func AddItemForm(maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, newItemForm(enums.ItemStatusLost, maxUploadBytes))
	}
}

// ReportItemForm returns the add form with the status taken from the path.
func ReportItemForm(maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := enums.ReportStatus(chi.URLParam(r, "status"))
		responses.WriteSuccess(w, newItemForm(status, maxUploadBytes))
	}
}

// AddItem creates an item owned by the caller and redirects to the catalog.
func AddItem(svc profiles.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return createItem(svc, maxUploadBytes, logg, func(*http.Request) string { return "" })
}

// ReportItem creates an item with the status forced by the path.
func ReportItem(svc profiles.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return createItem(svc, maxUploadBytes, logg, func(r *http.Request) string {
		return enums.ReportStatus(chi.URLParam(r, "status")).String()
	})
}

func createItem(svc profiles.Service, maxUploadBytes int64, logg *logger.Logger, forcedStatus func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}
		userID, ok := middleware.UserUUIDFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		input, cleanup, err := decodeItemInput(w, r, maxUploadBytes)
		if cleanup != nil {
			defer cleanup()
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if status := forcedStatus(r); status != "" {
			input.Status = status
		}

		item, err := svc.ReportItem(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRedirect(w, r, itemCreatedRedirect, item)
	}
}

// decodeItemInput accepts either a JSON body or a multipart form with an
// optional image part.
func decodeItemInput(w http.ResponseWriter, r *http.Request, maxUploadBytes int64) (items.CreateInput, func(), error) {
	var input items.CreateInput
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType != "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		err := validators.DecodeJSON(r, &input)
		return input, nil, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return input, nil, pkgerrors.NewValidation(imageFormField, "upload is too large")
		}
		return input, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	input = items.CreateInput{
		Name:         r.FormValue("name"),
		Description:  r.FormValue("description"),
		Category:     r.FormValue("category"),
		Location:     r.FormValue("location"),
		Status:       r.FormValue("status"),
		ContactName:  r.FormValue("contact_name"),
		ContactEmail: r.FormValue("contact_email"),
	}

	file, header, err := r.FormFile(imageFormField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return input, cleanup, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image upload")
	default:
		prev := cleanup
		cleanup = func() {
			_ = file.Close()
			prev()
		}
		if header.Size > 0 || strings.TrimSpace(header.Filename) != "" {
			input.Image = &items.ImageUpload{Filename: header.Filename, Body: file}
		}
	}
	return input, cleanup, nil
}
