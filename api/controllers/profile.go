package controllers

import (
	"net/http"

	"github.com/angelmondragon/lostfound-backend/api/middleware"
	"github.com/angelmondragon/lostfound-backend/api/responses"
	"github.com/angelmondragon/lostfound-backend/api/validators"
	"github.com/angelmondragon/lostfound-backend/internal/profiles"
	pkgerrors "github.com/angelmondragon/lostfound-backend/pkg/errors"
	"github.com/angelmondragon/lostfound-backend/pkg/logger"
)

const profileRedirect = "/profile/"

// EditProfileForm is the current state of the editable fields.
type EditProfileForm struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Bio        string `json:"bio"`
}

// Profile serves the caller's profile with their reported items.
func Profile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, ok := loadProfile(w, r, svc, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// EditProfile returns the edit form pre-filled from the stored values.
func EditProfile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, ok := loadProfile(w, r, svc, logg)
		if !ok {
			return
		}
		form := EditProfileForm{
			FirstName: profile.User.FirstName,
			LastName:  profile.User.LastName,
			Email:     profile.User.Email,
		}
		if ext := profile.Extension; ext != nil {
			form.Phone = ext.Phone
			form.Department = ext.Department
			form.Bio = ext.Bio
		}
		responses.WriteSuccess(w, form)
	}
}

// UpdateProfile applies the edit form and redirects to the profile page.
func UpdateProfile(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body profiles.UpdateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.UpdateProfile(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRedirect(w, r, profileRedirect, profile)
	}
}

func loadProfile(w http.ResponseWriter, r *http.Request, svc profiles.Service, logg *logger.Logger) (*profiles.ProfileDTO, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
		return nil, false
	}
	userID, ok := middleware.UserUUIDFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return nil, false
	}
	profile, err := svc.GetProfile(r.Context(), userID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}
	return profile, true
}
