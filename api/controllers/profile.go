package controllers

import (
	"net/http"

	"github.com/autoads/autoads-backend/api/responses"
	"github.com/autoads/autoads-backend/api/validators"
	"github.com/autoads/autoads-backend/internal/profiles"
	"github.com/autoads/autoads-backend/pkg/logger"
)

type updateProfileRequest struct {
	FullName     string `json:"full_name" validate:"max=120"`
	BusinessName string `json:"business_name" validate:"max=120"`
	Phone        string `json:"phone" validate:"max=32"`
	DocumentID   string `json:"document_id" validate:"max=32"`
	About        string `json:"about" validate:"max=1000"`
}

// ProfileGet returns the caller's profile, empty when none is stored yet.
func ProfileGet(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("profile"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func ProfileUpdate(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("profile"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Update(r.Context(), userID, profiles.UpdateProfileInput{
			FullName:     body.FullName,
			BusinessName: body.BusinessName,
			Phone:        body.Phone,
			DocumentID:   body.DocumentID,
			About:        body.About,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ProfileAvatarUpload stores the multipart "file" field as the new avatar.
func ProfileAvatarUpload(svc profiles.Service, limits UploadLimits, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("profile"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := validators.ReadFormFile(w, r, "file", limits.AvatarBytes+multipartOverhead, limits.FormMemoryBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer file.Close()

		profile, err := svc.UploadAvatar(r.Context(), userID, profiles.AvatarInput{
			FileName:    file.Name,
			ContentType: file.ContentType,
			Body:        file.File,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func ProfileAvatarDelete(svc profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("profile"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.DeleteAvatar(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
