package controllers

import (
	"net/http"
	"strings"

	"github.com/autoads/autoads-backend/api/responses"
	"github.com/autoads/autoads-backend/api/validators"
	"github.com/autoads/autoads-backend/internal/media"
	"github.com/autoads/autoads-backend/pkg/config"
	"github.com/autoads/autoads-backend/pkg/enums"
	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/autoads/autoads-backend/pkg/logger"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the file size limit; the service enforces the exact file limit.
const multipartOverhead = 64 << 10

// UploadLimits caps multipart request bodies.
type UploadLimits struct {
	ImageBytes      int64
	AvatarBytes     int64
	CSVBytes        int64
	FormMemoryBytes int64
}

// UploadLimitsFromConfig maps the media and metrics import configuration.
func UploadLimitsFromConfig(cfg *config.Config) UploadLimits {
	return UploadLimits{
		ImageBytes:      cfg.Media.MaxImageBytes(),
		AvatarBytes:     cfg.Media.MaxAvatarBytes(),
		CSVBytes:        cfg.Metrics.MaxUploadBytes(),
		FormMemoryBytes: int64(cfg.Media.MaxFormMemMB) << 20,
	}
}

type deleteMediaRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// MediaUpload stores the multipart "file" field; the optional "kind" field
// selects ad_image (default) or avatar.
func MediaUpload(svc media.Service, limits UploadLimits, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("media"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := validators.ReadFormFile(w, r, "file", limits.ImageBytes+multipartOverhead, limits.FormMemoryBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer file.Close()

		kind := enums.MediaKindAdImage
		if raw := strings.TrimSpace(r.FormValue("kind")); raw != "" {
			parsed, err := enums.ParseMediaKind(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid kind").WithDetails(map[string]string{"kind": "must be ad_image or avatar"}))
				return
			}
			kind = parsed
		}

		out, err := svc.Upload(r.Context(), userID, media.UploadInput{
			Kind:        kind,
			FileName:    file.Name,
			ContentType: file.ContentType,
			Body:        file.File,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}

// MediaDelete removes an object the caller uploaded earlier.
func MediaDelete(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("media"))
			return
		}
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body deleteMediaRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, body.URL); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
