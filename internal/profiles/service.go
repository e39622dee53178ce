package profiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/autoads/autoads-backend/internal/media"
	"github.com/autoads/autoads-backend/pkg/db/models"
	"github.com/autoads/autoads-backend/pkg/enums"
	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/autoads/autoads-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxNameLength  = 120
	maxAboutLength = 1000
)

// Service exposes the caller's profile.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, input AvatarInput) (*ProfileDTO, error)
	DeleteAvatar(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
}

// ProfileDTO is the profile payload with the avatar fallback initials.
type ProfileDTO struct {
	UserID       uuid.UUID `json:"user_id"`
	FullName     string    `json:"full_name"`
	BusinessName string    `json:"business_name"`
	Phone        string    `json:"phone"`
	DocumentID   string    `json:"document_id"`
	About        string    `json:"about"`
	AvatarURL    *string   `json:"avatar_url"`
	Initials     string    `json:"initials"`
}

// UpdateProfileInput replaces the editable profile fields.
type UpdateProfileInput struct {
	FullName     string
	BusinessName string
	Phone        string
	DocumentID   string
	About        string
}

// AvatarInput is the uploaded avatar file.
type AvatarInput struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

type profileStore interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
}

type service struct {
	repo  profileStore
	media media.Service
	logg  *logger.Logger
}

// NewService builds the profile service. mediaSvc may be nil when object
// storage is disabled; avatar uploads then fail with a dependency error.
func NewService(repo profileStore, mediaSvc media.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, media: mediaSvc, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDTO(profile), nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error) {
	if err := validateUpdate(&input); err != nil {
		return nil, err
	}
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.FullName = input.FullName
	profile.BusinessName = input.BusinessName
	profile.Phone = input.Phone
	profile.DocumentID = input.DocumentID
	profile.About = input.About
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	return toDTO(profile), nil
}

func (s *service) UploadAvatar(ctx context.Context, userID uuid.UUID, input AvatarInput) (*ProfileDTO, error) {
	if s.media == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "object storage disabled")
	}
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	out, err := s.media.Upload(ctx, userID, media.UploadInput{
		Kind:        enums.MediaKindAvatar,
		FileName:    input.FileName,
		ContentType: input.ContentType,
		Body:        input.Body,
	})
	if err != nil {
		return nil, err
	}

	previous := profile.AvatarURL
	profile.AvatarURL = &out.URL
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save avatar")
	}
	if previous != nil && *previous != out.URL {
		s.removeObject(ctx, userID, *previous)
	}
	return toDTO(profile), nil
}

func (s *service) DeleteAvatar(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.AvatarURL == nil {
		return toDTO(profile), nil
	}
	previous := *profile.AvatarURL
	profile.AvatarURL = nil
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear avatar")
	}
	s.removeObject(ctx, userID, previous)
	return toDTO(profile), nil
}

// load returns the stored profile, or an empty unsaved one.
func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	profile, err := s.repo.FindByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Profile{UserID: userID}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profile, nil
}

func (s *service) removeObject(ctx context.Context, userID uuid.UUID, url string) {
	if s.media == nil {
		return
	}
	if err := s.media.Delete(ctx, userID, url); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"url": url, "error": err.Error()}), "remove old avatar failed")
	}
}

func validateUpdate(input *UpdateProfileInput) error {
	input.FullName = strings.TrimSpace(input.FullName)
	input.BusinessName = strings.TrimSpace(input.BusinessName)
	input.Phone = strings.TrimSpace(input.Phone)
	input.DocumentID = strings.TrimSpace(input.DocumentID)
	input.About = strings.TrimSpace(input.About)

	if len(input.FullName) > maxNameLength || len(input.BusinessName) > maxNameLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is too long")
	}
	if len(input.About) > maxAboutLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "about is too long")
	}
	return nil
}

func toDTO(p *models.Profile) *ProfileDTO {
	return &ProfileDTO{
		UserID:       p.UserID,
		FullName:     p.FullName,
		BusinessName: p.BusinessName,
		Phone:        p.Phone,
		DocumentID:   p.DocumentID,
		About:        p.About,
		AvatarURL:    p.AvatarURL,
		Initials:     Initials(p.FullName, p.BusinessName),
	}
}
