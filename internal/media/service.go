package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/autoads/autoads-backend/pkg/enums"
	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/autoads/autoads-backend/pkg/logger"
	"github.com/google/uuid"
)

// ObjectStore is the object storage surface used for uploads.
type ObjectStore interface {
	Upload(ctx context.Context, object, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, object string) error
	ObjectFromURL(raw string) (string, bool)
}

// Service uploads and removes user images.
type Service interface {
	Upload(ctx context.Context, userID uuid.UUID, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, userID uuid.UUID, publicURL string) error
}

// UploadInput is one multipart file.
type UploadInput struct {
	Kind        enums.MediaKind
	FileName    string
	ContentType string
	Body        io.Reader
}

// UploadOutput describes the stored object.
type UploadOutput struct {
	URL         string          `json:"url"`
	Key         string          `json:"key"`
	Kind        enums.MediaKind `json:"kind"`
	ContentType string          `json:"content_type"`
	SizeBytes   int64           `json:"size_bytes"`
}

// Limits caps upload sizes per kind.
type Limits struct {
	MaxImageBytes  int64
	MaxAvatarBytes int64
}

func (l Limits) forKind(kind enums.MediaKind) int64 {
	if kind == enums.MediaKindAvatar && l.MaxAvatarBytes > 0 {
		return l.MaxAvatarBytes
	}
	if l.MaxImageBytes > 0 {
		return l.MaxImageBytes
	}
	return 5 << 20
}

type service struct {
	store  ObjectStore
	limits Limits
	logg   *logger.Logger
	newID  func() uuid.UUID
}

// NewService constructs a media service backed by the provided object store.
func NewService(store ObjectStore, limits Limits, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, limits: limits, logg: logg, newID: uuid.New}, nil
}

func (s *service) Upload(ctx context.Context, userID uuid.UUID, input UploadInput) (*UploadOutput, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Kind == "" {
		input.Kind = enums.MediaKindAdImage
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}

	limit := s.limits.forKind(input.Kind)
	data, err := io.ReadAll(io.LimitReader(input.Body, limit+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeFileRead, err, "read upload")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if int64(len(data)) > limit {
		return nil, pkgerrors.New(pkgerrors.CodeTooLarge, fmt.Sprintf("file exceeds %d bytes", limit))
	}

	mimeType := detectMimeType(data, input.ContentType)
	if !isAllowedMime(input.Kind, mimeType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported file type").
			WithDetails(map[string]any{"allowed": allowedMimeDescription(input.Kind)})
	}

	key := BuildObjectKey(input.Kind, userID, s.newID(), mimeType)
	url, err := s.store.Upload(ctx, key, mimeType, bytes.NewReader(data))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload object")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"object":     key,
		"kind":       input.Kind.String(),
		"size_bytes": len(data),
	}), "media uploaded")

	return &UploadOutput{
		URL:         url,
		Key:         key,
		Kind:        input.Kind,
		ContentType: mimeType,
		SizeBytes:   int64(len(data)),
	}, nil
}

// Delete removes an object previously uploaded by userID. URLs that do not
// point at the bucket are ignored.
func (s *service) Delete(ctx context.Context, userID uuid.UUID, publicURL string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	object, ok := s.store.ObjectFromURL(strings.TrimSpace(publicURL))
	if !ok {
		return nil
	}
	if !ownsObject(userID, object) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "object belongs to another user")
	}
	if err := s.store.Delete(ctx, object); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete object")
	}
	return nil
}

// BuildObjectKey returns <prefix>/<user_id>/<id>.<ext>.
func BuildObjectKey(kind enums.MediaKind, userID, id uuid.UUID, mimeType string) string {
	ext, ok := extensionFor(mimeType)
	if !ok {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%s/%s.%s", kind.KeyPrefix(), userID, id, ext)
}

func ownsObject(userID uuid.UUID, object string) bool {
	parts := strings.SplitN(object, "/", 3)
	return len(parts) == 3 && parts[1] == userID.String()
}
