package campaignmetrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/autoads/autoads-backend/pkg/enums"
	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/autoads/autoads-backend/pkg/events"
	"github.com/autoads/autoads-backend/pkg/logger"
	"github.com/autoads/autoads-backend/pkg/metrics"
	"github.com/google/uuid"
)

// Service exposes the campaign metrics import and dashboard flows.
type Service interface {
	Import(ctx context.Context, userID uuid.UUID, input ImportInput) (*ImportResult, error)
	Dashboard(ctx context.Context, userID uuid.UUID, filter Filter) (*Dashboard, error)
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
	Export(ctx context.Context, userID uuid.UUID, filter Filter) (*ExportResult, error)
}

// ImportInput is one uploaded export file.
type ImportInput struct {
	FileName string
	Body     io.Reader
}

// ImportResult reports the stored import and the refreshed dashboard.
type ImportResult struct {
	ImportID  uuid.UUID `json:"import_id"`
	Imported  int       `json:"imported"`
	Dashboard Dashboard `json:"dashboard"`
}

// ExportResult is a rendered workbook.
type ExportResult struct {
	FileName    string
	ContentType string
	Body        []byte
}

// ServiceParams wires the metrics service.
type ServiceParams struct {
	Repo        Repository
	Publisher   events.Publisher
	Metrics     *metrics.ImportMetrics
	Logger      *logger.Logger
	ClickSource ClickSource
	Locale      string
}

type service struct {
	repo      Repository
	publisher events.Publisher
	metrics   *metrics.ImportMetrics
	logg      *logger.Logger
	src       ClickSource
	formatter Formatter
}

// NewService validates params and builds the service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("campaign metrics repository required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	publisher := params.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	src := params.ClickSource
	if src == "" {
		src = ClickSourceLinkClicks
	}
	return &service{
		repo:      params.Repo,
		publisher: publisher,
		metrics:   params.Metrics,
		logg:      params.Logger,
		src:       src,
		formatter: NewFormatter(params.Locale),
	}, nil
}

// Import parses the upload, stores every row for userID and returns the
// dashboard over all of the user's rows.
func (s *service) Import(ctx context.Context, userID uuid.UUID, input ImportInput) (*ImportResult, error) {
	if userID == uuid.Nil {
		return nil, s.fail(pkgerrors.New(pkgerrors.CodeUnauthorized, "user not authenticated"))
	}

	parsed, err := ParseReader(input.Body)
	if err != nil {
		return nil, s.fail(mapParseError(err))
	}
	if parsed.Count == 0 {
		return nil, s.fail(pkgerrors.New(pkgerrors.CodeParse, "file contains no data rows"))
	}

	importID := uuid.New()
	if err := s.repo.InsertRows(ctx, userID, importID, parsed.Rows); err != nil {
		return nil, s.fail(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store campaign metrics"))
	}

	rows, err := s.repo.FetchRows(ctx, userID)
	if err != nil {
		return nil, s.fail(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign metrics"))
	}

	s.metrics.IncImported(parsed.Count)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"import_id": importID.String(),
		"rows":      parsed.Count,
		"delimiter": string(parsed.Delimiter),
	})
	s.logg.Info(logCtx, "campaign metrics imported")

	actor := userID
	if err := s.publisher.Publish(ctx, events.Event{
		Type:    enums.EventMetricsImported,
		ActorID: &actor,
		Data: events.MetricsImported{
			ImportID: importID,
			UserID:   userID,
			Rows:     parsed.Count,
			FileName: strings.TrimSpace(input.FileName),
		},
	}); err != nil {
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "metrics_imported publish failed")
	}

	return &ImportResult{
		ImportID:  importID,
		Imported:  parsed.Count,
		Dashboard: BuildDashboard(rows, Filter{}, s.src, s.formatter),
	}, nil
}

func (s *service) Dashboard(ctx context.Context, userID uuid.UUID, filter Filter) (*Dashboard, error) {
	rows, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := BuildDashboard(rows, filter, s.src, s.formatter)
	return &d, nil
}

// Clear deletes every stored row of userID.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not authenticated")
	}
	deleted, err := s.repo.DeleteAllRows(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete campaign metrics")
	}
	s.logg.Info(s.logg.WithField(ctx, "deleted", deleted), "campaign metrics cleared")
	return deleted, nil
}

// Export renders the filtered rows as a workbook.
func (s *service) Export(ctx context.Context, userID uuid.UUID, filter Filter) (*ExportResult, error) {
	rows, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	body, err := BuildWorkbook(filter.Apply(rows), s.src)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render workbook")
	}
	return &ExportResult{
		FileName:    exportFileName(filter),
		ContentType: ExportContentType,
		Body:        body,
	}, nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) ([]Row, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not authenticated")
	}
	rows, err := s.repo.FetchRows(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign metrics")
	}
	return rows, nil
}

func (s *service) fail(err *pkgerrors.Error) error {
	s.metrics.IncFailure(string(err.Code()))
	return err
}

func mapParseError(err error) *pkgerrors.Error {
	switch {
	case errors.Is(err, ErrFileRead):
		return pkgerrors.Wrap(pkgerrors.CodeFileRead, err, ErrFileRead.Error())
	case errors.Is(err, ErrParse):
		return pkgerrors.Wrap(pkgerrors.CodeParse, err, ErrParse.Error()).WithDetails(map[string]string{"reason": err.Error()})
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse campaign metrics")
	}
}

func exportFileName(filter Filter) string {
	if day := strings.TrimSpace(filter.Day); day != "" {
		return fmt.Sprintf("campanhas-%s.xlsx", sanitizeFileToken(day))
	}
	return "campanhas.xlsx"
}

func sanitizeFileToken(v string) string {
	var b strings.Builder
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
