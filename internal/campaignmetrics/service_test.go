package campaignmetrics

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/autoads/autoads-backend/pkg/enums"
	pkgerrors "github.com/autoads/autoads-backend/pkg/errors"
	"github.com/autoads/autoads-backend/pkg/events"
	"github.com/autoads/autoads-backend/pkg/logger"
	"github.com/autoads/autoads-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	stored      map[uuid.UUID][]Row
	insertErr   error
	fetchErr    error
	deleteErr   error
	insertCalls int
	fetchCalls  int
}

func newStubRepo() *stubRepo {
	return &stubRepo{stored: map[uuid.UUID][]Row{}}
}

func (r *stubRepo) InsertRows(_ context.Context, ownerID, _ uuid.UUID, rows []Row) error {
	r.insertCalls++
	if r.insertErr != nil {
		return r.insertErr
	}
	r.stored[ownerID] = append(r.stored[ownerID], rows...)
	return nil
}

func (r *stubRepo) FetchRows(_ context.Context, ownerID uuid.UUID) ([]Row, error) {
	r.fetchCalls++
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	return r.stored[ownerID], nil
}

func (r *stubRepo) DeleteAllRows(_ context.Context, ownerID uuid.UUID) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	n := int64(len(r.stored[ownerID]))
	delete(r.stored, ownerID)
	return n, nil
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.events = append(p.events, evt)
	return p.err
}

const sampleCSV = "Campaign Name,Ad Name,Amount Spent (BRL),Reach,Link Clicks,Leads\n" +
	"A,Civic,100,1000,50,5\n" +
	"\n" +
	"A,Corolla,50,500,10,0\n" +
	"B,Onix,200,2000,100,10\n"

func newTestService(t *testing.T, repo Repository, pub events.Publisher, m *metrics.ImportMetrics) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Publisher: pub,
		Metrics:   m,
		Logger:    logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func TestImportStoresRowsAndReturnsDashboard(t *testing.T) {
	repo := newStubRepo()
	pub := &recordingPublisher{}
	svc := newTestService(t, repo, pub, nil)
	user := uuid.New()

	res, err := svc.Import(context.Background(), user, ImportInput{FileName: "export.csv", Body: strings.NewReader(sampleCSV)})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Imported)
	assert.NotEqual(t, uuid.Nil, res.ImportID)
	assert.Equal(t, 350.0, res.Dashboard.Totals.Spend)
	assert.Equal(t, 3500.0, res.Dashboard.Totals.Reach)
	assert.InDelta(t, 4.57, res.Dashboard.Totals.CTR, 0.01)
	require.Len(t, res.Dashboard.Groups, 2)
	assert.Len(t, repo.stored[user], 3)

	require.Len(t, pub.events, 1)
	assert.Equal(t, enums.EventMetricsImported, pub.events[0].Type)
	payload, ok := pub.events[0].Data.(events.MetricsImported)
	require.True(t, ok)
	assert.Equal(t, 3, payload.Rows)
	assert.Equal(t, "export.csv", payload.FileName)
}

func TestImportIncludesPreviouslyStoredRows(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, nil, nil)
	user := uuid.New()
	repo.stored[user] = []Row{{CampaignName: "Old", AmountSpent: 10}}

	res, err := svc.Import(context.Background(), user, ImportInput{Body: strings.NewReader(sampleCSV)})
	require.NoError(t, err)
	assert.Equal(t, 360.0, res.Dashboard.Totals.Spend)
	assert.Equal(t, 4, res.Dashboard.TotalRows)
}

func TestImportWithoutUserTouchesNothing(t *testing.T) {
	repo := newStubRepo()
	reg := prometheus.NewRegistry()
	svc := newTestService(t, repo, nil, metrics.NewImportMetrics(reg))

	_, err := svc.Import(context.Background(), uuid.Nil, ImportInput{Body: strings.NewReader(sampleCSV)})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.Zero(t, repo.insertCalls)
	assert.Zero(t, repo.fetchCalls)
}

func TestImportErrorMapping(t *testing.T) {
	user := uuid.New()
	cases := []struct {
		name string
		body io.Reader
		repo *stubRepo
		code pkgerrors.Code
	}{
		{name: "read failure", body: failingReader{}, repo: newStubRepo(), code: pkgerrors.CodeFileRead},
		{name: "empty file", body: strings.NewReader(""), repo: newStubRepo(), code: pkgerrors.CodeParse},
		{name: "header only", body: strings.NewReader("Campaign Name,Reach\n"), repo: newStubRepo(), code: pkgerrors.CodeParse},
		{name: "insert failure", body: strings.NewReader(sampleCSV), repo: &stubRepo{stored: map[uuid.UUID][]Row{}, insertErr: errors.New("db down")}, code: pkgerrors.CodeDependency},
		{name: "refetch failure", body: strings.NewReader(sampleCSV), repo: &stubRepo{stored: map[uuid.UUID][]Row{}, fetchErr: errors.New("db down")}, code: pkgerrors.CodeDependency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			svc := newTestService(t, tc.repo, pub, nil)
			_, err := svc.Import(context.Background(), user, ImportInput{Body: tc.body})
			require.Error(t, err)
			assert.Equal(t, tc.code, pkgerrors.As(err).Code())
			assert.Empty(t, pub.events)
		})
	}
}

func TestImportPublishFailureIsNotFatal(t *testing.T) {
	svc := newTestService(t, newStubRepo(), &recordingPublisher{err: errors.New("pubsub down")}, nil)
	res, err := svc.Import(context.Background(), uuid.New(), ImportInput{Body: strings.NewReader(sampleCSV)})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
}

func TestDashboardClearAndExport(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo, nil, nil)
	user := uuid.New()
	repo.stored[user] = sampleRows()

	d, err := svc.Dashboard(context.Background(), user, Filter{Day: "2025-03-02"})
	require.NoError(t, err)
	assert.Equal(t, 2, d.FilteredRows)
	assert.Equal(t, 350.0, d.Totals.Spend)

	exported, err := svc.Export(context.Background(), user, Filter{Day: "2025-03-02"})
	require.NoError(t, err)
	assert.Equal(t, "campanhas-2025-03-02.xlsx", exported.FileName)
	assert.Equal(t, ExportContentType, exported.ContentType)
	assert.NotEmpty(t, exported.Body)

	deleted, err := svc.Clear(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	_, err = svc.Dashboard(context.Background(), uuid.Nil, Filter{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	repo.deleteErr = errors.New("db down")
	_, err = svc.Clear(context.Background(), user)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Repo: newStubRepo()})
	require.Error(t, err)
}
