package engagement

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/autoads/autoads-backend/pkg/enums"
	"github.com/autoads/autoads-backend/pkg/events"
	"github.com/autoads/autoads-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type stubManager struct {
	already bool
	err     error
	checked []uuid.UUID
	deleted []uuid.UUID
}

func (s *stubManager) Claim(_ context.Context, _ string, id uuid.UUID) (bool, error) {
	s.checked = append(s.checked, id)
	return !s.already, s.err
}

func (s *stubManager) Release(_ context.Context, _ string, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubHandler struct {
	err    error
	called int
}

func (s *stubHandler) Handle(context.Context, events.Envelope) error {
	s.called++
	return s.err
}

type noopReceiver struct{}

func (noopReceiver) Receive(context.Context, func(context.Context, *gcppubsub.Message)) error {
	return nil
}

func buildMessage(t *testing.T, eventType enums.EventType, data any) *gcppubsub.Message {
	t.Helper()
	env, err := events.NewEnvelope(events.Event{Type: eventType, Data: data}, time.Now())
	require.NoError(t, err)
	body, err := json.Marshal(env)
	require.NoError(t, err)
	return &gcppubsub.Message{ID: "msg-1", Data: body, Attributes: env.Attributes()}
}

func newTestWorker(t *testing.T, handler Handler, manager *stubManager) *Worker {
	t.Helper()
	w, err := NewWorker(noopReceiver{}, handler, manager, nil, testLogger())
	require.NoError(t, err)
	return w
}

func TestProcessHandlesAndAcks(t *testing.T) {
	manager := &stubManager{}
	handler := &stubHandler{}
	w := newTestWorker(t, handler, manager)

	res := w.process(context.Background(), buildMessage(t, enums.EventAdViewed, events.AdEngagement{AdID: uuid.New()}))
	assert.False(t, res.nack)
	assert.Equal(t, 1, handler.called)
	assert.Len(t, manager.checked, 1)
}

func TestProcessSkipsDuplicates(t *testing.T) {
	manager := &stubManager{already: true}
	handler := &stubHandler{}
	w := newTestWorker(t, handler, manager)

	res := w.process(context.Background(), buildMessage(t, enums.EventAdViewed, nil))
	assert.False(t, res.nack)
	assert.Zero(t, handler.called)
}

func TestProcessRetryableErrorNacksAndClearsMarker(t *testing.T) {
	manager := &stubManager{}
	w := newTestWorker(t, &stubHandler{err: errors.New("bigquery down")}, manager)

	res := w.process(context.Background(), buildMessage(t, enums.EventAdViewed, nil))
	assert.True(t, res.nack)
	assert.Len(t, manager.deleted, 1)
}

func TestProcessNonRetryableErrorAcks(t *testing.T) {
	manager := &stubManager{}
	w := newTestWorker(t, &stubHandler{err: events.NewNonRetryableError(errors.New("bad payload"))}, manager)

	res := w.process(context.Background(), buildMessage(t, enums.EventAdViewed, nil))
	assert.False(t, res.nack)
	assert.Empty(t, manager.deleted)
}

func TestProcessInvalidEnvelopeAcks(t *testing.T) {
	manager := &stubManager{}
	handler := &stubHandler{}
	w := newTestWorker(t, handler, manager)

	res := w.process(context.Background(), &gcppubsub.Message{ID: "bad", Data: []byte("not json")})
	assert.False(t, res.nack)
	assert.Zero(t, handler.called)
	assert.Empty(t, manager.checked)
}

func TestProcessIdempotencyFailureNacks(t *testing.T) {
	w := newTestWorker(t, &stubHandler{}, &stubManager{err: errors.New("redis down")})
	res := w.process(context.Background(), buildMessage(t, enums.EventAdViewed, nil))
	assert.True(t, res.nack)
}

type fakeWriter struct {
	rows []AdEventRow
}

func (f *fakeWriter) InsertAdEvent(_ context.Context, row AdEventRow) error {
	f.rows = append(f.rows, row)
	return nil
}

type fakeNotifier struct {
	got []events.AdCreated
}

func (f *fakeNotifier) NotifyAdCreated(_ context.Context, evt events.AdCreated) error {
	f.got = append(f.got, evt)
	return nil
}

func decodeEnvelope(t *testing.T, msg *gcppubsub.Message) events.Envelope {
	t.Helper()
	env, err := events.DecodeEnvelope(msg.Data, msg.Attributes)
	require.NoError(t, err)
	return env
}

func TestRouterDispatch(t *testing.T) {
	writer := &fakeWriter{}
	notifier := &fakeNotifier{}
	r, err := NewRouter(writer, notifier, testLogger())
	require.NoError(t, err)
	ctx := context.Background()

	adID, ownerID := uuid.New(), uuid.New()
	click := decodeEnvelope(t, buildMessage(t, enums.EventAdWhatsAppClicked, events.AdEngagement{
		AdID: adID, OwnerID: ownerID, Slug: "civic", IP: "203.0.113.1", Total: 3,
	}))
	require.NoError(t, r.Handle(ctx, click))
	require.Len(t, writer.rows, 1)
	row := writer.rows[0]
	assert.Equal(t, "ad_whatsapp_clicked", row.EventType)
	assert.Equal(t, adID.String(), row.AdID)
	assert.Equal(t, ownerID.String(), row.OwnerID)
	require.NotNil(t, row.IP)
	assert.Equal(t, "203.0.113.1", *row.IP)
	assert.Nil(t, row.UserAgent)
	assert.EqualValues(t, 3, row.Total)
	assert.True(t, row.Payload.Valid)

	created := decodeEnvelope(t, buildMessage(t, enums.EventAdCreated, events.AdCreated{AdID: adID, Title: "Civic"}))
	require.NoError(t, r.Handle(ctx, created))
	require.Len(t, notifier.got, 1)
	assert.Equal(t, "Civic", notifier.got[0].Title)

	imported := decodeEnvelope(t, buildMessage(t, enums.EventMetricsImported, events.MetricsImported{Rows: 4}))
	require.NoError(t, r.Handle(ctx, imported))

	broken := created
	broken.Data = json.RawMessage(`"oops"`)
	assert.True(t, events.IsNonRetryable(r.Handle(ctx, broken)))

	unknown := created
	unknown.EventType = "ad_shared"
	assert.True(t, events.IsNonRetryable(r.Handle(ctx, unknown)))
}

func TestRouterWithoutSinksIsNoop(t *testing.T) {
	r, err := NewRouter(nil, nil, testLogger())
	require.NoError(t, err)
	env := decodeEnvelope(t, buildMessage(t, enums.EventAdViewed, events.AdEngagement{AdID: uuid.New()}))
	assert.NoError(t, r.Handle(context.Background(), env))
}

func TestBuildAdCreatedPayloadDefaults(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	payload := BuildAdCreatedPayload(events.AdCreated{Title: "Civic EXL", Price: "85000", DailyBudget: ""}, now)
	assert.Equal(t, "Civic EXL", payload.Modelo)
	assert.Equal(t, 2025, payload.Ano)
	assert.Equal(t, 2025, payload.Detalhes.Ano)
	assert.Equal(t, "Usuário", payload.Vendedor)
	assert.Equal(t, json.Number("85000"), payload.Preco)
	assert.Equal(t, json.Number("0"), payload.Orcamento)

	year := 2019
	payload = BuildAdCreatedPayload(events.AdCreated{Title: "x", Model: "Civic", Year: &year, SellerName: "Maria"}, now)
	assert.Equal(t, "Civic", payload.Modelo)
	assert.Equal(t, 2019, payload.Ano)
	assert.Equal(t, "Maria", payload.Vendedor)
}

func TestWebhookNotifier(t *testing.T) {
	var received map[string]any
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(status)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, time.Second)
	require.NotNil(t, n)
	evt := events.AdCreated{Title: "Civic", Price: "85000.50", DailyBudget: "20", WhatsAppURL: "https://wa.me/55", PublicLink: "https://autolink.app/civic", AdType: "normal"}

	require.NoError(t, n.NotifyAdCreated(context.Background(), evt))
	assert.Equal(t, "Civic", received["titulo"])
	assert.Equal(t, 85000.5, received["preco"])
	detalhes := received["detalhes"].(map[string]any)
	assert.Equal(t, "https://wa.me/55", detalhes["whatsappLink"])
	assert.Equal(t, "https://autolink.app/civic", detalhes["publicLink"])

	status = http.StatusBadRequest
	assert.True(t, events.IsNonRetryable(n.NotifyAdCreated(context.Background(), evt)))

	status = http.StatusBadGateway
	err := n.NotifyAdCreated(context.Background(), evt)
	require.Error(t, err)
	assert.False(t, events.IsNonRetryable(err))

	assert.Nil(t, NewWebhookNotifier("  ", 0))
}

type flakyInserter struct {
	errs  []error
	calls int
}

func (f *flakyInserter) InsertRows(context.Context, string, []any) error {
	f.calls++
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func TestBigQueryWriterRetries(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaximumBackoff: time.Millisecond}

	inserter := &flakyInserter{errs: []error{&googleapi.Error{Code: http.StatusServiceUnavailable}}}
	w, err := NewBigQueryWriter(inserter, "ad_events", policy)
	require.NoError(t, err)
	require.NoError(t, w.InsertAdEvent(context.Background(), AdEventRow{EventID: "e1"}))
	assert.Equal(t, 2, inserter.calls)

	inserter = &flakyInserter{errs: []error{&googleapi.Error{Code: http.StatusBadRequest}}}
	w, err = NewBigQueryWriter(inserter, "ad_events", policy)
	require.NoError(t, err)
	require.Error(t, w.InsertAdEvent(context.Background(), AdEventRow{EventID: "e2"}))
	assert.Equal(t, 1, inserter.calls)

	_, err = NewBigQueryWriter(inserter, " ", policy)
	assert.Error(t, err)
}
