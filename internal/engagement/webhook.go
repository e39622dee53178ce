package engagement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/autoads/autoads-backend/pkg/events"
)

const (
	defaultWebhookTimeout = 10 * time.Second
	fallbackSeller        = "Usuário"
)

// AdCreatedPayload is the JSON body posted to the automation webhook.
type AdCreatedPayload struct {
	Titulo    string          `json:"titulo"`
	Preco     json.Number     `json:"preco"`
	Orcamento json.Number     `json:"orcamento"`
	Detalhes  AdCreatedDetail `json:"detalhes"`
	Modelo    string          `json:"modelo"`
	Ano       int             `json:"ano"`
	Vendedor  string          `json:"vendedor"`
}

// AdCreatedDetail carries the links and classification of the new ad.
type AdCreatedDetail struct {
	WhatsAppLink string `json:"whatsappLink"`
	PublicLink   string `json:"publicLink"`
	AdType       string `json:"adType"`
	Ano          int    `json:"ano"`
}

// WebhookNotifier posts ad_created notifications to an HTTP endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
	now    func() time.Time
}

// NewWebhookNotifier builds a notifier. An empty url yields nil, meaning the
// webhook is disabled.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookNotifier{url: url, client: &http.Client{Timeout: timeout}, now: time.Now}
}

// BuildAdCreatedPayload maps the event onto the webhook body.
func BuildAdCreatedPayload(evt events.AdCreated, now time.Time) AdCreatedPayload {
	year := now.Year()
	if evt.Year != nil && *evt.Year > 0 {
		year = *evt.Year
	}
	model := strings.TrimSpace(evt.Model)
	if model == "" {
		model = evt.Title
	}
	seller := strings.TrimSpace(evt.SellerName)
	if seller == "" {
		seller = fallbackSeller
	}
	return AdCreatedPayload{
		Titulo:    evt.Title,
		Preco:     numberOrZero(evt.Price),
		Orcamento: numberOrZero(evt.DailyBudget),
		Detalhes: AdCreatedDetail{
			WhatsAppLink: evt.WhatsAppURL,
			PublicLink:   evt.PublicLink,
			AdType:       evt.AdType,
			Ano:          year,
		},
		Modelo:   model,
		Ano:      year,
		Vendedor: seller,
	}
}

// NotifyAdCreated posts the payload. 4xx responses are not retryable.
func (n *WebhookNotifier) NotifyAdCreated(ctx context.Context, evt events.AdCreated) error {
	body, err := json.Marshal(BuildAdCreatedPayload(evt, n.now()))
	if err != nil {
		return events.NewNonRetryableError(fmt.Errorf("marshal webhook payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return events.NewNonRetryableError(fmt.Errorf("build webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	default:
		return events.NewNonRetryableError(errors.New("webhook rejected payload: " + resp.Status))
	}
}

func numberOrZero(v string) json.Number {
	v = strings.TrimSpace(v)
	if v == "" {
		return json.Number("0")
	}
	if _, err := json.Number(v).Float64(); err != nil {
		return json.Number("0")
	}
	return json.Number(v)
}
