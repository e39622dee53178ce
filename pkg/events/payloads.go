package events

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// AdCreated is published after a listing is stored.
type AdCreated struct {
	AdID         uuid.UUID `json:"adId"`
	UserID       uuid.UUID `json:"userId"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Price        string    `json:"price"`
	DailyBudget  string    `json:"dailyBudget"`
	ContactLink  string    `json:"contactLink"`
	WhatsAppURL  string    `json:"whatsappUrl,omitempty"`
	AdType       string    `json:"adType"`
	PublicLink   string    `json:"publicLink"`
	Model        string    `json:"model,omitempty"`
	Year         *int      `json:"year,omitempty"`
	BusinessName string    `json:"businessName,omitempty"`
	SellerName   string    `json:"sellerName,omitempty"`
}

// AdEngagement is published for every registered view or WhatsApp click.
type AdEngagement struct {
	AdID      uuid.UUID `json:"adId"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Slug      string    `json:"slug"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Total     int64     `json:"total"`
}

// MetricsImported is published after a CSV import is persisted.
type MetricsImported struct {
	ImportID uuid.UUID `json:"importId"`
	UserID   uuid.UUID `json:"userId"`
	Rows     int       `json:"rows"`
	FileName string    `json:"fileName,omitempty"`
}

// DecodeData unmarshals the envelope payload into T.
func DecodeData[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 {
		return out, fmt.Errorf("%s: empty payload", env.EventType)
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("%s: decode payload: %w", env.EventType, err)
	}
	return out, nil
}
