package enums

import "fmt"

// EventType names the domain events published by the API.
type EventType string

const (
	EventAdCreated         EventType = "ad_created"
	EventAdViewed          EventType = "ad_viewed"
	EventAdWhatsAppClicked EventType = "ad_whatsapp_clicked"
	EventMetricsImported   EventType = "metrics_imported"
)

var validEventTypes = []EventType{
	EventAdCreated,
	EventAdViewed,
	EventAdWhatsAppClicked,
	EventMetricsImported,
}

func (e EventType) String() string {
	return string(e)
}

func (e EventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// IsEngagement reports whether the event records a public interaction with an ad.
func (e EventType) IsEngagement() bool {
	return e == EventAdViewed || e == EventAdWhatsAppClicked
}

func ParseEventType(value string) (EventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
