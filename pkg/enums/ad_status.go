package enums

import "fmt"

// AdStatus is the moderation/visibility state of a listing.
type AdStatus string

const (
	AdStatusActive   AdStatus = "active"
	AdStatusApproved AdStatus = "approved"
	AdStatusPaused   AdStatus = "paused"
	AdStatusInReview AdStatus = "in-review"
	AdStatusDeleted  AdStatus = "deleted"
)

var validAdStatuses = []AdStatus{
	AdStatusActive,
	AdStatusApproved,
	AdStatusPaused,
	AdStatusInReview,
	AdStatusDeleted,
}

// String returns the literal string for the status.
func (s AdStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is known.
func (s AdStatus) IsValid() bool {
	for _, candidate := range validAdStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsPublic reports whether ads in this status can be served on the public page.
func (s AdStatus) IsPublic() bool {
	return s != AdStatusDeleted && s.IsValid()
}

// ParseAdStatus converts raw input into an AdStatus. The legacy Portuguese
// tag "em-analise" is accepted as in-review.
func ParseAdStatus(value string) (AdStatus, error) {
	if value == "em-analise" {
		return AdStatusInReview, nil
	}
	for _, candidate := range validAdStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ad status %q", value)
}

// AdStatuses returns every known status in display order.
func AdStatuses() []AdStatus {
	out := make([]AdStatus, len(validAdStatuses))
	copy(out, validAdStatuses)
	return out
}
