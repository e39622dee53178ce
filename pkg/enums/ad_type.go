package enums

import "fmt"

// AdType is the promotion tier chosen when the listing is created.
type AdType string

const (
	AdTypeNormal       AdType = "normal"
	AdTypePriority     AdType = "priority"
	AdTypeProfessional AdType = "professional"
)

var validAdTypes = []AdType{
	AdTypeNormal,
	AdTypePriority,
	AdTypeProfessional,
}

// String returns the literal string for the type.
func (t AdType) String() string {
	return string(t)
}

// IsValid reports whether the type is known.
func (t AdType) IsValid() bool {
	for _, candidate := range validAdTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseAdType converts raw input into an AdType.
func ParseAdType(value string) (AdType, error) {
	for _, candidate := range validAdTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ad type %q", value)
}
