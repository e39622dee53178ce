package enums

import "fmt"

// MediaKind says where an uploaded image ends up, which also picks its
// storage folder.
type MediaKind string

const (
	MediaKindAdImage MediaKind = "ad_image"
	MediaKindAvatar  MediaKind = "avatar"
)

var mediaKindPrefixes = map[MediaKind]string{
	MediaKindAdImage: "ads",
	MediaKindAvatar:  "avatars",
}

func (m MediaKind) String() string {
	return string(m)
}

func (m MediaKind) IsValid() bool {
	_, ok := mediaKindPrefixes[m]
	return ok
}

// KeyPrefix is the object folder. Unknown kinds share the ad folder.
func (m MediaKind) KeyPrefix() string {
	if prefix, ok := mediaKindPrefixes[m]; ok {
		return prefix
	}
	return mediaKindPrefixes[MediaKindAdImage]
}

func ParseMediaKind(value string) (MediaKind, error) {
	if kind := MediaKind(value); kind.IsValid() {
		return kind, nil
	}
	return "", fmt.Errorf("invalid media kind %q", value)
}
