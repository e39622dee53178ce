package media

import (
	"mime"
	"slices"
	"strings"

	"github.com/autoads/autoads-backend/pkg/enums"
	"github.com/gabriel-vasile/mimetype"
)

const octetStream = "application/octet-stream"

var imageTypes = []string{"image/jpeg", "image/png", "image/webp"}

var mimeTypesByKind = map[enums.MediaKind][]string{
	enums.MediaKindAdImage: imageTypes,
	enums.MediaKindAvatar:  imageTypes,
}

// detectMimeType trusts the file signature. The declared type is only used
// when the content is not recognized.
func detectMimeType(data []byte, declared string) string {
	if detected := mimetype.Detect(data); !detected.Is(octetStream) {
		return baseType(detected.String())
	}
	if declared := baseType(declared); declared != "" {
		return declared
	}
	return octetStream
}

// baseType drops parameters such as charset.
func baseType(value string) string {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(value))
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}

// extensionFor maps an allowed type to its object key extension.
func extensionFor(mimeType string) (string, bool) {
	m := mimetype.Lookup(mimeType)
	if m == nil || m.Extension() == "" {
		return "", false
	}
	return strings.TrimPrefix(m.Extension(), "."), true
}

func isAllowedMime(kind enums.MediaKind, mimeType string) bool {
	return slices.Contains(mimeTypesByKind[kind], strings.ToLower(mimeType))
}

func allowedMimeDescription(kind enums.MediaKind) string {
	list := slices.Clone(mimeTypesByKind[kind])
	slices.Sort(list)
	return strings.Join(list, ", ")
}
