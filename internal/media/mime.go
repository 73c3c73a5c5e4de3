package media

import (
	"mime"
	"strings"
)

// DefaultImageExt is used when the content type is missing or unrecognized.
const DefaultImageExt = ".jpg"

func extensionFromMime(contentType string) string {
	mediaType := strings.TrimSpace(contentType)
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	switch strings.ToLower(mediaType) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	case "image/heif":
		return ".heif"
	case "image/bmp":
		return ".bmp"
	default:
		return DefaultImageExt
	}
}
