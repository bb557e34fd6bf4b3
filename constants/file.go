package constants

import "strings"

// AllowedExtensions holds the default allowed file extensions for document
// ingestion. Upstream OCR is expected to have already produced plain text.
var AllowedExtensions = map[string]struct{}{
	"txt":  {},
	"text": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
