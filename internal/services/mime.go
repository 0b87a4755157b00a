package services

import (
	"path/filepath"
	"strings"
)

// MIMETypeForObject derives the MIME type sent to the analysis service from
// the object's file extension. Total: unknown extensions map to
// application/octet-stream.
func MIMETypeForObject(objectPath string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(objectPath), "."))
	switch ext {
	case "pdf":
		return "application/pdf"
	case "doc":
		return "application/msword"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
