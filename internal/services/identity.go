package services

import (
	"regexp"
	"strings"

	"docrisk/internal/models"
)

const metadataIDKey = "documentId"

var (
	// Upload filenames from the primary client path look like
	// private/<userId>/<unix millis>_<original name>.
	timestampPattern = regexp.MustCompile(`/(\d+)_`)
	userPathPattern  = regexp.MustCompile(`private/([^/]+)/`)
)

// Resolution is the outcome of identity resolution: the document-record key
// and which rung of the fallback chain produced it.
type Resolution struct {
	ID     string
	Source string
}

// Degraded reports whether the resolution fell through to the path-derived
// user id. That id keys the wrong record whenever a user has more than one
// metadata-less upload, so callers must flag it rather than trust it.
func (r Resolution) Degraded() bool { return r.Source == models.SourceUserPath }

// ResolveDocumentID derives the document-record key for an uploaded object.
// The chain is strict and ordered: metadata is authoritative when present,
// the timestamp embedded in the filename covers the primary upload path, and
// the user-id segment is a last resort that avoids total failure at the cost
// of a possibly wrong identity.
func ResolveDocumentID(objectPath string, metadata map[string]string) (Resolution, error) {
	if id := metadataDocumentID(metadata); id != "" {
		return Resolution{ID: id, Source: models.SourceMetadata}, nil
	}

	if m := timestampPattern.FindStringSubmatch(objectPath); m != nil {
		return Resolution{ID: m[1], Source: models.SourceTimestamp}, nil
	}

	if m := userPathPattern.FindStringSubmatch(objectPath); m != nil {
		return Resolution{ID: m[1], Source: models.SourceUserPath}, nil
	}

	return Resolution{}, &IdentityResolutionError{Object: objectPath}
}

// metadataDocumentID looks up the documentId metadata key. Storage layers
// differ on whether they preserve metadata key case, so an exact match is
// tried first and a case-insensitive scan second.
func metadataDocumentID(metadata map[string]string) string {
	if v := metadata[metadataIDKey]; v != "" {
		return v
	}
	for k, v := range metadata {
		if strings.EqualFold(k, metadataIDKey) && v != "" {
			return v
		}
	}
	return ""
}
