package models

import "net/url"

// StorageEvent is a single blob-change notification: a newly finalized
// object in an upload bucket. Name arrives in URL-encoded form from the
// notification layer.
type StorageEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// NotificationBatch is an ordered set of change events delivered in one
// invocation. It is transient and consumed exactly once; redelivery of the
// same events is possible and the pipeline must tolerate it.
type NotificationBatch struct {
	Events []StorageEvent `json:"events"`
}

// DecodeObjectPath percent-decodes an object path from a notification and
// normalizes '+' to spaces, matching how the notification layer encodes
// object names. An undecodable path is returned as-is rather than dropped.
func DecodeObjectPath(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
