package services

import "fmt"

// RetrievalError indicates the uploaded object could not be read from the
// blob store.
type RetrievalError struct {
	Bucket string
	Object string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("failed to retrieve gs://%s/%s: %v", e.Bucket, e.Object, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// IdentityResolutionError indicates no document identity could be derived
// from either the object metadata or the object path.
type IdentityResolutionError struct {
	Object string
}

func (e *IdentityResolutionError) Error() string {
	return fmt.Sprintf("no document identity derivable from object path %q", e.Object)
}

// PersistenceError indicates a document-record write failed. The record is
// left in its prior state; the coordinator's recovery path may still manage
// a best-effort failed-status write.
type PersistenceError struct {
	DocumentID string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist result for document %s: %v", e.DocumentID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
