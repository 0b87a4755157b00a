package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// blobStore is the read-only surface of the upload bucket the pipeline
// needs. Both operations are idempotent and uncached; every call re-reads
// from the store.
type blobStore interface {
	readObject(ctx context.Context, bucket, object string) ([]byte, error)
	readObjectMetadata(ctx context.Context, bucket, object string) (map[string]string, error)
}

type gcsBlobStore struct {
	client *storage.Client
}

// readObject streams the object body and concatenates it into one buffer.
func (s *gcsBlobStore) readObject(ctx context.Context, bucket, object string) ([]byte, error) {
	reader, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, &RetrievalError{Bucket: bucket, Object: object, Err: err}
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &RetrievalError{Bucket: bucket, Object: object, Err: fmt.Errorf("stream read failed: %w", err)}
	}
	return data, nil
}

// readObjectMetadata returns the user metadata attached at upload time, or
// nil when the object carries none. A missing object is not an error here;
// the byte read will report it.
func (s *gcsBlobStore) readObjectMetadata(ctx context.Context, bucket, object string) (map[string]string, error) {
	attrs, err := s.client.Bucket(bucket).Object(object).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata for gs://%s/%s: %w", bucket, object, err)
	}
	return attrs.Metadata, nil
}
