package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/iterator"

	"docrisk/internal/models"
)

// StuckDocument identifies a record that entered analyzing and never left:
// either still in flight or permanently failed before the failed-status
// write existed. Indistinguishable from the record alone, which is why the
// sweep takes an age cutoff.
type StuckDocument struct {
	ID         string
	StorageKey string
	UploadedAt time.Time
}

// FindStuck lists documents still in analyzing whose upload predates the
// cutoff. Manual reprocessing is the only recovery path for them.
func (f *AnalyzerFunction) FindStuck(ctx context.Context, before time.Time, limit int) ([]StuckDocument, error) {
	query := f.firestoreClient.Collection(f.config.CollectionName).
		Where("status", "==", models.StatusAnalyzing).
		Where("uploadTimestamp", "<", before).
		Limit(limit)

	it := query.Documents(ctx)
	defer it.Stop()

	var stuck []StuckDocument
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query stuck documents: %w", err)
		}

		var doc models.Document
		if err := snap.DataTo(&doc); err != nil {
			slog.Warn("Skipping undecodable document record.", "documentId", snap.Ref.ID, "error", err)
			continue
		}
		if doc.StorageKey == "" {
			slog.Warn("Skipping stuck document without a storage key.", "documentId", snap.Ref.ID)
			continue
		}

		stuck = append(stuck, StuckDocument{
			ID:         snap.Ref.ID,
			StorageKey: doc.StorageKey,
			UploadedAt: doc.UploadTimestamp,
		})
	}
	return stuck, nil
}
