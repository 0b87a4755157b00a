package services

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"docrisk/internal/models"
)

// recordStore is the write surface of the document-record collection.
type recordStore interface {
	saveEvaluation(ctx context.Context, docID string, eval *models.Evaluation, res Resolution, pageCount int) error
	markFailed(ctx context.Context, docID, details string) error
}

type firestoreRecordStore struct {
	client     *firestore.Client
	collection string
}

// statusField addresses the status attribute by explicit field path.
// "status" is a reserved word in some record stores' query languages, so it
// is aliased in the update rather than renamed on the record.
var statusField = firestore.FieldPath{"status"}

// saveEvaluation writes the full evaluation and the completed status in one
// atomic update keyed by the resolved document id. If identity resolution
// was wrong, this targets the wrong record; that is why degraded resolutions
// are flagged on the record itself.
func (s *firestoreRecordStore) saveEvaluation(ctx context.Context, docID string, eval *models.Evaluation, res Resolution, pageCount int) error {
	updates := []firestore.Update{
		{Path: "evaluationScore", Value: eval.Score},
		{Path: "evaluationIssues", Value: eval.IssuesJSON},
		{Path: "correctedText", Value: eval.CorrectedText},
		{Path: "analysisResult", Value: eval.Raw},
		{Path: "parseFailed", Value: eval.ParseFailed},
		{Path: "identitySource", Value: res.Source},
		{Path: "identityDegraded", Value: res.Degraded()},
		{Path: "analyzedAt", Value: time.Now()},
		{FieldPath: statusField, Value: models.StatusCompleted},
	}
	if pageCount > 0 {
		updates = append(updates, firestore.Update{Path: "pageCount", Value: pageCount})
	}

	if _, err := s.client.Collection(s.collection).Doc(docID).Update(ctx, updates); err != nil {
		return &PersistenceError{DocumentID: docID, Err: err}
	}
	return nil
}

// markFailed is the coordinator's best-effort recovery write: it makes a
// failed item visible instead of leaving the record in analyzing forever.
func (s *firestoreRecordStore) markFailed(ctx context.Context, docID, details string) error {
	updates := []firestore.Update{
		{FieldPath: statusField, Value: models.StatusFailed},
		{Path: "errorDetails", Value: details},
	}
	if _, err := s.client.Collection(s.collection).Doc(docID).Update(ctx, updates); err != nil {
		return &PersistenceError{DocumentID: docID, Err: err}
	}
	return nil
}
