package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"docrisk/internal/gcp"
	"docrisk/internal/gemini"
	"docrisk/internal/models"
)

// analysisClient is the slice of the Gemini client the pipeline depends on.
type analysisClient interface {
	AnalyzeDocument(ctx context.Context, data []byte, mimeType string) (string, error)
}

// AnalyzerConfig holds all configuration for the upload analyzer.
type AnalyzerConfig struct {
	ProjectID      string
	CollectionName string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	UploadBucket   string

	// PropagateErrors controls the invocation-boundary contract: false
	// swallows per-item failures after logging them (fire-and-forget, no
	// redelivery), true returns them joined so the platform redelivers the
	// batch. Redelivery reprocesses every item, including already-completed
	// ones; triggering is at-least-once either way.
	PropagateErrors bool
}

// Validate checks the fields without which the pipeline cannot run at all.
func (c AnalyzerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ProjectID, validation.Required),
		validation.Field(&c.CollectionName, validation.Required),
		validation.Field(&c.GeminiAPIKey, validation.Required),
	)
}

// LoadAnalyzerConfig reads the analyzer configuration from the process
// environment. There is no runtime reconfiguration.
func LoadAnalyzerConfig() (*AnalyzerConfig, error) {
	config := &AnalyzerConfig{
		ProjectID:       gcp.GetEnv("PROJECT_ID", ""),
		CollectionName:  gcp.GetEnv("FIRESTORE_COLLECTION", "documents"),
		GeminiAPIKey:    gcp.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:     gcp.GetEnv("GEMINI_MODEL", gemini.DefaultModel),
		GeminiBaseURL:   gcp.GetEnv("GEMINI_API_ENDPOINT", gemini.DefaultBaseURL),
		UploadBucket:    gcp.GetEnv("UPLOAD_BUCKET", ""),
		PropagateErrors: gcp.GetEnv("ANALYZER_PROPAGATE_ERRORS", "false") == "true",
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analyzer configuration: %w", err)
	}
	return config, nil
}

// AnalyzerFunction holds the dependencies for the upload analysis pipeline.
// Clients are constructed once at startup and owned here; nothing lives at
// module scope.
type AnalyzerFunction struct {
	blobs    blobStore
	records  recordStore
	analysis analysisClient

	storageClient   *storage.Client
	firestoreClient *firestore.Client
	config          AnalyzerConfig
}

// NewAnalyzer creates an AnalyzerFunction instance with live GCP clients.
func NewAnalyzer(ctx context.Context) (*AnalyzerFunction, error) {
	config, err := LoadAnalyzerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	storageClient, err := gcp.NewStorageClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	geminiClient, err := gemini.NewClient(gemini.ClientConfig{
		APIKey:  config.GeminiAPIKey,
		Model:   config.GeminiModel,
		BaseURL: config.GeminiBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	f := &AnalyzerFunction{
		blobs:           &gcsBlobStore{client: storageClient},
		records:         &firestoreRecordStore{client: firestoreClient, collection: config.CollectionName},
		analysis:        geminiClient,
		storageClient:   storageClient,
		firestoreClient: firestoreClient,
		config:          *config,
	}
	slog.Info("Upload analyzer initialized.", "collection", config.CollectionName, "model", config.GeminiModel)
	return f, nil
}

// Config returns a copy of the active configuration.
func (f *AnalyzerFunction) Config() AnalyzerConfig { return f.config }

// Close releases the underlying clients. Lifecycle belongs to the process
// driver, tied to startup and shutdown.
func (f *AnalyzerFunction) Close() error {
	var errs []error
	if f.storageClient != nil {
		errs = append(errs, f.storageClient.Close())
	}
	if f.firestoreClient != nil {
		errs = append(errs, f.firestoreClient.Close())
	}
	return errors.Join(errs...)
}

// Process runs the pipeline over every event in the batch, strictly in
// order. One bad item never aborts the batch: its error is logged, its
// record is best-effort marked failed, and the loop moves on. Items run
// sequentially so the per-item recovery needs no coordination.
func (f *AnalyzerFunction) Process(ctx context.Context, batch models.NotificationBatch) error {
	logCtx := slog.With("invocationId", uuid.NewString(), "eventCount", len(batch.Events))
	logCtx.Info("Processing notification batch.")

	var itemErrs []error
	for _, event := range batch.Events {
		objectPath := models.DecodeObjectPath(event.Name)
		itemLog := logCtx.With("gcsBucket", event.Bucket, "gcsObject", objectPath)

		if err := f.processObject(ctx, itemLog, event.Bucket, objectPath); err != nil {
			itemLog.Error("Document processing failed.", "error", err)
			itemErrs = append(itemErrs, fmt.Errorf("%s/%s: %w", event.Bucket, objectPath, err))
			continue
		}
		itemLog.Info("Document processing complete.")
	}

	if len(itemErrs) > 0 {
		logCtx.Warn("Batch finished with failures.", "failedCount", len(itemErrs))
		if f.config.PropagateErrors {
			return errors.Join(itemErrs...)
		}
	}
	return nil
}

// ProcessObject runs the full pipeline for a single, already-decoded object
// path. Used by the reprocess tool to retry documents stuck in analyzing.
func (f *AnalyzerFunction) ProcessObject(ctx context.Context, bucket, objectPath string) error {
	return f.processObject(ctx, slog.With("gcsBucket", bucket, "gcsObject", objectPath), bucket, objectPath)
}

func (f *AnalyzerFunction) processObject(ctx context.Context, logCtx *slog.Logger, bucket, objectPath string) error {
	metadata, err := f.blobs.readObjectMetadata(ctx, bucket, objectPath)
	if err != nil {
		// Metadata is the best identity source but not a required one; fall
		// through to path-derived resolution.
		logCtx.Warn("Could not read object metadata.", "error", err)
		metadata = nil
	}

	res, err := ResolveDocumentID(objectPath, metadata)
	if err != nil {
		// Without an identity there is no record to mark failed.
		return err
	}
	logCtx = logCtx.With("documentId", res.ID, "identitySource", res.Source)
	if res.Degraded() {
		logCtx.Warn("Identity degraded to a path-derived user id. Documents from the same user may collide.")
	}

	data, err := f.blobs.readObject(ctx, bucket, objectPath)
	if err != nil {
		return f.handleError(ctx, logCtx, res.ID, "failed to read uploaded object", err)
	}

	mimeType := MIMETypeForObject(objectPath)
	pageCount := 0
	if mimeType == "application/pdf" {
		if n, err := pdfPageCount(data); err != nil {
			logCtx.Warn("Could not determine PDF page count.", "error", err)
		} else {
			pageCount = n
		}
	}

	logCtx.Info("Submitting document for analysis.", "mimeType", mimeType, "sizeBytes", len(data))
	answer, err := f.analysis.AnalyzeDocument(ctx, data, mimeType)
	if err != nil {
		return f.handleError(ctx, logCtx, res.ID, "analysis request failed", err)
	}

	eval := ParseEvaluation(logCtx, answer)

	if err := f.records.saveEvaluation(ctx, res.ID, &eval, res, pageCount); err != nil {
		return f.handleError(ctx, logCtx, res.ID, "failed to persist evaluation", err)
	}

	logCtx.Info("Evaluation persisted.", "score", eval.Score, "parseFailed", eval.ParseFailed)
	return nil
}

// handleError logs the failure, makes a best-effort attempt to surface it on
// the record as a failed status, and returns the wrapped error for the
// per-item boundary.
func (f *AnalyzerFunction) handleError(ctx context.Context, logCtx *slog.Logger, docID, message string, originalErr error) error {
	logCtx.Error(message, "error", originalErr)
	if err := f.records.markFailed(ctx, docID, fmt.Sprintf("%s: %v", message, originalErr)); err != nil {
		logCtx.Error("CRITICAL: Failed to mark document as failed after a processing error.", "updateError", err)
	}
	return fmt.Errorf("%s: %w", message, originalErr)
}
