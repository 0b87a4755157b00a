package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"docrisk/internal/models"
	"docrisk/internal/services"
)

var (
	analyzerInstance *services.AnalyzerFunction
	once             sync.Once
	initErr          error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function. The framework routes upload
	// notifications here.
	functions.CloudEvent("AnalyzeUpload", analyzeUpload)
}

// main is required by the Go Functions Framework.
func main() {}

// analyzeUpload is the Cloud Function entry point. It accepts either a
// notification batch or a single native storage finalize event, which is
// treated as a batch of one.
func analyzeUpload(ctx context.Context, e cloudevents.Event) error {
	// Use sync.Once for robust, one-time initialization of clients.
	once.Do(func() {
		analyzerInstance, initErr = services.NewAnalyzer(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	batch, err := decodeBatch(e.Data())
	if err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return err
	}

	// Whether item failures surface here (and trigger redelivery) or are
	// swallowed after logging is decided by configuration inside Process.
	return analyzerInstance.Process(ctx, batch)
}

func decodeBatch(data []byte) (models.NotificationBatch, error) {
	var batch models.NotificationBatch
	if err := json.Unmarshal(data, &batch); err == nil && len(batch.Events) > 0 {
		return batch, nil
	}

	var single models.StorageEvent
	if err := json.Unmarshal(data, &single); err != nil {
		return models.NotificationBatch{}, fmt.Errorf("json.Unmarshal: %w", err)
	}
	if single.Bucket == "" || single.Name == "" {
		return models.NotificationBatch{}, fmt.Errorf("event payload carries no storage events")
	}
	return models.NotificationBatch{Events: []models.StorageEvent{single}}, nil
}
