// Command reprocess sweeps the document collection for records stuck in the
// analyzing status and re-runs the analysis pipeline for them. A stuck
// record is the one externally visible symptom of an item that failed before
// failed-status writes existed, or of a write that never landed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"docrisk/internal/services"
)

func main() {
	olderThan := flag.Duration("older-than", time.Hour, "only touch documents stuck in analyzing for at least this long")
	limit := flag.Int("limit", 50, "maximum number of documents to reprocess in one sweep")
	parallel := flag.Int("parallel", 4, "number of documents processed concurrently")
	dryRun := flag.Bool("dry-run", false, "list stuck documents without reprocessing them")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// Convenience for local runs; real environments set variables directly.
	_ = godotenv.Load()

	ctx := context.Background()
	analyzer, err := services.NewAnalyzer(ctx)
	if err != nil {
		slog.Error("Failed to initialize analyzer", "error", err)
		os.Exit(1)
	}
	defer analyzer.Close()

	config := analyzer.Config()
	if config.UploadBucket == "" {
		slog.Error("UPLOAD_BUCKET must be set to locate stuck documents' blobs")
		os.Exit(1)
	}

	cutoff := time.Now().Add(-*olderThan)
	stuck, err := analyzer.FindStuck(ctx, cutoff, *limit)
	if err != nil {
		slog.Error("Failed to query stuck documents", "error", err)
		os.Exit(1)
	}
	slog.Info("Found stuck documents.", "count", len(stuck), "cutoff", cutoff)

	if *dryRun {
		for _, doc := range stuck {
			fmt.Printf("%s\t%s\t%s\n", doc.ID, doc.UploadedAt.Format(time.RFC3339), doc.StorageKey)
		}
		return
	}

	// Each document is an independent invocation-equivalent; one failure
	// must not stop the sweep.
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(*parallel)
	var failed atomic.Int64
	for _, doc := range stuck {
		eg.Go(func() error {
			if err := analyzer.ProcessObject(gctx, config.UploadBucket, doc.StorageKey); err != nil {
				slog.Error("Reprocess failed.", "documentId", doc.ID, "error", err)
				failed.Add(1)
			}
			return nil
		})
	}
	_ = eg.Wait()

	slog.Info("Sweep complete.", "reprocessed", int64(len(stuck))-failed.Load(), "failed", failed.Load())
}
