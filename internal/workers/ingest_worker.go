package workers

import (
	"context"

	"github.com/selivandex/newswire/internal/ingest"
)

// IngestWorker runs a full feed ingestion pass on each tick
type IngestWorker struct {
	orchestrator *ingest.Orchestrator
}

// NewIngestWorker creates new ingest worker
func NewIngestWorker(orchestrator *ingest.Orchestrator) *IngestWorker {
	return &IngestWorker{orchestrator: orchestrator}
}

// Name returns worker name
func (w *IngestWorker) Name() string {
	return "feed_ingest"
}

// Run executes one ingestion run
func (w *IngestWorker) Run(ctx context.Context) error {
	_, err := w.orchestrator.Run(ctx)
	return err
}
