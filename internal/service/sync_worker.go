package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
)

type workspaceRecords interface {
	Record(ctx context.Context, id string) (WorkspaceRecord, bool)
	MarkSynced(id string, version int)
}

type workspaceWriter interface {
	Upsert(ctx context.Context, ws *models.Workspace) (bool, error)
}

// SyncWorker persists the latest state of a workspace when its sync job runs.
// Jobs carry only the workspace id, so a burst of edits results in one write
// of the newest version.
type SyncWorker struct {
	records workspaceRecords
	repo    workspaceWriter
	metrics *MetricsService
	logger  *zap.Logger
}

// NewSyncWorker constructs a SyncWorker.
func NewSyncWorker(records workspaceRecords, repo workspaceWriter, metrics *MetricsService, logger *zap.Logger) *SyncWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncWorker{records: records, repo: repo, metrics: metrics, logger: logger}
}

// Handle implements jobs.Handler.
func (w *SyncWorker) Handle(ctx context.Context, job jobs.Job) error {
	id, ok := job.Payload.(string)
	if !ok || id == "" {
		id = job.Key
	}
	if id == "" {
		return fmt.Errorf("sync job %s has no workspace id", job.ID)
	}

	rec, found := w.records.Record(ctx, id)
	if !found {
		w.logger.Debug("workspace gone before sync", zap.String("workspace_id", id))
		return nil
	}
	model, err := rec.Model()
	if err != nil {
		return fmt.Errorf("encode workspace %s: %w", id, err)
	}
	start := time.Now()
	written, err := w.repo.Upsert(ctx, model)
	w.metrics.ObserveDBQuery("workspace_upsert", time.Since(start))
	if err != nil {
		return err
	}
	w.records.MarkSynced(id, rec.Version)
	w.logger.Debug("workspace synced",
		zap.String("workspace_id", id),
		zap.Int("version", rec.Version),
		zap.Bool("written", written),
	)
	return nil
}

// OnComplete records the final outcome of a sync job.
func (w *SyncWorker) OnComplete(job jobs.Job, err error) {
	w.metrics.RecordSyncOutcome(err)
	if err != nil {
		w.logger.Error("workspace sync failed", zap.String("workspace_id", job.Key), zap.Int("attempts", job.Attempt), zap.Error(err))
	}
}
