package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"epicsync/internal/audit"
	"epicsync/internal/batch"
	"epicsync/internal/platform/metrics"
	"epicsync/internal/project"
	"epicsync/internal/redcap"
)

// Service orchestrates the two invocation paths over the pure engine: the
// single-record save hook and the full project sweep. It holds no state
// across invocations; records and settings are fetched fresh every time.
type Service struct {
	store     redcap.Store
	projects  project.Store
	logger    *slog.Logger
	audit     *audit.Publisher
	metrics   *metrics.Metrics
	batchSize int
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithBatchSize(size int) Option {
	return func(s *Service) {
		s.batchSize = size
	}
}

// New constructs the reconciliation service.
func New(store redcap.Store, projects project.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if projects == nil {
		return nil, fmt.Errorf("project store is required")
	}

	svc := &Service{
		store:     store,
		projects:  projects,
		logger:    slog.Default(),
		batchSize: batch.DefaultSize,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Summary reports what one invocation did.
type Summary struct {
	ProjectID     string `json:"project_id"`
	Fetched       int    `json:"fetched"`
	Planned       int    `json:"planned"`
	Saved         int    `json:"saved"`
	FailedBatches int    `json:"failed_batches"`
}

// SyncRecord is the single-record adapter, invoked when one record is saved.
// Saves outside the screening event are ignored. The record is refetched
// rather than trusted from the save payload so the parser sees fully-merged
// post-save state. Write failures are logged and audited, never returned;
// only configuration and lookup failures abort.
func (s *Service) SyncRecord(ctx context.Context, projectID, recordID, eventID string) error {
	logger := s.logger.With(
		"invocation_id", uuid.NewString(),
		"project_id", projectID,
		"record_id", recordID,
	)

	settings, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return fmt.Errorf("load project settings: %w", err)
	}
	if !settings.Enabled {
		logger.DebugContext(ctx, "project not enabled, skipping")
		return nil
	}

	scopedEventID, err := s.store.EventID(ctx, projectID, ScreeningEvent)
	if err != nil {
		return fmt.Errorf("resolve event %q: %w", ScreeningEvent, err)
	}
	if eventID != scopedEventID {
		logger.DebugContext(ctx, "save in out-of-scope event, skipping", "event_id", eventID)
		return nil
	}

	summary, err := s.run(ctx, logger, settings, []string{recordID})
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "record synced",
		"planned", summary.Planned, "saved", summary.Saved, "failed_batches", summary.FailedBatches)
	return nil
}

// SweepProject is the bulk adapter: reconcile every record of the scoped
// event in one enabled project.
func (s *Service) SweepProject(ctx context.Context, projectID string) (Summary, error) {
	start := time.Now()
	logger := s.logger.With(
		"invocation_id", uuid.NewString(),
		"project_id", projectID,
	)
	logger.DebugContext(ctx, "starting project sweep")

	settings, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return Summary{}, fmt.Errorf("load project settings: %w", err)
	}
	if !settings.Enabled {
		return Summary{}, fmt.Errorf("project %s is not enabled", projectID)
	}

	summary, err := s.run(ctx, logger, settings, nil)
	if err != nil {
		return Summary{}, err
	}
	if s.metrics != nil {
		s.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}
	logger.InfoContext(ctx, "sweep finished",
		"fetched", summary.Fetched,
		"planned", summary.Planned,
		"saved", summary.Saved,
		"failed_batches", summary.FailedBatches,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return summary, nil
}

// run is the shared fetch→plan→write path. recordIDs narrows the fetch for
// the single-record adapter; nil sweeps the whole project.
func (s *Service) run(ctx context.Context, logger *slog.Logger, settings project.Settings, recordIDs []string) (Summary, error) {
	projectID := settings.ProjectID
	summary := Summary{ProjectID: projectID}

	idField, err := s.store.RecordIDField(ctx, projectID)
	if err != nil {
		return summary, fmt.Errorf("resolve record id field: %w", err)
	}

	records, err := s.store.FetchRecords(ctx, projectID, redcap.FetchOptions{
		Fields:  FetchFields(idField),
		Records: recordIDs,
		Events:  []string{ScreeningEvent},
	})
	if err != nil {
		return summary, fmt.Errorf("fetch records: %w", err)
	}
	summary.Fetched = len(records)
	if s.metrics != nil {
		s.metrics.RecordsFetched.Add(float64(len(records)))
	}
	logger.DebugContext(ctx, "fetched records", "count", len(records))

	updates := Plan(records, idField, settings.ForceUpdate)
	summary.Planned = len(updates)
	if s.metrics != nil {
		s.metrics.UpdatesPlanned.Add(float64(len(updates)))
	}
	logger.DebugContext(ctx, "planned updates", "count", len(updates), "force_update", settings.ForceUpdate)
	if len(updates) == 0 {
		return summary, nil
	}

	writer, err := batch.NewWriter(s.store, idField, s.batchSize)
	if err != nil {
		return summary, err
	}
	for _, result := range writer.Write(ctx, projectID, updates) {
		if s.metrics != nil {
			s.metrics.BatchesSaved.Inc()
		}
		if !result.Failed() {
			summary.Saved += result.Saved.Count
			if s.metrics != nil {
				s.metrics.UpdatesSaved.Add(float64(result.Saved.Count))
			}
			continue
		}
		summary.FailedBatches++
		if s.metrics != nil {
			s.metrics.WriteErrors.Inc()
		}
		s.reportWriteFailure(ctx, logger, projectID, result)
	}
	return summary, nil
}

// reportWriteFailure logs a failed chunk and appends one audit event per
// affected record, mirroring the host platform's record-keyed event log.
// Audit emission is best-effort.
func (s *Service) reportWriteFailure(ctx context.Context, logger *slog.Logger, projectID string, result batch.Result) {
	detail := strings.Join(result.Saved.Errors, "; ")
	if result.Err != nil {
		detail = result.Err.Error()
	}
	logger.ErrorContext(ctx, "batch save failed",
		"record_ids", result.RecordIDs,
		"detail", detail,
	)
	if s.audit == nil {
		return
	}
	for _, recordID := range result.RecordIDs {
		event := audit.Event{
			ProjectID: projectID,
			RecordID:  recordID,
			Detail:    detail,
		}
		if err := s.audit.Emit(ctx, event); err != nil {
			logger.WarnContext(ctx, "failed to emit audit event", "record_id", recordID, "error", err)
		}
	}
}
