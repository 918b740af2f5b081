package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/growthloop/outreach-sync/internal/config"
	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/metrics"
	"github.com/growthloop/outreach-sync/internal/outreach"
	"github.com/growthloop/outreach-sync/internal/pkg/distlock"
	"github.com/growthloop/outreach-sync/internal/pkg/logger"
)

// HeartbeatWindow bounds how old a stored heartbeat may be before a
// "syncing" status is treated as a dead run rather than a live one. The
// scheduler worker applies the same rule when deciding whether a syncing
// connection is actually live.
const HeartbeatWindow = 2 * time.Minute

// Progress step tokens, surfaced verbatim in status responses.
const (
	stepStarting    = "starting"
	stepListing     = "fetching_campaign_list"
	stepSyncing     = "syncing_campaigns"
	stepAggregating = "aggregating"
	stepPaused      = "awaiting_continuation"
	stepDone        = "completed"
)

// LockFactory builds the distributed lock for one key. Injected so the
// service stays free of Redis and database handles.
type LockFactory func(key string) distlock.DistLock

// Options control one RunSync call.
type Options struct {
	// Provider limits the run to one platform. Empty runs every active
	// connection of the workspace in order.
	Provider domain.Provider

	// Reset deletes the provider's campaigns and workspace aggregates
	// before syncing, so the run rebuilds from a clean baseline.
	Reset bool

	// ContinueAt overrides the stored campaign cursor.
	ContinueAt *int

	// BatchNumber is the 1-based batch this call runs. Zero means first
	// batch for a fresh run, stored+1 for a resume.
	BatchNumber int

	// InternalContinuation marks a self-posted batch request. Continuations
	// reuse the cached campaign list and honor a stop request.
	InternalContinuation bool
}

// Report is the outcome of one provider's batch.
type Report struct {
	WorkspaceID string               `json:"workspace_id"`
	Provider    domain.Provider      `json:"provider"`
	Status      domain.SyncStatus    `json:"status"`
	Complete    bool                 `json:"complete"`
	Synced      int                  `json:"campaigns_synced"`
	Progress    *domain.SyncProgress `json:"progress,omitempty"`
	DurationMS  int64                `json:"duration_ms"`
}

// Service is the batch sync orchestrator. One instance serves all
// workspaces; per-run state lives in the connection row, not here.
type Service struct {
	connections ConnectionStore
	campaigns   CampaignStore
	steps       StepStore
	stats       MetricStore
	adapters    outreach.Registry
	locks       LockFactory
	continuer   Continuer
	cfg         config.SyncConfig
	metrics     *metrics.Metrics

	// now is swapped in tests to drive the batch deadline.
	now func() time.Time
}

// NewService wires the orchestrator.
func NewService(
	connections ConnectionStore,
	campaigns CampaignStore,
	steps StepStore,
	stats MetricStore,
	adapters outreach.Registry,
	locks LockFactory,
	continuer Continuer,
	cfg config.SyncConfig,
	m *metrics.Metrics,
) *Service {
	return &Service{
		connections: connections,
		campaigns:   campaigns,
		steps:       steps,
		stats:       stats,
		adapters:    adapters,
		locks:       locks,
		continuer:   continuer,
		cfg:         cfg,
		metrics:     m,
		now:         time.Now,
	}
}

// RunSync executes one batch for the workspace. With opts.Provider set it
// runs that connection; otherwise every active connection runs in order.
// The error is the first fatal failure; campaign-scoped failures land in
// progress.errors instead and never abort a run.
func (s *Service) RunSync(ctx context.Context, workspaceID string, opts Options) ([]Report, error) {
	providers := []domain.Provider{opts.Provider}
	if opts.Provider == "" {
		providers = domain.AllProviders
	}

	var (
		reports  []Report
		firstErr error
		matched  bool
	)
	for _, p := range providers {
		conn, err := s.connections.Get(ctx, workspaceID, p)
		if err != nil {
			return reports, fmt.Errorf("loading %s connection: %w", p, err)
		}
		if conn == nil || !conn.IsActive {
			continue
		}
		matched = true

		report, err := s.syncConnection(ctx, conn, opts)
		reports = append(reports, report)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if !matched {
		return reports, fmt.Errorf("%w: workspace %s", ErrNoConnection, workspaceID)
	}
	return reports, firstErr
}

// Stop requests a graceful halt. The batch currently holding the lock is
// not interrupted; the next continuation sees the status and exits.
func (s *Service) Stop(ctx context.Context, workspaceID string, provider domain.Provider) error {
	conn, err := s.connections.Get(ctx, workspaceID, provider)
	if err != nil {
		return fmt.Errorf("loading %s connection: %w", provider, err)
	}
	if conn == nil {
		return fmt.Errorf("%w: workspace %s", ErrNoConnection, workspaceID)
	}
	logger.Info("sync stop requested", "workspace_id", workspaceID, "provider", string(provider))
	return s.connections.UpdateStatus(ctx, conn.ID, domain.SyncStopped, "")
}

// Status returns the connection's current sync state, or nil when the
// workspace has no connection for the provider.
func (s *Service) Status(ctx context.Context, workspaceID string, provider domain.Provider) (*domain.APIConnection, error) {
	return s.connections.Get(ctx, workspaceID, provider)
}

func (s *Service) syncConnection(ctx context.Context, conn *domain.APIConnection, opts Options) (Report, error) {
	started := s.now()
	report := Report{
		WorkspaceID: conn.WorkspaceID,
		Provider:    conn.Provider,
		Status:      conn.SyncStatus,
		Progress:    conn.SyncProgress,
	}

	adapter := s.adapters.Get(conn.Provider)
	if adapter == nil {
		return report, s.fail(ctx, conn, fmt.Errorf("%w: %s", ErrUnknownProvider, conn.Provider))
	}
	if conn.APIKey == "" {
		return report, s.fail(ctx, conn, ErrMissingAPIKey)
	}

	lock := s.locks(distlock.SyncKey(conn.WorkspaceID, string(conn.Provider)))
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return report, fmt.Errorf("acquiring sync lock: %w", err)
	}
	if !acquired {
		// Another replica is mid-batch. Hand back its progress instead of
		// starting a second run.
		logger.Info("sync already running",
			"workspace_id", conn.WorkspaceID, "provider", string(conn.Provider))
		report.Status = domain.SyncSyncing
		return report, nil
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("releasing sync lock",
				"workspace_id", conn.WorkspaceID, "provider", string(conn.Provider), "error", err.Error())
		}
	}()

	// A start while a live run sits between batches resumes nothing and
	// duplicates nothing: fresh heartbeat plus syncing status means a
	// continuation is already in flight.
	if !opts.InternalContinuation && conn.SyncStatus == domain.SyncSyncing &&
		conn.SyncProgress.HeartbeatFresh(s.now(), HeartbeatWindow) {
		report.Status = domain.SyncSyncing
		return report, nil
	}

	if opts.InternalContinuation && conn.SyncStatus == domain.SyncStopped {
		logger.Info("sync stopped, dropping continuation",
			"workspace_id", conn.WorkspaceID, "provider", string(conn.Provider))
		report.Status = domain.SyncStopped
		report.Complete = true
		return report, nil
	}

	if opts.Reset {
		deleted, err := s.campaigns.DeleteByProvider(ctx, conn.WorkspaceID, conn.Provider)
		if err != nil {
			return report, s.fail(ctx, conn, fmt.Errorf("resetting campaigns: %w", err))
		}
		if err := s.stats.DeleteWorkspaceDaily(ctx, conn.WorkspaceID, conn.Provider); err != nil {
			return report, s.fail(ctx, conn, fmt.Errorf("resetting aggregates: %w", err))
		}
		logger.Info("sync reset",
			"workspace_id", conn.WorkspaceID, "provider", string(conn.Provider), "campaigns_deleted", deleted)
		conn.SyncProgress = nil
	}

	// Continuations and explicit cursor overrides resume the stored
	// progress; everything else starts a new run with a fresh snapshot.
	progress := &domain.SyncProgress{BatchIndex: 1}
	resuming := (opts.InternalContinuation || opts.ContinueAt != nil) &&
		conn.SyncProgress != nil && len(conn.SyncProgress.CachedCampaignList) > 0
	if resuming {
		progress = conn.SyncProgress
		progress.BatchIndex++
	}
	if opts.BatchNumber > 0 {
		progress.BatchIndex = opts.BatchNumber
	}

	if limit := s.maxBatches(conn.Provider); progress.BatchIndex > limit {
		return report, s.fail(ctx, conn,
			fmt.Errorf("%w: batch %d exceeds limit %d", ErrBatchCapExceeded, progress.BatchIndex, limit))
	}

	progress.Step = stepStarting
	s.beat(progress)
	if err := s.connections.UpdateStatus(ctx, conn.ID, domain.SyncSyncing, ""); err != nil {
		return report, fmt.Errorf("marking syncing: %w", err)
	}
	if err := s.connections.UpdateProgress(ctx, conn.ID, progress); err != nil {
		return report, fmt.Errorf("persisting progress: %w", err)
	}

	if len(progress.CachedCampaignList) == 0 {
		progress.Step = stepListing
		refs, err := adapter.ListCampaigns(ctx, conn.APIKey)
		if err != nil {
			return report, s.fail(ctx, conn, fmt.Errorf("listing campaigns: %w", err))
		}
		progress.CachedCampaignList = refs
		progress.TotalCampaigns = len(refs)
		progress.CampaignIndex = 0
		if err := s.connections.UpdateProgress(ctx, conn.ID, progress); err != nil {
			return report, fmt.Errorf("persisting campaign list: %w", err)
		}
		logger.Info("campaign list snapshotted",
			"workspace_id", conn.WorkspaceID, "provider", string(conn.Provider), "campaigns", len(refs))
	}

	list := progress.CachedCampaignList
	start := progress.CampaignIndex
	if opts.ContinueAt != nil {
		start = *opts.ContinueAt
	}
	if start < 0 {
		start = 0
	}
	if start > len(list) {
		start = len(list)
	}

	deadline := started.Add(s.budget(conn.Provider))
	progress.Step = stepSyncing
	synced := 0
	interrupted := false
	for i := start; i < len(list); i++ {
		if ctx.Err() != nil || s.now().After(deadline) {
			progress.CampaignIndex = i
			interrupted = true
			break
		}

		ref := list[i]
		progress.CampaignIndex = i
		progress.CurrentCampaignName = ref.Name
		if (i-start)%s.cfg.HeartbeatEvery == 0 {
			s.beat(progress)
			if err := s.connections.UpdateProgress(ctx, conn.ID, progress); err != nil {
				logger.Warn("heartbeat update failed",
					"workspace_id", conn.WorkspaceID, "provider", string(conn.Provider), "error", err.Error())
			}
		}

		if stage, err := s.syncCampaign(ctx, conn, adapter, ref); err != nil {
			progress.Errors = append(progress.Errors, domain.SyncIssue{
				PlatformID: ref.PlatformID,
				Campaign:   ref.Name,
				Stage:      stage,
				Message:    err.Error(),
				At:         s.now(),
			})
			logger.Warn("campaign sync failed",
				"provider", string(conn.Provider), "platform_id", ref.PlatformID,
				"stage", stage, "error", err.Error())
		}
		synced++
	}
	report.Synced = synced
	if s.metrics != nil {
		s.metrics.AddCampaignsSynced(string(conn.Provider), synced)
	}

	progress.CurrentCampaignName = ""
	if interrupted {
		return s.pause(ctx, conn, progress, report, started)
	}
	return s.finish(ctx, conn, progress, report, started)
}

// pause persists the cursor, flags the run partial, and posts the next
// batch to ourselves. The write context is detached from cancellation so a
// shutdown mid-batch still leaves a resumable cursor behind.
func (s *Service) pause(ctx context.Context, conn *domain.APIConnection, progress *domain.SyncProgress, report Report, started time.Time) (Report, error) {
	wctx := context.WithoutCancel(ctx)

	progress.Step = stepPaused
	s.beat(progress)
	if err := s.connections.UpdateProgress(wctx, conn.ID, progress); err != nil {
		return report, fmt.Errorf("persisting pause cursor: %w", err)
	}
	if err := s.connections.UpdateStatus(wctx, conn.ID, domain.SyncPartial, ""); err != nil {
		return report, fmt.Errorf("marking partial: %w", err)
	}

	s.continuer.PostContinuation(conn.WorkspaceID, conn.Provider, progress.BatchIndex+1)
	s.count(conn.Provider, string(domain.SyncPartial))
	logger.Info("sync paused for continuation",
		"workspace_id", conn.WorkspaceID, "provider", string(conn.Provider),
		"batch", progress.BatchIndex, "resume_at", progress.CampaignIndex,
		"total", progress.TotalCampaigns)

	report.Status = domain.SyncPartial
	report.Progress = progress
	report.Complete = false
	report.DurationMS = s.now().Sub(started).Milliseconds()
	return report, nil
}

// finish aggregates, stamps the sync timestamps, and pings the downstream
// pipelines that chew on freshly synced data.
func (s *Service) finish(ctx context.Context, conn *domain.APIConnection, progress *domain.SyncProgress, report Report, started time.Time) (Report, error) {
	progress.CampaignIndex = len(progress.CachedCampaignList)
	progress.Step = stepAggregating
	s.beat(progress)
	if err := s.connections.UpdateProgress(ctx, conn.ID, progress); err != nil {
		logger.Warn("progress update failed",
			"workspace_id", conn.WorkspaceID, "provider", string(conn.Provider), "error", err.Error())
	}

	since := s.now().AddDate(0, 0, -s.cfg.AggregateWindowDays)
	if err := s.stats.RollupWorkspaceDaily(ctx, conn.WorkspaceID, conn.Provider, since); err != nil {
		progress.Errors = append(progress.Errors, domain.SyncIssue{
			Stage:   "aggregate",
			Message: err.Error(),
			At:      s.now(),
		})
		logger.Warn("workspace rollup failed",
			"workspace_id", conn.WorkspaceID, "provider", string(conn.Provider), "error", err.Error())
	}

	status := domain.SyncSuccess
	if len(progress.Errors) > 0 {
		status = domain.SyncCompletedWithErrors
	}
	progress.Step = stepDone

	if err := s.connections.UpdateProgress(ctx, conn.ID, progress); err != nil {
		return report, fmt.Errorf("persisting final progress: %w", err)
	}
	if err := s.connections.UpdateStatus(ctx, conn.ID, status, ""); err != nil {
		return report, fmt.Errorf("marking %s: %w", status, err)
	}
	if err := s.connections.MarkSynced(ctx, conn.ID, true, s.now()); err != nil {
		logger.Warn("stamping sync time failed",
			"workspace_id", conn.WorkspaceID, "provider", string(conn.Provider), "error", err.Error())
	}

	s.continuer.FireCompletionHooks(conn.WorkspaceID, conn.Provider)
	s.count(conn.Provider, string(status))
	logger.Info("sync completed",
		"workspace_id", conn.WorkspaceID, "provider", string(conn.Provider),
		"campaigns", progress.TotalCampaigns, "batches", progress.BatchIndex,
		"errors", len(progress.Errors))

	report.Status = status
	report.Progress = progress
	report.Complete = true
	report.DurationMS = s.now().Sub(started).Milliseconds()
	return report, nil
}

// fail records a fatal error on the connection and hands it back for the
// transport layer to surface.
func (s *Service) fail(ctx context.Context, conn *domain.APIConnection, err error) error {
	if uerr := s.connections.UpdateStatus(context.WithoutCancel(ctx), conn.ID, domain.SyncError, err.Error()); uerr != nil {
		logger.Error("failed to record sync error",
			"connection_id", conn.ID, "error", uerr.Error())
	}
	s.count(conn.Provider, string(domain.SyncError))
	return err
}

func (s *Service) beat(p *domain.SyncProgress) {
	now := s.now()
	p.LastHeartbeat = &now
}

func (s *Service) count(p domain.Provider, result string) {
	if s.metrics != nil {
		s.metrics.IncSyncRun(string(p), result)
	}
}

func (s *Service) budget(p domain.Provider) time.Duration {
	if p == domain.ProviderReplyIO {
		return s.cfg.ReplyIOBudget()
	}
	return s.cfg.SmartleadBudget()
}

func (s *Service) maxBatches(p domain.Provider) int {
	if p == domain.ProviderReplyIO {
		return s.cfg.ReplyIOMaxBatches
	}
	return s.cfg.SmartleadMaxBatches
}
