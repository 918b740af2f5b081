package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/growthloop/outreach-sync/internal/config"
	"github.com/growthloop/outreach-sync/internal/domain"
	syncsvc "github.com/growthloop/outreach-sync/internal/service/sync"
)

// =============================================================================
// SYNC SCHEDULER WORKER
// =============================================================================
// This worker polls api_connections for active connections whose last sync is
// older than the refresh interval, and drives a sync run for each. It is the
// background counterpart of POST /functions/email-sync: users trigger syncs by
// hand, the scheduler keeps everything fresh when nobody does.
//
// Multiple replicas are safe: the orchestrator serializes per
// (workspace, provider) with a distributed lock, so the worst case for a
// double-scheduled connection is one no-op run.

const (
	// DefaultSyncPollInterval is how often to scan for stale connections.
	DefaultSyncPollInterval = 60 * time.Second

	// DefaultRefreshInterval is the maximum staleness before a connection
	// is picked up by the scheduler.
	DefaultRefreshInterval = 6 * time.Hour

	// listTimeout bounds the connection scan query.
	listTimeout = 15 * time.Second

	// runTimeout bounds a single sync run: one batch budget plus
	// aggregation slack. Continuation batches re-enter through the API,
	// not through this worker.
	runTimeout = 3 * time.Minute
)

// ConnectionLister provides the scan set for the scheduler.
type ConnectionLister interface {
	ListActive(ctx context.Context) ([]domain.APIConnection, error)
}

// SyncRunner drives one connection refresh end to end.
type SyncRunner interface {
	RunSync(ctx context.Context, workspaceID string, opts syncsvc.Options) ([]syncsvc.Report, error)
}

// SyncScheduler polls for stale provider connections and refreshes them
type SyncScheduler struct {
	connections ConnectionLister
	runner      SyncRunner
	workerID    string

	pollInterval    time.Duration
	refreshInterval time.Duration

	// Stats
	refreshed   int64
	partialRuns int64
	errors      int64

	// Control
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.RWMutex

	now func() time.Time
}

// NewSyncScheduler creates a scheduler over the given connection source and
// sync runner. Zero config values fall back to the package defaults.
func NewSyncScheduler(connections ConnectionLister, runner SyncRunner, cfg config.SyncConfig) *SyncScheduler {
	poll := cfg.PollInterval()
	if poll <= 0 {
		poll = DefaultSyncPollInterval
	}
	refresh := cfg.RefreshInterval()
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	return &SyncScheduler{
		connections:     connections,
		runner:          runner,
		workerID:        fmt.Sprintf("sync-scheduler-%s-%d", hostname(), time.Now().UnixNano()%10000),
		pollInterval:    poll,
		refreshInterval: refresh,
		now:             time.Now,
	}
}

// Start begins the scheduler polling loop
func (s *SyncScheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	log.Printf("[SyncScheduler] %s starting with poll interval %v, refresh interval %v",
		s.workerID, s.pollInterval, s.refreshInterval)

	s.wg.Add(1)
	go s.pollLoop()

	return nil
}

// Stop gracefully stops the scheduler and waits for an in-flight scan
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	log.Printf("[SyncScheduler] Stopping...")
	s.cancel()
	s.wg.Wait()
	log.Printf("[SyncScheduler] Stopped. Refreshed: %d connections, partial: %d, errors: %d",
		atomic.LoadInt64(&s.refreshed), atomic.LoadInt64(&s.partialRuns), atomic.LoadInt64(&s.errors))
}

// pollLoop is the main loop that periodically scans for due connections
func (s *SyncScheduler) pollLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.refreshDueConnections()
		}
	}
}

// refreshDueConnections scans active connections and syncs the stale ones.
// Connections are refreshed sequentially; provider pacing makes parallel
// refreshes of the same provider pointless anyway.
func (s *SyncScheduler) refreshDueConnections() {
	listCtx, cancel := context.WithTimeout(s.ctx, listTimeout)
	conns, err := s.connections.ListActive(listCtx)
	cancel()
	if err != nil {
		log.Printf("[SyncScheduler] Error listing connections: %v", err)
		atomic.AddInt64(&s.errors, 1)
		return
	}

	now := s.now()
	for _, conn := range conns {
		if s.ctx.Err() != nil {
			return
		}
		if !s.due(conn, now) {
			continue
		}
		s.refresh(conn)
	}
}

// due decides whether a connection needs a scheduled refresh.
//
// Stopped connections are never auto-resynced: the user asked for the stop
// and has to start the next sync explicitly. A syncing connection with a
// fresh heartbeat has a live run, so scheduling another would only bounce
// off the lock. A syncing connection with a stale heartbeat is a crashed
// run and gets restarted like any other stale connection.
func (s *SyncScheduler) due(conn domain.APIConnection, now time.Time) bool {
	switch conn.SyncStatus {
	case domain.SyncStopped:
		return false
	case domain.SyncSyncing:
		if conn.SyncProgress.HeartbeatFresh(now, syncsvc.HeartbeatWindow) {
			return false
		}
	}
	if conn.LastSyncAt == nil {
		return true
	}
	return now.Sub(*conn.LastSyncAt) >= s.refreshInterval
}

// refresh runs one sync for a single connection
func (s *SyncScheduler) refresh(conn domain.APIConnection) {
	last := "never"
	if conn.LastSyncAt != nil {
		last = conn.LastSyncAt.Format(time.RFC3339)
	}
	log.Printf("[SyncScheduler] Refreshing %s/%s (last sync: %s)", conn.WorkspaceID, conn.Provider, last)

	ctx, cancel := context.WithTimeout(s.ctx, runTimeout)
	reports, err := s.runner.RunSync(ctx, conn.WorkspaceID, syncsvc.Options{Provider: conn.Provider})
	cancel()
	if err != nil {
		log.Printf("[SyncScheduler] Sync failed for %s/%s: %v", conn.WorkspaceID, conn.Provider, err)
		atomic.AddInt64(&s.errors, 1)
		return
	}

	atomic.AddInt64(&s.refreshed, 1)
	for _, r := range reports {
		if r.Complete || r.Progress == nil {
			continue
		}
		// The run hit its batch budget and posted its own continuation;
		// nothing more for the scheduler to do.
		atomic.AddInt64(&s.partialRuns, 1)
		log.Printf("[SyncScheduler] Sync for %s/%s paused at campaign %d of %d, continuation in flight",
			conn.WorkspaceID, r.Provider, r.Progress.CampaignIndex, r.Progress.TotalCampaigns)
	}
}

// newContext creates a new context for the scheduler (exposed for testing)
func (s *SyncScheduler) newContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "outreach-worker"
	}
	return h
}
