package metrics

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/probeops/dualwatch/internal/domain"
	"github.com/probeops/dualwatch/internal/errors"
)

// Collector is the process-lifetime, thread-safe store of per-server metrics.
// Many probe-completion goroutines may call Record concurrently with report
// queries; a single collector-wide mutex serializes every mutation so one
// Record call's effects on the MCP, REST and combined metrics of a server are
// always visible as one atomic unit.
//
// NewCollector should be used to create instances of Collector.
type Collector struct {
	logger hclog.Logger

	mu       sync.Mutex
	mcp      map[string]*MCPMetrics
	rest     map[string]*RESTMetrics
	combined map[string]*CombinedMetrics
	latest   map[string]domain.DualHealthCheckResult

	retention       time.Duration
	cleanupInterval time.Duration
	stopTimeout     time.Duration

	lifecycleMu sync.Mutex
	running     bool
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewCollector creates a Collector with default options applied first and the
// supplied options on top. The logger is required; everything else defaults.
func NewCollector(logger hclog.Logger, opt ...CollectorOption) (*Collector, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	opts, err := NewCollectorOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid collector options: %w", err)
	}

	return &Collector{
		logger:          logger.Named("collector"),
		mcp:             make(map[string]*MCPMetrics),
		rest:            make(map[string]*RESTMetrics),
		combined:        make(map[string]*CombinedMetrics),
		latest:          make(map[string]domain.DualHealthCheckResult),
		retention:       opts.Retention,
		cleanupInterval: opts.CleanupInterval,
		stopTimeout:     opts.StopTimeout,
	}, nil
}

// Record folds one dual health check result into the per-server metrics.
// A result with no derivable server name is rejected without mutating state.
func (c *Collector) Record(result domain.DualHealthCheckResult) error {
	if result.ServerName == "" {
		return fmt.Errorf("%w: result carries no server name", errors.ErrNoProbeResults)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	mcp, rest, combined := c.ensureServerLocked(result.ServerName)

	if result.MCPResult != nil {
		mcp.record(result.MCPResult)
	}
	if result.RESTResult != nil {
		rest.record(result.RESTResult)
	}
	combined.record(result)
	c.latest[result.ServerName] = result

	return nil
}

// Latest returns the most recent verdict recorded for a server.
func (c *Collector) Latest(serverName string) (domain.DualHealthCheckResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, ok := c.latest[serverName]
	if !ok {
		return domain.DualHealthCheckResult{}, fmt.Errorf("%w: %s", errors.ErrServerNotFound, serverName)
	}
	return result, nil
}

// LatestAll returns the most recent verdict for every tracked server, sorted by name.
func (c *Collector) LatestAll() []domain.DualHealthCheckResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	results := make([]domain.DualHealthCheckResult, 0, len(c.latest))
	for _, r := range c.latest {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].ServerName < results[j].ServerName
	})
	return results
}

// ServerNames returns the names of all tracked servers, sorted.
func (c *Collector) ServerNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverNamesLocked()
}

// Reset removes all state for one server.
func (c *Collector) Reset(serverName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.mcp[serverName]; !ok {
		if _, ok := c.rest[serverName]; !ok {
			return fmt.Errorf("%w: %s", errors.ErrServerNotFound, serverName)
		}
	}

	delete(c.mcp, serverName)
	delete(c.rest, serverName)
	delete(c.combined, serverName)
	delete(c.latest, serverName)
	return nil
}

// ResetAll removes all state for every server.
func (c *Collector) ResetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mcp = make(map[string]*MCPMetrics)
	c.rest = make(map[string]*RESTMetrics)
	c.combined = make(map[string]*CombinedMetrics)
	c.latest = make(map[string]domain.DualHealthCheckResult)
}

// Cleanup prunes every retained series to the configured retention period.
// Servers are pruned one at a time so a large fleet never holds the lock for
// one long pass.
func (c *Collector) Cleanup() {
	for _, name := range c.ServerNames() {
		c.cleanupServer(name)
	}
}

func (c *Collector) cleanupServer(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	if m, ok := c.mcp[name]; ok {
		removed += m.ResponseTime.CleanupOlderThan(c.retention)
		removed += m.ToolsCount.CleanupOlderThan(c.retention)
		removed += m.FoundTools.CleanupOlderThan(c.retention)
		removed += m.MissingTools.CleanupOlderThan(c.retention)
	}
	if m, ok := c.rest[name]; ok {
		removed += m.ResponseTime.CleanupOlderThan(c.retention)
		removed += m.EndpointAvailability.CleanupOlderThan(c.retention)
	}
	if m, ok := c.combined[name]; ok {
		removed += m.CombinedResponseTime.CleanupOlderThan(c.retention)
	}

	if removed > 0 {
		c.logger.Debug("Pruned expired metric samples", "server", name, "removed", removed)
	}
}

// Start launches the background retention worker. Calling Start on a running
// collector is a no-op.
func (c *Collector) Start() {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.running {
		return
	}
	c.running = true

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	done := make(chan struct{})
	c.done = done

	go c.retentionLoop(ctx, done)
}

// Stop signals the retention worker and waits for it to exit, bounded by the
// configured stop timeout. Safe to call multiple times.
func (c *Collector) Stop() {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if !c.running {
		return
	}
	c.running = false
	c.cancel()

	select {
	case <-c.done:
	case <-time.After(c.stopTimeout):
		// The worker is cancelled and will exit on its own; don't hold up shutdown.
		c.logger.Warn("Retention worker did not stop in time, abandoning wait", "timeout", c.stopTimeout)
	}
}

// retentionLoop sleeps between cleanup passes, never holding the collector
// lock while waiting. A failed pass is logged and the loop continues; only
// cancellation ends the worker.
func (c *Collector) retentionLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("Retention worker stopped")
			return
		case <-ticker.C:
			c.runCleanupPass()
		}
	}
}

func (c *Collector) runCleanupPass() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Retention cleanup pass panicked, worker continues", "panic", r)
		}
	}()
	c.Cleanup()
}

// ensureServerLocked lazily creates the three metrics objects for a server.
// Idempotent; caller must hold the collector lock.
func (c *Collector) ensureServerLocked(name string) (*MCPMetrics, *RESTMetrics, *CombinedMetrics) {
	mcp, ok := c.mcp[name]
	if !ok {
		mcp = newMCPMetrics(name)
		c.mcp[name] = mcp
	}
	rest, ok := c.rest[name]
	if !ok {
		rest = newRESTMetrics(name)
		c.rest[name] = rest
	}
	combined, ok := c.combined[name]
	if !ok {
		combined = newCombinedMetrics(name, mcp, rest)
		c.combined[name] = combined
	}
	return mcp, rest, combined
}

func (c *Collector) serverNamesLocked() []string {
	names := make([]string, 0, len(c.mcp))
	for name := range c.mcp {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
