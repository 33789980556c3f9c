// Package daemon wires the dual-path prober, the aggregation engine and the
// metrics collector into a long-running process, and serves the HTTP API over
// the collected state.
package daemon

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/probeops/dualwatch/internal/aggregate"
	"github.com/probeops/dualwatch/internal/config"
	"github.com/probeops/dualwatch/internal/files"
	"github.com/probeops/dualwatch/internal/flags"
	"github.com/probeops/dualwatch/internal/metrics"
	"github.com/probeops/dualwatch/internal/perms"
	"github.com/probeops/dualwatch/internal/probe"
)

// Daemon runs the probe loop and the API server.
// NewDaemon should be used to create instances of Daemon.
type Daemon struct {
	logger    hclog.Logger
	cfgLoader config.Loader
	apiAddr   string
	opts      Options
}

// NewDaemon creates a daemon from validated dependencies and optional configuration.
func NewDaemon(deps Dependencies, opt ...Option) (*Daemon, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for daemon: %w", err)
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon options: %w", err)
	}

	return &Daemon{
		logger:    deps.Logger.Named("daemon"),
		cfgLoader: deps.CfgLoader,
		apiAddr:   deps.APIAddr,
		opts:      opts,
	}, nil
}

// LoadConfig loads the configuration file selected via flags or environment.
func (d *Daemon) LoadConfig() (*config.Config, error) {
	return d.cfgLoader.Load(flags.ConfigFile)
}

// StartAndManage loads the configuration, restores persisted collector state,
// then runs the probe loop and API server until the context is canceled.
// Collector state is persisted on shutdown when a state file is configured.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	cfg, err := d.LoadConfig()
	if err != nil {
		return err
	}

	targets, err := loadTargets(cfg.Servers)
	if err != nil {
		return err
	}
	d.logger.Info("Loaded configuration", "servers", len(targets))

	collector, err := d.newCollector(cfg)
	if err != nil {
		return err
	}

	var aggCfg *aggregate.Config
	if cfg.Aggregation != nil {
		aggCfg = cfg.Aggregation
	}
	aggregator, err := aggregate.New(d.logger, aggCfg)
	if err != nil {
		return fmt.Errorf("failed to create aggregator: %w", err)
	}

	mcpTimeout := d.opts.MCPTimeout
	restTimeout := d.opts.RESTTimeout
	interval := d.opts.ProbeInterval
	var stateFile string
	if cfg.Monitor != nil {
		mcpTimeout = cfg.Monitor.MCPTimeout.OrDefault(mcpTimeout)
		restTimeout = cfg.Monitor.RESTTimeout.OrDefault(restTimeout)
		interval = cfg.Monitor.Interval.OrDefault(interval)
		stateFile = cfg.Monitor.StateFile
	}
	if stateFile == "" {
		stateDir, err := files.UserSpecificStateDir()
		if err != nil {
			// No usable state location; run without persistence.
			d.logger.Warn("Could not determine state directory, collector state will not persist", "error", err)
		} else {
			stateFile = filepath.Join(stateDir, "state.json")
		}
	}

	prober, err := probe.NewDualProber(d.logger, mcpTimeout, restTimeout)
	if err != nil {
		return err
	}

	if stateFile != "" {
		if err := restoreState(collector, stateFile); err != nil {
			// Stale or corrupt state should never block startup.
			d.logger.Warn("Could not restore collector state", "path", stateFile, "error", err)
		}
	}

	collector.Start()
	defer collector.Stop()

	apiAddr := d.apiAddr
	if apiAddr == "" && cfg.API != nil {
		apiAddr = cfg.API.Addr
	}
	apiServer, err := d.newAPIServer(cfg, collector, apiAddr)
	if err != nil {
		return err
	}

	g, runCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return apiServer.Start(runCtx)
	})
	g.Go(func() error {
		d.probeLoop(runCtx, prober, aggregator, collector, targets, interval)
		return nil
	})

	err = g.Wait()

	if stateFile != "" {
		if perr := persistState(collector, stateFile); perr != nil {
			d.logger.Error("Could not persist collector state", "path", stateFile, "error", perr)
		} else {
			d.logger.Info("Persisted collector state", "path", stateFile)
		}
	}

	if stdErrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// probeLoop probes every target immediately, then on each tick until canceled.
func (d *Daemon) probeLoop(
	ctx context.Context,
	prober *probe.DualProber,
	aggregator *aggregate.Aggregator,
	collector *metrics.Collector,
	targets []probe.Target,
	interval time.Duration,
) {
	d.logger.Info("Starting probe loop", "interval", interval, "servers", len(targets))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.probeAll(ctx, prober, aggregator, collector, targets)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Probe loop stopped")
			return
		case <-ticker.C:
			d.probeAll(ctx, prober, aggregator, collector, targets)
		}
	}
}

// probeAll runs one probe round across all targets concurrently.
func (d *Daemon) probeAll(
	ctx context.Context,
	prober *probe.DualProber,
	aggregator *aggregate.Aggregator,
	collector *metrics.Collector,
	targets []probe.Target,
) {
	var g errgroup.Group
	for _, target := range targets {
		g.Go(func() error {
			mcpResult, restResult := prober.Probe(ctx, target)

			result, err := aggregator.Aggregate(mcpResult, restResult, nil)
			if err != nil {
				d.logger.Error("Aggregation failed", "server", target.Name, "error", err)
				return nil
			}
			if err := collector.Record(result); err != nil {
				d.logger.Error("Failed to record result", "server", target.Name, "error", err)
				return nil
			}

			d.logger.Debug("Recorded health verdict",
				"server", result.ServerName,
				"status", result.OverallStatus,
				"score", result.HealthScore,
			)
			return nil
		})
	}
	_ = g.Wait()
}

// newCollector builds the metrics collector honoring the metrics config section.
func (d *Daemon) newCollector(cfg *config.Config) (*metrics.Collector, error) {
	var opts []metrics.CollectorOption
	if cfg.Metrics != nil {
		if retention := cfg.Metrics.Retention.OrDefault(0); retention > 0 {
			opts = append(opts, metrics.WithRetention(retention))
		}
		if cleanupInterval := cfg.Metrics.CleanupInterval.OrDefault(0); cleanupInterval > 0 {
			opts = append(opts, metrics.WithCleanupInterval(cleanupInterval))
		}
	}

	collector, err := metrics.NewCollector(d.logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics collector: %w", err)
	}
	return collector, nil
}

// newAPIServer builds the API server over the collector, honoring the API
// config section (CORS) and daemon options.
func (d *Daemon) newAPIServer(cfg *config.Config, collector *metrics.Collector, addr string) (*APIServer, error) {
	deps, err := NewAPIDependencies(d.logger, collector, collector, addr)
	if err != nil {
		return nil, err
	}

	apiOpts := append([]APIOption(nil), corsOptions(cfg)...)
	apiOpts = append(apiOpts, d.opts.APIOptions...)

	return NewAPIServer(deps, apiOpts...)
}

// corsOptions translates the config file's CORS section into API options.
func corsOptions(cfg *config.Config) []APIOption {
	if cfg.API == nil || cfg.API.CORS == nil {
		return nil
	}
	section := cfg.API.CORS

	var opts []APIOption
	if section.Enable != nil {
		opts = append(opts, WithCORSEnabled(*section.Enable))
	}
	if len(section.Origins) > 0 {
		opts = append(opts, WithCORSAllowOrigins(section.Origins))
	}
	if len(section.Methods) > 0 {
		opts = append(opts, WithCORSAllowMethods(section.Methods))
	}
	if len(section.Headers) > 0 {
		opts = append(opts, WithCORSAllowHeaders(section.Headers))
	}
	if len(section.ExposeHeaders) > 0 {
		opts = append(opts, WithCORSExposeHeaders(section.ExposeHeaders))
	}
	if section.Credentials != nil {
		opts = append(opts, WithCORSAllowCredentials(*section.Credentials))
	}
	if section.MaxAge != nil {
		opts = append(opts, WithCORSMaxAge(section.MaxAge.Duration()))
	}

	return opts
}

// loadTargets converts config entries to probe targets, reading any
// referenced health schema files.
func loadTargets(servers []config.ServerEntry) ([]probe.Target, error) {
	targets := make([]probe.Target, 0, len(servers))
	for _, s := range servers {
		target := probe.Target{
			Name:          s.Name,
			MCPURL:        s.MCPURL,
			RESTURL:       s.RESTURL,
			ExpectedTools: s.ExpectedTools,
		}

		if s.HealthSchemaFile != "" {
			schema, err := os.ReadFile(s.HealthSchemaFile)
			if err != nil {
				return nil, fmt.Errorf("server %q: failed to read health schema %s: %w", s.Name, s.HealthSchemaFile, err)
			}
			target.HealthSchema = string(schema)
		}

		targets = append(targets, target)
	}
	return targets, nil
}

// restoreState imports a previously persisted collector snapshot.
func restoreState(collector *metrics.Collector, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var snapshot metrics.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("failed to decode state file: %w", err)
	}

	return collector.Import(snapshot)
}

// persistState writes the collector snapshot to the state file, creating the
// parent directory when needed.
func persistState(collector *metrics.Collector, path string) error {
	snapshot := collector.Export()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := files.EnsureAtLeastRegularDir(filepath.Dir(path)); err != nil {
		return err
	}

	return os.WriteFile(path, data, perms.RegularFile)
}
