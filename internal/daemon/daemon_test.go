package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/probeops/dualwatch/internal/config"
	"github.com/probeops/dualwatch/internal/domain"
)

// stubLoader returns a fixed configuration without touching the filesystem.
type stubLoader struct {
	cfg *config.Config
	err error
}

func (s *stubLoader) Load(_ string) (*config.Config, error) {
	return s.cfg, s.err
}

func (s *stubLoader) Init(_ string) error {
	return nil
}

func TestNewDaemon(t *testing.T) {
	t.Parallel()

	deps, err := NewDependencies(hclog.NewNullLogger(), &stubLoader{}, "localhost:8090")
	require.NoError(t, err)

	d, err := NewDaemon(deps, WithProbeInterval(time.Minute))
	require.NoError(t, err)
	require.Equal(t, time.Minute, d.opts.ProbeInterval)

	_, err = NewDaemon(Dependencies{})
	require.ErrorContains(t, err, "invalid dependencies for daemon")

	_, err = NewDaemon(deps, WithProbeInterval(-time.Second))
	require.ErrorContains(t, err, "invalid daemon options")
}

func TestCORSOptions(t *testing.T) {
	t.Parallel()

	boolPtr := func(b bool) *bool { return &b }
	durPtr := func(d time.Duration) *config.Duration {
		cd := config.Duration(d)
		return &cd
	}

	t.Run("no api section yields no options", func(t *testing.T) {
		t.Parallel()

		require.Nil(t, corsOptions(&config.Config{}))
		require.Nil(t, corsOptions(&config.Config{API: &config.APISection{}}))
	})

	t.Run("full section maps onto api options", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{
			API: &config.APISection{
				CORS: &config.CORSSection{
					Enable:        boolPtr(true),
					Origins:       []string{"https://example.com"},
					Methods:       []string{"GET"},
					Headers:       []string{"X-Custom"},
					ExposeHeaders: []string{"X-Trace-ID"},
					Credentials:   boolPtr(true),
					MaxAge:        durPtr(time.Minute),
				},
			},
		}

		opts, err := NewAPIOptions(corsOptions(cfg)...)
		require.NoError(t, err)

		require.True(t, opts.CORS.Enabled)
		require.Equal(t, []string{"https://example.com"}, opts.CORS.AllowOrigins)
		require.Equal(t, []string{"GET"}, opts.CORS.AllowMethods)
		require.Equal(t, []string{"X-Custom"}, opts.CORS.AllowedHeaders)
		require.Equal(t, []string{"X-Trace-ID"}, opts.CORS.ExposedHeaders)
		require.True(t, opts.CORS.AllowCredentials)
		require.Equal(t, time.Minute, opts.CORS.MaxAge)
	})

	t.Run("partial section keeps defaults elsewhere", func(t *testing.T) {
		t.Parallel()

		cfg := &config.Config{
			API: &config.APISection{
				CORS: &config.CORSSection{
					Enable:  boolPtr(true),
					Origins: []string{"*"},
				},
			},
		}

		opts, err := NewAPIOptions(corsOptions(cfg)...)
		require.NoError(t, err)

		require.True(t, opts.CORS.Enabled)
		require.Equal(t, []string{"*"}, opts.CORS.AllowOrigins)
		require.Equal(t, DefaultCORSAllowMethods(), opts.CORS.AllowMethods)
		require.Equal(t, DefaultCORSMaxAge(), opts.CORS.MaxAge)
	})
}

func TestLoadTargets(t *testing.T) {
	t.Parallel()

	t.Run("plain servers", func(t *testing.T) {
		t.Parallel()

		targets, err := loadTargets([]config.ServerEntry{
			{Name: "time", MCPURL: "http://localhost:9000/mcp", ExpectedTools: []string{"get_current_time"}},
			{Name: "fetch", RESTURL: "http://localhost:9001/healthz"},
		})
		require.NoError(t, err)
		require.Len(t, targets, 2)
		require.Equal(t, "time", targets[0].Name)
		require.Equal(t, []string{"get_current_time"}, targets[0].ExpectedTools)
		require.Empty(t, targets[0].HealthSchema)
		require.Equal(t, "http://localhost:9001/healthz", targets[1].RESTURL)
	})

	t.Run("health schema file is read", func(t *testing.T) {
		t.Parallel()

		schema := `{"type": "object", "required": ["status"]}`
		path := filepath.Join(t.TempDir(), "health.schema.json")
		require.NoError(t, os.WriteFile(path, []byte(schema), 0o644))

		targets, err := loadTargets([]config.ServerEntry{
			{Name: "time", RESTURL: "http://localhost:9000/healthz", HealthSchemaFile: path},
		})
		require.NoError(t, err)
		require.Equal(t, schema, targets[0].HealthSchema)
	})

	t.Run("missing schema file fails", func(t *testing.T) {
		t.Parallel()

		_, err := loadTargets([]config.ServerEntry{
			{Name: "time", RESTURL: "http://localhost:9000/healthz", HealthSchemaFile: "/nonexistent/schema.json"},
		})
		require.ErrorContains(t, err, `server "time": failed to read health schema`)
	})
}

func TestPersistAndRestoreState(t *testing.T) {
	t.Parallel()

	source := newTestCollector(t)
	require.NoError(t, source.Record(domain.DualHealthCheckResult{
		ServerName:     "time",
		Timestamp:      time.Now(),
		OverallStatus:  domain.HealthStatusHealthy,
		OverallSuccess: true,
		HealthScore:    1.0,
		AvailablePaths: []domain.ProbePath{domain.PathMCP, domain.PathREST, domain.PathBoth},
	}))

	// Persisting into a directory that does not exist yet must create it.
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	require.NoError(t, persistState(source, path))

	restored := newTestCollector(t)
	require.NoError(t, restoreState(restored, path))

	latest, err := restored.Latest("time")
	require.NoError(t, err)
	require.Equal(t, domain.HealthStatusHealthy, latest.OverallStatus)
	require.InDelta(t, 1.0, latest.HealthScore, 0.0001)
}

func TestRestoreState_MissingFile(t *testing.T) {
	t.Parallel()

	collector := newTestCollector(t)
	require.NoError(t, restoreState(collector, filepath.Join(t.TempDir(), "absent.json")))
	require.Empty(t, collector.LatestAll())
}

func TestRestoreState_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	collector := newTestCollector(t)
	require.ErrorContains(t, restoreState(collector, path), "failed to decode state file")
}
