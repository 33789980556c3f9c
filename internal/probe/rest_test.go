package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func newRESTTestProber(t *testing.T, timeout time.Duration) *RESTProber {
	t.Helper()

	p, err := NewRESTProber(hclog.NewNullLogger(), timeout)
	require.NoError(t, err)
	return p
}

func TestNewRESTProber(t *testing.T) {
	t.Parallel()

	_, err := NewRESTProber(nil, time.Second)
	require.Error(t, err)

	_, err = NewRESTProber(hclog.NewNullLogger(), 0)
	require.Error(t, err)
}

func TestRESTProber_Probe(t *testing.T) {
	t.Parallel()

	t.Run("healthy endpoint", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		}))
		t.Cleanup(srv.Close)

		p := newRESTTestProber(t, 2*time.Second)
		result := p.Probe(context.Background(), Target{Name: "time", RESTURL: srv.URL})

		require.True(t, result.Success)
		require.Equal(t, http.StatusOK, result.StatusCode)
		require.Empty(t, result.HTTPError)
		require.Empty(t, result.ConnectionError)
		require.Nil(t, result.Validation)
		require.Equal(t, "time", result.ServerName)
		require.Positive(t, result.ResponseTimeMs)
	})

	t.Run("non-2xx status fails the probe", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(srv.Close)

		p := newRESTTestProber(t, 2*time.Second)
		result := p.Probe(context.Background(), Target{Name: "time", RESTURL: srv.URL})

		require.False(t, result.Success)
		require.Equal(t, http.StatusServiceUnavailable, result.StatusCode)
		require.Contains(t, result.HTTPError, "status 503")
	})

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()

		p := newRESTTestProber(t, 2*time.Second)
		result := p.Probe(context.Background(), Target{Name: "time", RESTURL: "http://127.0.0.1:1/healthz"})

		require.False(t, result.Success)
		require.Zero(t, result.StatusCode)
		require.NotEmpty(t, result.ConnectionError)
	})

	t.Run("slow endpoint times out", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(func() {
			close(release)
			srv.Close()
		})

		p := newRESTTestProber(t, 50*time.Millisecond)
		result := p.Probe(context.Background(), Target{Name: "time", RESTURL: srv.URL})

		require.False(t, result.Success)
		require.Contains(t, result.HTTPError, "timeout")
	})

	t.Run("body validates against schema", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"ok","uptime":42}`))
		}))
		t.Cleanup(srv.Close)

		schema := `{
			"type": "object",
			"required": ["status"],
			"properties": {"status": {"type": "string"}}
		}`

		p := newRESTTestProber(t, 2*time.Second)
		result := p.Probe(context.Background(), Target{Name: "time", RESTURL: srv.URL, HealthSchema: schema})

		require.True(t, result.Success)
		require.NotNil(t, result.Validation)
		require.True(t, result.Validation.IsValid)
		require.Empty(t, result.Validation.Errors)
	})

	t.Run("body failing schema keeps probe success", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"uptime":42}`))
		}))
		t.Cleanup(srv.Close)

		schema := `{
			"type": "object",
			"required": ["status"],
			"properties": {"status": {"type": "string"}}
		}`

		p := newRESTTestProber(t, 2*time.Second)
		result := p.Probe(context.Background(), Target{Name: "time", RESTURL: srv.URL, HealthSchema: schema})

		// Schema violations degrade the score, they don't fail the path.
		require.True(t, result.Success)
		require.NotNil(t, result.Validation)
		require.False(t, result.Validation.IsValid)
		require.NotEmpty(t, result.Validation.Errors)
	})
}
