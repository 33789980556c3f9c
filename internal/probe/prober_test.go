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

func TestNewDualProber(t *testing.T) {
	t.Parallel()

	_, err := NewDualProber(nil, time.Second, time.Second)
	require.Error(t, err)

	p, err := NewDualProber(hclog.NewNullLogger(), time.Second, time.Second)
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestDualProber_Probe_SkipsUnconfiguredPaths(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	p, err := NewDualProber(hclog.NewNullLogger(), time.Second, time.Second)
	require.NoError(t, err)

	t.Run("rest only", func(t *testing.T) {
		t.Parallel()

		mcpResult, restResult := p.Probe(context.Background(), Target{Name: "time", RESTURL: srv.URL})
		require.Nil(t, mcpResult)
		require.NotNil(t, restResult)
		require.True(t, restResult.Success)
	})

	t.Run("neither path configured", func(t *testing.T) {
		t.Parallel()

		mcpResult, restResult := p.Probe(context.Background(), Target{Name: "time"})
		require.Nil(t, mcpResult)
		require.Nil(t, restResult)
	})
}
