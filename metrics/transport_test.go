package metrics

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ftotnem/minesweeper/apitest"
	"github.com/Ftotnem/minesweeper/service"
)

func TestTransportMetrics(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := NewTransportMetrics(reg)

	client := service.NewGameClient(service.Config{
		BaseAddress: srv.URL,
		HTTPClient:  m.HTTPClient(srv.Client().Transport),
	})

	ctx := context.Background()
	_, err := client.CreateGame(ctx, 3, 3, 1)
	require.NoError(t, err)
	_, err = client.GetGame(ctx, "missing")
	require.NoError(t, err)
	_, err = client.GetGame(ctx, "missing")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("201", "post")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("404", "get")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestTransportMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewTransportMetrics(reg)

	assert.Panics(t, func() { NewTransportMetrics(reg) })
}

func TestInstrument_DefaultTransport(t *testing.T) {
	m := NewTransportMetrics(prometheus.NewRegistry())
	assert.NotNil(t, m.Instrument(nil))
	assert.IsType(t, &http.Client{}, m.HTTPClient(nil))
}
