package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.SessionCached(EstablishedInitiator)
	m.SessionCached(EstablishedLoaded)
	m.SessionsEvicted(1)
	m.SessionDeleted()
	m.PreKeys(3)
	m.EngineError("decrypt")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsCached))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsEstablished.WithLabelValues(EstablishedInitiator)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsDeleted))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.PreKeysGenerated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EngineErrors.WithLabelValues("decrypt")))

	_, err = New(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SessionCached(EstablishedResponder)
		m.SessionsEvicted(2)
		m.SessionDeleted()
		m.PreKeys(1)
		m.EngineError("open")
	})
}
