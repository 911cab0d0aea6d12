package engine

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	e := startEngine(t, setupTestStore(t), WithMetrics(m))
	ctx := context.Background()

	_, err = e.Create(ctx, "a", nil)
	require.NoError(t, err)
	_, err = e.Create(ctx, "b", nil)
	require.NoError(t, err)
	_, err = e.Create(ctx, "", nil)
	require.Error(t, err)
	_, err = e.Get(ctx, 99)
	require.Error(t, err)
	_, err = e.Submit(ctx, Op{Kind: "compact"})
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues(string(OpCreate), OutcomeApplied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues(string(OpCreate), OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues(string(OpGet), OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("compact", OutcomeFailed)))

	// One histogram series per op kind that reached the store.
	assert.Equal(t, 3, testutil.CollectAndCount(m.Duration))
}

func TestMetrics_RegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observe(OpCreate, OutcomeApplied, 0)
		m.setQueueDepth(3)
	})
}
