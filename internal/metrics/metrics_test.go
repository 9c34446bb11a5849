package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterOnce(t *testing.T) {
	require.NotPanics(t, Register)
	require.NotPanics(t, Register)

	Evaluations.WithLabelValues("hold").Inc()
	n, err := testutil.GatherAndCount(Registry, "signal_engine_engine_evaluations_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
}
