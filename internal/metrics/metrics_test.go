package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(commands.WithLabelValues("daily-roll", OutcomeOK))
	ObserveCommand("daily-roll", OutcomeOK)
	assert.Equal(t, before+1, testutil.ToFloat64(commands.WithLabelValues("daily-roll", OutcomeOK)))

	ObserveBet("flip", true)
	ObserveBet("flip", false)
	assert.GreaterOrEqual(t, testutil.ToFloat64(bets.WithLabelValues("flip", "won")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(bets.WithLabelValues("flip", "lost")), 1.0)

	base := testutil.ToFloat64(dabsMoved.WithLabelValues("give"))
	AddDabsMoved("give", -40)
	assert.Equal(t, base+40, testutil.ToFloat64(dabsMoved.WithLabelValues("give")))

	UpdateStarted()
	UpdateFinished()
	assert.Equal(t, 0.0, testutil.ToFloat64(updatesInflight))
}
