package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/micetimer/micetimer/internal/dispatch"
	"github.com/micetimer/micetimer/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(timer string, outcome dispatch.Outcome, held bool) dispatch.Result {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return dispatch.Result{
		Timer:        timer,
		Outcome:      outcome,
		StartedAt:    start,
		FinishedAt:   start.Add(250 * time.Millisecond),
		WakeLockHeld: held,
	}
}

func TestObserve_CountsByOutcome(t *testing.T) {
	m := New("", nil)
	m.Observe(result("backup", dispatch.Success, true))
	m.Observe(result("backup", dispatch.Success, false))
	m.Observe(result("backup", dispatch.Failure, true))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DispatchTotal.WithLabelValues("backup", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DispatchTotal.WithLabelValues("backup", "failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WakeLockHeldTotal.WithLabelValues("backup")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DispatchDuration))
}

func TestLoopEvents(t *testing.T) {
	m := New("", nil)
	m.Coalesced("poll", 3)
	m.Coalesced("poll", 2)
	m.RearmFailed("poll")

	assert.Equal(t, 5.0, testutil.ToFloat64(m.CoalescedTotal.WithLabelValues("poll")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RearmFailuresTotal.WithLabelValues("poll")))
}

func TestObserve_WritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "micetimer.prom")
	m := New(path, nil)

	m.Observe(result("sync", dispatch.LaunchError, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `micetimer_dispatch_total{outcome="launch_error",timer="sync"} 1`)
	assert.Contains(t, string(data), "micetimer_dispatch_duration_seconds_bucket")
}

func TestObserve_TextfileFailureLogged(t *testing.T) {
	log := logger.NewMockLogger()
	m := New(filepath.Join(t.TempDir(), "missing", "dir", "micetimer.prom"), log)

	m.Observe(result("sync", dispatch.Success, false))

	require.Len(t, log.WarningCalls, 1)
	assert.Contains(t, log.WarningCalls[0], "Failed to write metrics")
}
