//go:build linux

package scheduler

import (
	"testing"
	"time"

	"github.com/micetimer/micetimer/internal/countdown"
	"github.com/micetimer/micetimer/internal/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_KernelTimers(t *testing.T) {
	mux, err := countdown.NewEpoll()
	require.NoError(t, err)
	defer mux.Close()

	defs := []unit.Definition{
		{Name: "fast", Unit: unit.TimerUnit{Exec: "true", OnBootSec: dur(0), OnUnitActiveSec: dur(20 * time.Millisecond)}},
		{Name: "slow", Unit: unit.TimerUnit{Exec: "true", OnBootSec: dur(time.Hour)}},
	}
	reg, err := Build(defs, countdown.NewTimerfd, mux)
	require.NoError(t, err)
	defer reg.Close()

	disp := &recordingDispatcher{}
	loop, err := NewLoop(LoopConfig{
		Registry:    reg,
		Multiplexer: mux,
		Dispatcher:  disp,
		WaitTimeout: 2 * time.Second,
	})
	require.NoError(t, err)

	deadline := time.Now().Add(5 * time.Second)
	for len(disp.calls) < 3 && time.Now().Before(deadline) {
		_, err := loop.Step()
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"fast", "fast", "fast"}, disp.calls)
}
