package journal

import (
	"github.com/micetimer/micetimer/internal/dispatch"
	"github.com/micetimer/micetimer/pkg/logger"
)

// FromResult converts a dispatch result to a journal run.
func FromResult(res dispatch.Result) Run {
	r := Run{
		ID:         res.RunID,
		Timer:      res.Timer,
		Command:    res.Command,
		Outcome:    res.Outcome.String(),
		ExitCode:   res.ExitCode,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		WakeLock:   res.WakeLockHeld,
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}
	return r
}

// Observer records every dispatch in j. Failures are logged and dropped.
func Observer(j *Journal, log logger.Logger) dispatch.Observer {
	return dispatch.ObserverFunc(func(res dispatch.Result) {
		if err := j.Record(FromResult(res)); err != nil {
			log.Warning("Journal: %v", err)
		}
	})
}
