package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"adaptive-decision-core/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(&logging.Config{Level: "ERROR", Output: "stderr"})
}

func TestManualSchedulerTriggersRegisteredJob(t *testing.T) {
	s := NewManualScheduler()
	runs := 0
	stop := s.Every("retrain", time.Hour, func(context.Context) { runs++ })

	s.Trigger(context.Background(), "retrain")
	s.Trigger(context.Background(), "retrain")
	if runs != 2 {
		t.Fatalf("job ran %d times, want 2", runs)
	}

	stop()
	s.Trigger(context.Background(), "retrain")
	if runs != 2 {
		t.Fatalf("job ran after stop: %d runs", runs)
	}
}

func TestManualSchedulerUnknownJobIsNoop(t *testing.T) {
	s := NewManualScheduler()
	s.Trigger(context.Background(), "missing")
}

func TestTickerSchedulerRunsAndStops(t *testing.T) {
	s := NewTickerScheduler(testLogger())
	var runs atomic.Int64
	stop := s.Every("fast", 5*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})

	deadline := time.After(2 * time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("job never ran twice")
		case <-time.After(time.Millisecond):
		}
	}

	stop()
	s.Wait()
}
