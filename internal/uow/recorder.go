package uow

import "time"

// Recorder observes the engine. Implementations must be safe for concurrent use.
type Recorder interface {
	AttemptStarted()
	Conflict()
	Committed(attempts int, duration time.Duration)
	Exhausted()
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) AttemptStarted() {}
func (NopRecorder) Conflict() {}
func (NopRecorder) Committed(int, time.Duration) {}
func (NopRecorder) Exhausted() {}
