package authsession

import "time"

// Recorder observes session outcomes. Implementations must be safe for
// concurrent use and must not call back into the Manager.
type Recorder interface {
	ObserveLogin(err error, d time.Duration)
	ObserveRefresh(err error, d time.Duration)
	ObserveRestore(err error)
	ObserveTransition(from, to Status)
}

type noopRecorder struct{}

func (noopRecorder) ObserveLogin(error, time.Duration)   {}
func (noopRecorder) ObserveRefresh(error, time.Duration) {}
func (noopRecorder) ObserveRestore(error)                {}
func (noopRecorder) ObserveTransition(Status, Status)    {}
