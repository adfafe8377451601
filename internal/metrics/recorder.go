package metrics

import "time"

// Outcome labels the final status of a build.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeNoop    Outcome = "noop"
	OutcomeFailed  Outcome = "failed"
)

// Recorder defines observability hooks for a site build. All methods must be
// safe to call on the NoopRecorder so callers never nil-check.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	ObserveLocaleDuration(locale string, d time.Duration)
	IncBuildOutcome(outcome Outcome)
	IncPagesRendered(locale string)
	AddAssets(locale, mode string, n int)
	IncAutolinkQueries(locale string)
	IncRenderCycles(locale string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)          {}
func (NoopRecorder) ObserveLocaleDuration(string, time.Duration) {}
func (NoopRecorder) IncBuildOutcome(Outcome)                     {}
func (NoopRecorder) IncPagesRendered(string)                     {}
func (NoopRecorder) AddAssets(string, string, int)               {}
func (NoopRecorder) IncAutolinkQueries(string)                   {}
func (NoopRecorder) IncRenderCycles(string)                      {}
