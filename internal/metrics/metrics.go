// Package metrics exposes evaluation counters and score histograms.
package metrics

import "time"

// Recorder defines the metric hooks called once per evaluated comparison.
type Recorder interface {
	ObserveEvaluation(scenario, label string, finalScore float64, duration time.Duration)
	ObserveGate(scenario, action string, vetoed bool)
	ObserveError(scenario string)
}

// NopRecorder drops every observation.
type NopRecorder struct{}

func (NopRecorder) ObserveEvaluation(string, string, float64, time.Duration) {}
func (NopRecorder) ObserveGate(string, string, bool)                          {}
func (NopRecorder) ObserveError(string)                                       {}
