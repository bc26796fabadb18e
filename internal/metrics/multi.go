package metrics

import "time"

// MultiRecorder fans out metrics to multiple recorders.
type MultiRecorder struct {
	recorders []Recorder
}

func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	nonNil := make([]Recorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			nonNil = append(nonNil, r)
		}
	}
	return &MultiRecorder{recorders: nonNil}
}

func (m *MultiRecorder) ObserveEvaluation(scenario, label string, finalScore float64, duration time.Duration) {
	for _, r := range m.recorders {
		r.ObserveEvaluation(scenario, label, finalScore, duration)
	}
}

func (m *MultiRecorder) ObserveGate(scenario, action string, vetoed bool) {
	for _, r := range m.recorders {
		r.ObserveGate(scenario, action, vetoed)
	}
}

func (m *MultiRecorder) ObserveError(scenario string) {
	for _, r := range m.recorders {
		r.ObserveError(scenario)
	}
}
