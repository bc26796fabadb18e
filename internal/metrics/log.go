package metrics

import (
	"log/slog"
	"time"
)

// LogRecorder writes each observation to a structured logger at debug level.
type LogRecorder struct {
	logger *slog.Logger
}

func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogRecorder{logger: logger}
}

func (l *LogRecorder) ObserveEvaluation(scenario, label string, finalScore float64, duration time.Duration) {
	l.logger.Debug("metric evaluation", "scenario", scenario, "label", label,
		"final_score", finalScore, "duration", duration)
}

func (l *LogRecorder) ObserveGate(scenario, action string, vetoed bool) {
	l.logger.Debug("metric gate", "scenario", scenario, "action", action, "vetoed", vetoed)
}

func (l *LogRecorder) ObserveError(scenario string) {
	l.logger.Debug("metric error", "scenario", scenario)
}
