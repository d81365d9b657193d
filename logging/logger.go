package logging

import "github.com/kcz17/measured/measuring"

// Logger receives periodic response time summaries for monitoring.
type Logger interface {
	LogSummary(rows []measuring.SummaryRow) // Takes in summary rows in milliseconds.
	LogReset()                              // Notes that the measurements were cleared.
}

// noopLogger does not perform any logging.
type noopLogger struct{}

func NewNoopLogger() *noopLogger {
	return &noopLogger{}
}

func (*noopLogger) LogSummary([]measuring.SummaryRow) {}

func (*noopLogger) LogReset() {}
