package logging

import (
	"github.com/kcz17/measured/measuring"
	"go.uber.org/zap"
)

// stdoutLogger logs summaries as structured lines, one per summary row.
type stdoutLogger struct {
	logger *zap.Logger
}

func NewStdoutLogger(logger *zap.Logger) *stdoutLogger {
	return &stdoutLogger{logger: logger.Named("summary")}
}

func (l *stdoutLogger) LogSummary(rows []measuring.SummaryRow) {
	for _, row := range rows {
		l.logger.Info("response times",
			zap.String("path", row.Path),
			zap.String("method", row.Method),
			zap.Int64("cnt", row.Count),
			zap.Int64("sum", row.Sum),
			zap.Int64("avg", row.Avg),
			zap.Int64("max", row.Max),
			zap.Int64("min", row.Min),
		)
	}
}

func (l *stdoutLogger) LogReset() {
	l.logger.Info("response times cleared")
}
