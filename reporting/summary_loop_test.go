package reporting

import (
	"sync"
	"testing"
	"time"

	"github.com/kcz17/measured/measuring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingLogger keeps every summary it receives.
type recordingLogger struct {
	mux       sync.Mutex
	summaries [][]measuring.SummaryRow
	resets    int
}

func (l *recordingLogger) LogSummary(rows []measuring.SummaryRow) {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.summaries = append(l.summaries, rows)
}

func (l *recordingLogger) LogReset() {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.resets++
}

func (l *recordingLogger) count() int {
	l.mux.Lock()
	defer l.mux.Unlock()
	return len(l.summaries)
}

func (l *recordingLogger) first() []measuring.SummaryRow {
	l.mux.Lock()
	defer l.mux.Unlock()
	return l.summaries[0]
}

func TestNewSummaryLoop_RejectsNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		_, err := NewSummaryLoop(measuring.NewStore(), &recordingLogger{}, zap.NewNop(), interval, measuring.SortSum)
		assert.Error(t, err)
	}
}

func TestSummaryLoop_LogsSortedSummaries(t *testing.T) {
	store := measuring.NewStore()
	store.Record(measuring.Key{Path: "/status", Method: "GET"}, time.Millisecond)
	store.Record(measuring.Key{Path: "/hello/<id>", Method: "GET"}, 5*time.Millisecond)
	store.Record(measuring.Key{Path: "/hello/<id>", Method: "GET"}, 15*time.Millisecond)

	logger := &recordingLogger{}
	loop, err := NewSummaryLoop(store, logger, zap.NewNop(), 5*time.Millisecond, measuring.SortSum)
	require.NoError(t, err)

	require.NoError(t, loop.Start())
	assert.Eventually(t, func() bool { return logger.count() >= 2 }, time.Second, time.Millisecond)
	require.NoError(t, loop.Stop())

	rows := logger.first()
	require.Len(t, rows, 2)
	assert.Equal(t, "/hello/<id>", rows[0].Path)
	assert.Equal(t, int64(20), rows[0].Sum)
	assert.Equal(t, "/status", rows[1].Path)

	// No summaries are logged once stopped.
	stopped := logger.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, logger.count())
}

func TestSummaryLoop_StartStopTransitions(t *testing.T) {
	loop, err := NewSummaryLoop(measuring.NewStore(), &recordingLogger{}, zap.NewNop(), time.Hour, measuring.SortSum)
	require.NoError(t, err)

	assert.Error(t, loop.Stop())
	require.NoError(t, loop.Start())
	assert.Error(t, loop.Start())
	require.NoError(t, loop.Stop())
	assert.Error(t, loop.Stop())

	// The loop can be restarted after being stopped.
	require.NoError(t, loop.Start())
	require.NoError(t, loop.Stop())
}
