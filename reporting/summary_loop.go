package reporting

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kcz17/measured/logging"
	"github.com/kcz17/measured/measuring"
	"go.uber.org/zap"
)

// SummaryLoop periodically sends a summary of the store to a logging driver,
// allowing response times to be monitored without polling the report
// endpoint.
type SummaryLoop struct {
	store  *measuring.Store
	logger logging.Logger
	log    *zap.Logger
	// interval is the period between two summaries.
	interval time.Duration
	// sortBy orders the rows of every summary.
	sortBy measuring.SortOption
	// loopWG allows the spawned goroutine to be gracefully stopped.
	loopStarted bool
	loopWG      *sync.WaitGroup
	loopStop    chan bool
	// loopMux guards the loop fields against concurrent Start and Stop calls.
	loopMux *sync.Mutex
}

func NewSummaryLoop(
	store *measuring.Store,
	logger logging.Logger,
	log *zap.Logger,
	interval time.Duration,
	sortBy measuring.SortOption,
) (*SummaryLoop, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("NewSummaryLoop() expected interval > 0; got interval = %v", interval)
	}

	return &SummaryLoop{
		store:    store,
		logger:   logger,
		log:      log,
		interval: interval,
		sortBy:   sortBy,
		loopMux:  &sync.Mutex{},
	}, nil
}

func (l *SummaryLoop) Start() error {
	l.loopMux.Lock()
	defer l.loopMux.Unlock()

	if l.loopStarted {
		return errors.New("summary loop already started")
	}

	l.loopStop = make(chan bool, 1)
	l.loopWG = &sync.WaitGroup{}
	l.loopWG.Add(1)
	go l.summaryLoop()

	l.loopStarted = true
	l.log.Info("summary loop started", zap.Duration("interval", l.interval), zap.Stringer("sortBy", l.sortBy))
	return nil
}

// Stop waits for an in-flight summary to be logged before returning.
func (l *SummaryLoop) Stop() error {
	l.loopMux.Lock()
	defer l.loopMux.Unlock()

	if !l.loopStarted {
		return errors.New("summary loop not yet started")
	}

	close(l.loopStop)
	l.loopWG.Wait()

	l.loopStarted = false
	l.log.Info("summary loop stopped")
	return nil
}

func (l *SummaryLoop) summaryLoop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer l.loopWG.Done()
	for {
		select {
		case <-ticker.C:
			rows := l.store.Summary(l.sortBy)
			l.logger.LogSummary(rows)
		case <-l.loopStop:
			return
		}
	}
}
