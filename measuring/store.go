package measuring

import (
	"sync"
	"time"
)

// Key identifies one aggregated series. Path is the matched route pattern,
// or the literal request path when no route matched.
type Key struct {
	Path   string
	Method string
}

// Store aggregates response times per Key. A single Store is created at
// startup and shared by pointer between the request pipeline and the report
// endpoints.
//
// A key invariant is that every key present in series has at least one
// sample, which keeps averages free of a zero-count check at read time.
type Store struct {
	// series maps a Key to its response times in order of arrival.
	series map[Key][]time.Duration
	// seriesMux guards series. Record is the hot path and takes the write
	// lock for a single map lookup and append.
	seriesMux *sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		series:    map[Key][]time.Duration{},
		seriesMux: &sync.RWMutex{},
	}
}

// Record appends a response time to the series for key, creating the series
// if it does not yet exist.
func (s *Store) Record(key Key, t time.Duration) {
	if t < 0 {
		t = 0
	}

	s.seriesMux.Lock()
	s.series[key] = append(s.series[key], t)
	s.seriesMux.Unlock()
}

// Len returns the number of response times recorded for key.
func (s *Store) Len(key Key) int {
	s.seriesMux.RLock()
	defer s.seriesMux.RUnlock()
	return len(s.series[key])
}

// Keys returns the number of distinct keys recorded.
func (s *Store) Keys() int {
	s.seriesMux.RLock()
	defer s.seriesMux.RUnlock()
	return len(s.series)
}

// Summary calculates a SummaryRow per key from a single consistent view of
// the store, sorted descending by sortBy.
func (s *Store) Summary(sortBy SortOption) []SummaryRow {
	s.seriesMux.RLock()
	rows := make([]SummaryRow, 0, len(s.series))
	for key, times := range s.series {
		rows = append(rows, summarize(key, times))
	}
	s.seriesMux.RUnlock()

	sortRows(rows, sortBy)
	return rows
}

// TSV renders Summary as tab-separated values with a header line.
func (s *Store) TSV(sortBy SortOption) string {
	return FormatTSV(s.Summary(sortBy))
}

// Clear discards every key, returning the store to its initial state.
func (s *Store) Clear() {
	s.seriesMux.Lock()
	s.series = map[Key][]time.Duration{}
	s.seriesMux.Unlock()
}
