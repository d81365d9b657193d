package measuring

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SortOption selects the SummaryRow field a report is ordered by. Every
// ordering is descending.
type SortOption int

const (
	SortPath SortOption = iota
	SortMethod
	SortCount
	SortSum
	SortAvg
	SortMax
	SortMin
)

var ErrUnknownSortOption = errors.New("unknown sort option")

const tsvHeader = "PATH\tMETHOD\tCNT\tSUM\tAVG\tMAX\tMIN\n"

var sortOptionNames = map[SortOption]string{
	SortPath:   "PATH",
	SortMethod: "METHOD",
	SortCount:  "CNT",
	SortSum:    "SUM",
	SortAvg:    "AVG",
	SortMax:    "MAX",
	SortMin:    "MIN",
}

func (o SortOption) String() string {
	if name, ok := sortOptionNames[o]; ok {
		return name
	}
	return "SortOption(" + strconv.Itoa(int(o)) + ")"
}

// ParseSortOption parses a report column name, case-insensitively. COUNT is
// accepted as an alias of CNT.
func ParseSortOption(s string) (SortOption, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "COUNT" {
		return SortCount, nil
	}
	for option, optionName := range sortOptionNames {
		if optionName == name {
			return option, nil
		}
	}
	return 0, fmt.Errorf("ParseSortOption() expected one of {PATH|METHOD|CNT|SUM|AVG|MAX|MIN}; got %q: %w", s, ErrUnknownSortOption)
}

// SummaryRow holds the statistics of one series. Sum, Avg, Max and Min are
// whole milliseconds.
type SummaryRow struct {
	Path   string
	Method string
	Count  int64
	Sum    int64
	Avg    int64
	Max    int64
	Min    int64
}

// summarize must only be called with a non-empty series.
func summarize(key Key, times []time.Duration) SummaryRow {
	var sum time.Duration
	longest, shortest := times[0], times[0]
	for _, t := range times {
		sum += t
		if t > longest {
			longest = t
		}
		if t < shortest {
			shortest = t
		}
	}

	count := int64(len(times))
	sumMs := sum.Milliseconds()
	return SummaryRow{
		Path:   key.Path,
		Method: key.Method,
		Count:  count,
		Sum:    sumMs,
		Avg:    sumMs / count,
		Max:    longest.Milliseconds(),
		Min:    shortest.Milliseconds(),
	}
}

// sortRows orders rows descending by the given field. Rows comparing equal
// keep their relative order; no secondary key is applied.
func sortRows(rows []SummaryRow, sortBy SortOption) {
	var less func(a, b SummaryRow) bool
	switch sortBy {
	case SortPath:
		less = func(a, b SummaryRow) bool { return a.Path > b.Path }
	case SortMethod:
		less = func(a, b SummaryRow) bool { return a.Method > b.Method }
	case SortCount:
		less = func(a, b SummaryRow) bool { return a.Count > b.Count }
	case SortSum:
		less = func(a, b SummaryRow) bool { return a.Sum > b.Sum }
	case SortAvg:
		less = func(a, b SummaryRow) bool { return a.Avg > b.Avg }
	case SortMax:
		less = func(a, b SummaryRow) bool { return a.Max > b.Max }
	case SortMin:
		less = func(a, b SummaryRow) bool { return a.Min > b.Min }
	default:
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return less(rows[i], rows[j])
	})
}

// FormatTSV renders rows below the PATH METHOD CNT SUM AVG MAX MIN header.
func FormatTSV(rows []SummaryRow) string {
	var b strings.Builder
	b.WriteString(tsvHeader)
	for _, r := range rows {
		fmt.Fprintf(&b, "%s\t%s\t%d\t%d\t%d\t%d\t%d\n", r.Path, r.Method, r.Count, r.Sum, r.Avg, r.Max, r.Min)
	}
	return b.String()
}
