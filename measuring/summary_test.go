package measuring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortOption(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    SortOption
		wantErr bool
	}{
		{name: "PATH", in: "PATH", want: SortPath},
		{name: "lower case method", in: "method", want: SortMethod},
		{name: "CNT", in: "CNT", want: SortCount},
		{name: "COUNT alias", in: "count", want: SortCount},
		{name: "SUM with whitespace", in: " SUM ", want: SortSum},
		{name: "AVG", in: "Avg", want: SortAvg},
		{name: "MAX", in: "MAX", want: SortMax},
		{name: "MIN", in: "MIN", want: SortMin},
		{name: "Empty string", in: "", wantErr: true},
		{name: "Unknown column", in: "P95", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSortOption(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownSortOption))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortOption_StringRoundTrips(t *testing.T) {
	for _, option := range []SortOption{SortPath, SortMethod, SortCount, SortSum, SortAvg, SortMax, SortMin} {
		parsed, err := ParseSortOption(option.String())
		require.NoError(t, err)
		assert.Equal(t, option, parsed)
	}
	assert.Equal(t, "SortOption(42)", SortOption(42).String())
}

func TestStore_SummarySortsDescending(t *testing.T) {
	s := NewStore()
	// /a: cnt 1, sum 100, max 100, min 100.
	s.Record(Key{Path: "/a", Method: "DELETE"}, 100*time.Millisecond)
	// /b: cnt 3, sum 30, avg 10, max 20, min 2.
	s.Record(Key{Path: "/b", Method: "POST"}, 2*time.Millisecond)
	s.Record(Key{Path: "/b", Method: "POST"}, 8*time.Millisecond)
	s.Record(Key{Path: "/b", Method: "POST"}, 20*time.Millisecond)
	// /c: cnt 2, sum 50, avg 25, max 40, min 10.
	s.Record(Key{Path: "/c", Method: "GET"}, 10*time.Millisecond)
	s.Record(Key{Path: "/c", Method: "GET"}, 40*time.Millisecond)

	tests := []struct {
		name   string
		sortBy SortOption
		want   []string
	}{
		{name: "PATH", sortBy: SortPath, want: []string{"/c", "/b", "/a"}},
		{name: "METHOD", sortBy: SortMethod, want: []string{"/b", "/c", "/a"}},
		{name: "CNT", sortBy: SortCount, want: []string{"/b", "/c", "/a"}},
		{name: "SUM", sortBy: SortSum, want: []string{"/a", "/c", "/b"}},
		{name: "AVG", sortBy: SortAvg, want: []string{"/a", "/c", "/b"}},
		{name: "MAX", sortBy: SortMax, want: []string{"/a", "/c", "/b"}},
		{name: "MIN", sortBy: SortMin, want: []string{"/a", "/c", "/b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, row := range s.Summary(tt.sortBy) {
				got = append(got, row.Path)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortRows_EqualRowsKeepTheirOrder(t *testing.T) {
	rows := []SummaryRow{
		{Path: "/first", Sum: 5},
		{Path: "/big", Sum: 9},
		{Path: "/second", Sum: 5},
		{Path: "/third", Sum: 5},
	}
	sortRows(rows, SortSum)

	assert.Equal(t, "/big", rows[0].Path)
	assert.Equal(t, "/first", rows[1].Path)
	assert.Equal(t, "/second", rows[2].Path)
	assert.Equal(t, "/third", rows[3].Path)
}

func TestFormatTSV(t *testing.T) {
	rows := []SummaryRow{
		{Path: "/hello/<id>/<name>", Method: "GET", Count: 4, Sum: 1030, Avg: 257, Max: 512, Min: 3},
		{Path: "/status", Method: "HEAD", Count: 1, Sum: 0, Avg: 0, Max: 0, Min: 0},
	}

	want := "PATH\tMETHOD\tCNT\tSUM\tAVG\tMAX\tMIN\n" +
		"/hello/<id>/<name>\tGET\t4\t1030\t257\t512\t3\n" +
		"/status\tHEAD\t1\t0\t0\t0\t0\n"
	assert.Equal(t, want, FormatTSV(rows))
	assert.Equal(t, "PATH\tMETHOD\tCNT\tSUM\tAVG\tMAX\tMIN\n", FormatTSV(nil))
}
