package price

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

func rec(hour int, value string) Record {
	return NewRecord(day, hour, decimal.RequireFromString(value))
}

func TestNewSeries_SortsByHour(t *testing.T) {
	s := NewSeries(rec(5, "0.3"), rec(1, "0.1"), rec(3, "0.2"))

	require.Equal(t, 3, s.Len())
	require.Equal(t, 1, s.At(0).Hour.Hour())
	require.Equal(t, 3, s.At(1).Hour.Hour())
	require.Equal(t, 5, s.At(2).Hour.Hour())
}

func TestNewSeries_DoesNotAliasInput(t *testing.T) {
	in := []Record{rec(2, "0.2"), rec(1, "0.1")}
	s := NewSeries(in...)

	in[0] = rec(9, "9.9")
	require.Equal(t, 1, s.At(0).Hour.Hour())
	require.Equal(t, 2, s.At(1).Hour.Hour())

	out := s.Records()
	out[0] = rec(9, "9.9")
	require.Equal(t, 1, s.At(0).Hour.Hour())
}

func TestAverage(t *testing.T) {
	require.True(t, NewSeries().Average().IsZero())

	s := NewSeries(rec(0, "0.1"), rec(1, "0.3"))
	require.True(t, s.Average().Equal(decimal.RequireFromString("0.2")), "got %s", s.Average())
}

func TestLowestHighest_TiesGoToFirstOccurrence(t *testing.T) {
	s := NewSeries(rec(0, "0.2"), rec(1, "0.1"), rec(2, "0.3"), rec(3, "0.1"), rec(4, "0.3"))

	low, ok := s.Lowest()
	require.True(t, ok)
	require.Equal(t, 1, low.Hour.Hour())

	high, ok := s.Highest()
	require.True(t, ok)
	require.Equal(t, 2, high.Hour.Hour())
}

func TestLowestHighest_Empty(t *testing.T) {
	_, ok := NewSeries().Lowest()
	require.False(t, ok)
	_, ok = NewSeries().Highest()
	require.False(t, ok)
}

func TestCurrentPrice(t *testing.T) {
	s := NewSeries(rec(9, "0.19"), rec(10, "0.21"))

	now := time.Date(2024, time.January, 15, 10, 42, 0, 0, time.UTC)
	require.True(t, s.CurrentPrice(now).Equal(decimal.RequireFromString("0.21")))

	missing := time.Date(2024, time.January, 15, 23, 5, 0, 0, time.UTC)
	require.True(t, s.CurrentPrice(missing).IsZero())
}

func TestIsComplete(t *testing.T) {
	records := make([]Record, 0, HoursPerDay)
	for h := 0; h < HoursPerDay; h++ {
		records = append(records, rec(h, "0.1"))
	}
	require.True(t, NewSeries(records...).IsComplete())
	require.False(t, NewSeries(records[:23]...).IsComplete())

	gap := append([]Record{}, records[:12]...)
	gap = append(gap, records[13:]...)
	nextDay := rec(12, "0.1")
	nextDay.Hour = nextDay.Hour.AddDate(0, 0, 1)
	gap = append(gap, nextDay)
	require.False(t, NewSeries(gap...).IsComplete())
}

func TestSummarize(t *testing.T) {
	s := NewSeries(rec(0, "0.10"), rec(1, "0.30"))
	sum := s.Summarize(time.Date(2024, time.January, 15, 1, 0, 0, 0, time.UTC))

	require.True(t, sum.Current.Equal(decimal.RequireFromString("0.3")))
	require.NotNil(t, sum.Lowest)
	require.Equal(t, 0, sum.Lowest.Hour.Hour())
	require.NotNil(t, sum.Highest)
	require.Equal(t, 1, sum.Highest.Hour.Hour())
	require.True(t, sum.Average.Equal(decimal.RequireFromString("0.2")))

	empty := NewSeries().Summarize(time.Now())
	require.Nil(t, empty.Lowest)
	require.Nil(t, empty.Highest)
}

func TestSeries_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(NewSeries())
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(b))

	b, err = json.Marshal(NewSeries(rec(0, "0.1072")))
	require.NoError(t, err)
	require.JSONEq(t, `[{"hour":"2024-01-15T00:00:00Z","price":"0.1072"}]`, string(b))
}

func TestProvenanceLabel(t *testing.T) {
	tests := []struct {
		p    Provenance
		want string
	}{
		{ProvenanceScraped, "Web"},
		{ProvenanceAPI, "API"},
		{ProvenanceSynthetic, "Estimado"},
	}
	for _, tt := range tests {
		t.Run(string(tt.p), func(t *testing.T) {
			require.Equal(t, tt.want, tt.p.Label())
		})
	}
	require.True(t, ProvenanceAPI.IsLive())
	require.False(t, ProvenanceSynthetic.IsLive())
}
