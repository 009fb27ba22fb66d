package extract

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"elecprice/internal/price"
)

var day = time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// hourlyPage renders one block per hour with the price in Spanish notation.
func hourlyPage() string {
	var b strings.Builder
	b.WriteString("<html><body><h1>Precio de la luz hoy</h1>")
	for hour := 0; hour < 24; hour++ {
		fmt.Fprintf(&b, `<div class="row"><span class="h">%s</span><span class="p">0,%04d €/kWh</span></div>`,
			HourLabel(hour), 1000+hour*10)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestHourLabel(t *testing.T) {
	require.Equal(t, "00:00 - 01:00", HourLabel(0))
	require.Equal(t, "07:00 - 08:00", HourLabel(7))
	require.Equal(t, "23:00 - 24:00", HourLabel(23))
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0,1072", "0.1072", true},
		{"0.1072", "0.1072", true},
		{" 12,5 ", "12.5", true},
		{"", "0", false},
		{"abc", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDecimal(tt.in)
			require.Equal(t, tt.ok, ok)
			require.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestDecimalNearUnit(t *testing.T) {
	got, ok := DecimalNearUnit("hora 3 cuesta 0,2000 o bien 0,1500 €/kWh")
	require.True(t, ok)
	require.True(t, got.Equal(dec("0.15")))

	got, ok = DecimalNearUnit("1,5 x 0.0999 ")
	require.True(t, ok)
	require.True(t, got.Equal(dec("0.0999")))

	_, ok = DecimalNearUnit("sin precio")
	require.False(t, ok)
}

func TestTailRunes(t *testing.T) {
	require.Equal(t, "día", tailRunes("del día", 3))
	require.Equal(t, "abc", tailRunes("abc", 10))
	require.Equal(t, "", tailRunes("abc", 0))
	require.Equal(t, "del", headRunes("del día", 3))
	require.Equal(t, "ñú", headRunes("ñú", 5))
}

func TestExtract_HourLabels(t *testing.T) {
	series, method := ExtractWithMethod(hourlyPage(), day)

	require.Equal(t, MethodHourLabels, method)
	require.Equal(t, 24, series.Len())
	require.True(t, series.IsComplete())
	for hour := 0; hour < 24; hour++ {
		r := series.At(hour)
		require.Equal(t, hour, r.Hour.Hour())
		want := dec(fmt.Sprintf("0.%04d", 1000+hour*10))
		require.True(t, r.Price.Equal(want), "hour %d: got %s, want %s", hour, r.Price, want)
	}
}

func TestExtract_DotAndCommaAgree(t *testing.T) {
	comma := Extract(hourlyPage(), day)
	dot := Extract(strings.ReplaceAll(hourlyPage(), "0,", "0."), day)

	if diff := cmp.Diff(comma.Records(), dot.Records()); diff != "" {
		t.Errorf("comma and dot pages differ (-comma +dot):\n%s", diff)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	page := hourlyPage()
	first := Extract(page, day)
	second := Extract(page, day)

	if diff := cmp.Diff(first.Records(), second.Records()); diff != "" {
		t.Errorf("repeated extraction differs (-first +second):\n%s", diff)
	}
}

func TestExtract_PartialLabels(t *testing.T) {
	page := "<p>" + HourLabel(8) + " <b>0,2100 €/kWh</b></p><p>" + HourLabel(2) + " <b>0,0800 €/kWh</b></p>"
	series := Extract(page, day)

	require.Equal(t, 2, series.Len())
	require.Equal(t, 2, series.At(0).Hour.Hour())
	require.True(t, series.At(0).Price.Equal(dec("0.08")))
	require.Equal(t, 8, series.At(1).Hour.Hour())
	require.False(t, series.IsComplete())
}

// tablePage has a legend that mentions every hour label before the table
// without a number, so only the table-scoped heuristic finds prices.
func tablePage(padding int) string {
	var b strings.Builder
	b.WriteString("<ul class=\"legend\">")
	for hour := 0; hour < 24; hour++ {
		fmt.Fprintf(&b, "<li>%s en €/kWh</li>", HourLabel(hour))
	}
	b.WriteString("</ul><h2>" + TableAnchor + "</h2><table>")
	for hour := 0; hour < 24; hour++ {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s0,%04d €/kWh</td></tr>",
			HourLabel(hour), strings.Repeat(" ", padding), 1200+hour)
	}
	b.WriteString("</table>")
	return b.String()
}

func TestExtract_TableFallback(t *testing.T) {
	require.Empty(t, fromHourLabels(tablePage(0), day))

	series, method := ExtractWithMethod(tablePage(0), day)

	require.Equal(t, MethodTable, method)
	require.Equal(t, 24, series.Len())
	require.True(t, series.At(5).Price.Equal(dec("0.1205")))
}

func TestExtract_TablePriceBeyondLookahead(t *testing.T) {
	require.Empty(t, fromTable(tablePage(120), day))
}

const summaryPage = `<section class="resumen">
<p>Precio más bajo del día</p><p>04h - 05h</p><p><b>0,0850 €/kWh</b></p>
<p>Precio más alto del día</p><p>20h - 21h</p><p><b>0,2450 €/kWh</b></p>
<p>Precio medio del día</p><p><b>0,1500 €/kWh</b></p>
</section>`

func TestExtractSummary(t *testing.T) {
	s := ExtractSummary(summaryPage)

	require.True(t, s.Lowest.Equal(dec("0.085")))
	require.Equal(t, 4, s.LowestHour)
	require.True(t, s.Highest.Equal(dec("0.245")))
	require.Equal(t, 20, s.HighestHour)
	require.True(t, s.Average.Equal(dec("0.15")))
	require.True(t, s.HasValues())
}

func TestExtractSummary_PriceNextToAnchor(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"suffix right after anchor", AverageAnchor + " 0,13 €/kWh", "0.13"},
		{"first of several prices", AverageAnchor + ": 0,12 €/kWh <small>ayer 0,19 €/kWh</small>", "0.12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ExtractSummary(tt.html)
			require.True(t, s.Average.Equal(dec(tt.want)), "Average = %s, want %s", s.Average, tt.want)
		})
	}
}

func TestExtract_SummaryFallback(t *testing.T) {
	series, method := ExtractWithMethod(summaryPage, day)

	require.Equal(t, MethodSummary, method)
	require.Equal(t, 24, series.Len())
	require.True(t, series.IsComplete())

	lowest, ok := series.Lowest()
	require.True(t, ok)
	require.Equal(t, 4, lowest.Hour.Hour())
	require.True(t, lowest.Price.Equal(dec("0.085")))

	highest, ok := series.Highest()
	require.True(t, ok)
	require.True(t, highest.Price.Equal(dec("0.245")))
	require.True(t, series.At(20).Price.Equal(dec("0.245")))

	for _, r := range series.Records() {
		require.False(t, r.Price.IsNegative())
	}

	// span 0.16: night 0.101, morning 0.197, midday 0.149, afternoon 0.117, late 0.181
	require.True(t, series.At(1).Price.Equal(dec("0.101")))
	require.True(t, series.At(8).Price.Equal(dec("0.197")))
	require.True(t, series.At(12).Price.Equal(dec("0.149")))
	require.True(t, series.At(15).Price.Equal(dec("0.117")))
	require.True(t, series.At(18).Price.Equal(dec("0.245")))
	require.True(t, series.At(23).Price.Equal(dec("0.181")))
}

func TestSummaryComplete_AverageOnly(t *testing.T) {
	s := ExtractSummary(`<p>Precio medio del día</p><p><b>0,1500 €/kWh</b></p>`)
	series := price.NewSeries(s.Complete(day)...)

	require.Equal(t, 24, series.Len())
	lowest, _ := series.Lowest()
	highest, _ := series.Highest()
	require.True(t, lowest.Price.Equal(dec("0.09")), "lowest = %s", lowest.Price)
	require.True(t, highest.Price.Equal(dec("0.21")), "highest = %s", highest.Price)
}

func TestSummaryComplete_OneSided(t *testing.T) {
	lowOnly := Summary{Lowest: dec("0.08"), LowestHour: 3}
	series := price.NewSeries(lowOnly.Complete(day)...)
	require.True(t, series.At(3).Price.Equal(dec("0.08")))
	require.True(t, series.At(19).Price.Equal(dec("0.2")))

	highOnly := Summary{Highest: dec("0.3"), HighestHour: 20}
	series = price.NewSeries(highOnly.Complete(day)...)
	require.True(t, series.At(20).Price.Equal(dec("0.3")))
	// hour 0 is the default lowest hour and receives the derived lowest
	require.True(t, series.At(0).Price.Equal(dec("0.12")))
}

func TestSummaryComplete_Empty(t *testing.T) {
	require.Nil(t, Summary{}.Complete(day))
}

func TestExtract_NoMatches(t *testing.T) {
	series, method := ExtractWithMethod("<html><body><p>Mantenimiento</p></body></html>", day)

	require.Equal(t, MethodNone, method)
	require.True(t, series.IsEmpty())
}
