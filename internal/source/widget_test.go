package source

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wxcal/internal/forecast"
)

// widgetHTML fabricates a widget response in the template shape the
// parser expects.
func widgetHTML(days int, icons ...string) string {
	var b strings.Builder
	for i := 0; i < days; i++ {
		icon := "d305"
		if i < len(icons) {
			icon = icons[i]
		}
		fmt.Fprintf(&b, `<div class="day">`)
		fmt.Fprintf(&b, `<div class="icon %s"></div>`, icon)
		fmt.Fprintf(&b, `<strong>%d&deg;</strong>`, 20+i)
		fmt.Fprintf(&b, `<td class="max-temp">%d&deg;</td>`, 25+i)
		fmt.Fprintf(&b, `<td class="min-temp">%d&deg;</td>`, 14+i)
		fmt.Fprintf(&b, `<div class="rise">06:0%d</div>`, i)
		fmt.Fprintf(&b, `<div class="set">20:4%d</div>`, i)
		fmt.Fprintf(&b, `</div>`)
	}
	return b.String()
}

var testToday = time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)

func TestParseWidget(t *testing.T) {
	records, err := parseWidget(widgetHTML(4), testToday)
	require.NoError(t, err)
	require.Len(t, records, 4)

	first := records[0]
	assert.Equal(t, testToday, first.Date)
	assert.Equal(t, "20°C", first.TempCurrent)
	assert.Equal(t, "25°C", first.TempMax)
	assert.Equal(t, "14°C", first.TempMin)
	assert.Equal(t, "Partly Cloudy", first.Description)
	assert.Equal(t, "06:00", first.Sunrise)
	assert.Equal(t, "20:40", first.Sunset)

	assert.Equal(t, testToday.AddDate(0, 0, 3), records[3].Date)
	assert.Equal(t, "28°C", records[3].TempMax)
}

func TestParseWidgetNegativeTemperatures(t *testing.T) {
	html := `<strong>-3&deg;</strong>` +
		`<td class="max-temp">-1&deg;</td>` +
		`<td class="min-temp">-8&deg;</td>`
	records, err := parseWidget(html, testToday)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "-1°C", records[0].TempMax)
	assert.Equal(t, "-8°C", records[0].TempMin)
}

func TestParseWidgetDayCountIsMinimumOfTemperatureFields(t *testing.T) {
	// Three prominent temps but only two max/min pairs: two valid days.
	html := widgetHTML(2) + `<strong>19&deg;</strong>`
	records, err := parseWidget(html, testToday)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseWidgetNoDaysIsError(t *testing.T) {
	_, err := parseWidget("<html><body>nothing here</body></html>", testToday)
	assert.Error(t, err)
}

func TestParseWidgetMissingIconsDefaultToClear(t *testing.T) {
	html := `<strong>20&deg;</strong>` +
		`<td class="max-temp">25&deg;</td>` +
		`<td class="min-temp">14&deg;</td>`
	records, err := parseWidget(html, testToday)
	require.NoError(t, err)
	assert.Equal(t, "Clear", records[0].Description)
}

func TestIconDescription(t *testing.T) {
	cases := []struct {
		code string
		desc string
	}{
		{"d520", "Thunderstorm"}, // exact code beats the rain range
		{"n510", "Showers"},
		{"d500", "Light Rain"},
		{"d210", "Sleet"},
		{"n200", "Light Snow"},
		{"d550", "Rain"},
		{"n420", "Cloudy"},
		{"d305", "Partly Cloudy"},
		{"n250", "Snow"},
		{"d101", "Clear"},
		{"d", "Clear"},
		{"", "Clear"},
		{"dxx", "Clear"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.desc, iconDescription(tc.code), "code %q", tc.code)
	}
}

func TestParseWidgetCapsAtSevenDays(t *testing.T) {
	records, err := parseWidget(widgetHTML(10), testToday)
	require.NoError(t, err)
	assert.Len(t, records, forecast.Days)
}
