package source

import (
	"errors"
	"regexp"
	"strconv"
	"time"

	"wxcal/internal/forecast"
)

// Field extraction patterns for the widget HTML. Each field is searched
// independently; missing fields degrade to sentinels rather than failing
// the whole parse.
var (
	reMainTemp = regexp.MustCompile(`<strong>(-?\d+)&deg;</strong>`)
	reMaxTemp  = regexp.MustCompile(`<td class="max-temp">(-?\d+)&deg;</td>`)
	reMinTemp  = regexp.MustCompile(`<td class="min-temp">(-?\d+)&deg;</td>`)
	reSunrise  = regexp.MustCompile(`<div class="rise">(\d{2}:\d{2})</div>`)
	reSunset   = regexp.MustCompile(`<div class="set">(\d{2}:\d{2})</div>`)
	reIcon     = regexp.MustCompile(`<div class="icon ([nd]\d+)"></div>`)
)

// conditionRange maps a span of widget icon codes to a description.
type conditionRange struct {
	lo, hi int
	desc   string
}

// The widget's icon code space is not documented; this mapping is
// reverse-engineered from observed templates and deliberately kept as
// package data so it can be corrected without touching parse logic.
// Exact codes take priority over range fallbacks.
var (
	exactConditions = map[int]string{
		200: "Light Snow",
		210: "Sleet",
		500: "Light Rain",
		510: "Showers",
		520: "Thunderstorm",
	}

	rangeConditions = []conditionRange{
		{500, 999, "Rain"},
		{400, 499, "Cloudy"},
		{300, 399, "Partly Cloudy"},
		{200, 299, "Snow"},
	}
)

// iconDescription maps a widget icon code like "d305" or "n510" to a
// human-readable condition. Unknown or unparseable codes default to
// "Clear".
func iconDescription(code string) string {
	if len(code) < 2 {
		return "Clear"
	}
	num, err := strconv.Atoi(code[1:]) // drop the leading day/night marker
	if err != nil {
		return "Clear"
	}
	if desc, ok := exactConditions[num]; ok {
		return desc
	}
	for _, r := range rangeConditions {
		if num >= r.lo && num <= r.hi {
			return r.desc
		}
	}
	return "Clear"
}

// parseWidget extracts per-day records from the widget endpoint HTML.
// The number of valid days is the minimum of how many max, min and
// prominent temperatures were found; zero days is a parse failure that
// triggers tier fallback.
func parseWidget(html string, today time.Time) ([]forecast.Record, error) {
	mainTemps := captures(reMainTemp, html)
	maxTemps := captures(reMaxTemp, html)
	minTemps := captures(reMinTemp, html)
	sunrises := captures(reSunrise, html)
	sunsets := captures(reSunset, html)
	icons := captures(reIcon, html)

	days := min(len(mainTemps), len(maxTemps), len(minTemps))
	if days == 0 {
		return nil, errors.New("no forecast days found in widget response")
	}
	if days > forecast.Days {
		days = forecast.Days
	}

	records := make([]forecast.Record, 0, days)
	for i := 0; i < days; i++ {
		rec := forecast.Record{
			Date:        forecast.DateOnly(today).AddDate(0, 0, i),
			TempCurrent: mainTemps[i] + "°C",
			TempMax:     maxTemps[i] + "°C",
			TempMin:     minTemps[i] + "°C",
			Description: "Clear",
		}
		if i < len(icons) {
			rec.Description = iconDescription(icons[i])
		}
		if i < len(sunrises) {
			rec.Sunrise = sunrises[i]
		}
		if i < len(sunsets) {
			rec.Sunset = sunsets[i]
		}
		records = append(records, rec)
	}
	return records, nil
}

// captures returns the first capture group of every match.
func captures(re *regexp.Regexp, s string) []string {
	matches := re.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
