package source

import (
	"regexp"
	"strings"
	"time"

	"wxcal/internal/forecast"
)

// Temperature-range patterns tried in order against the location page;
// the first match wins. Group 1 is the minimum, group 2 the maximum.
var rangePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(-?\d+)°\s*[–-]\s*(-?\d+)°`),
	regexp.MustCompile(`(-?\d+)°C\s*[–-]\s*(-?\d+)°C`),
	regexp.MustCompile(`min[^\d]*(-?\d+)[^\d]*max[^\d]*(-?\d+)`),
}

// conditionKeyword maps Greek and English condition terms found on the
// page to a normalized English label. Evaluated in order; first match
// wins.
type conditionKeyword struct {
	word string
	desc string
}

var conditionKeywords = []conditionKeyword{
	{"καταιγίδες", "Thunderstorms"},
	{"καταιγίδα", "Thunderstorm"},
	{"thunderstorm", "Thunderstorm"},
	{"χιονόπτωση", "Snow"},
	{"χιόνι", "Snow"},
	{"snow", "Snow"},
	{"βροχές", "Rain"},
	{"βροχή", "Rain"},
	{"rain", "Rain"},
	{"ομίχλη", "Fog"},
	{"fog", "Fog"},
	{"νεφώσεις", "Cloudy"},
	{"συννεφιά", "Cloudy"},
	{"cloudy", "Cloudy"},
	{"ηλιοφάνεια", "Sunny"},
	{"ηλιόλουστος", "Sunny"},
	{"sunny", "Sunny"},
	{"αίθριος", "Clear"},
	{"αίθρια", "Clear"},
	{"clear", "Clear"},
	{"άνεμοι", "Windy"},
	{"άνεμος", "Windy"},
	{"windy", "Windy"},
}

// scrapePage extracts whatever coarse data the human-readable page
// offers. By construction every day gets the same reading; fields that
// cannot be found degrade to sentinels.
func scrapePage(html string, today time.Time) []forecast.Record {
	tempMin := forecast.TempUnknown
	tempMax := forecast.TempUnknown
	for _, re := range rangePatterns {
		if m := re.FindStringSubmatch(html); m != nil {
			tempMin = m[1] + "°C"
			tempMax = m[2] + "°C"
			break
		}
	}

	description := forecast.DescCheckDetails
	lower := strings.ToLower(html)
	for _, kw := range conditionKeywords {
		if strings.Contains(lower, kw.word) {
			description = kw.desc
			break
		}
	}

	records := make([]forecast.Record, 0, forecast.Days)
	for i := 0; i < forecast.Days; i++ {
		records = append(records, forecast.Record{
			Date:        forecast.DateOnly(today).AddDate(0, 0, i),
			TempMin:     tempMin,
			TempMax:     tempMax,
			Description: description,
		})
	}
	return records
}
