package forecast

import "time"

// Days is the number of records every fetch returns. Calendars always
// cover today plus the following six days, regardless of how much data
// the upstream source actually provided.
const Days = 7

// TempUnknown is the sentinel used when a temperature could not be read.
const TempUnknown = "N/A"

// Description sentinels substituted when no real condition text exists.
// The encoder treats these as "no meaningful description".
const (
	DescCheckSource  = "Check okairos.gr"
	DescCheckDetails = "Check source for details"
)

// Record is one day's normalized weather reading. Temperatures are kept
// as display strings with their unit suffix (e.g. "23°C") or TempUnknown.
// Optional fields are empty strings when the source did not supply them.
type Record struct {
	Date          time.Time
	TempMin       string
	TempMax       string
	TempCurrent   string // only set when a live reading exists
	Description   string
	Precipitation string
	Wind          string
	WindDir       string
	Sunrise       string
	Sunset        string
}

// Meaningful reports whether desc is real condition text rather than
// empty or one of the check-source sentinels.
func Meaningful(desc string) bool {
	return desc != "" && desc != DescCheckSource && desc != DescCheckDetails
}

// DateOnly truncates t to a calendar date in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Extend pads records up to want days by replicating the last record's
// non-date fields forward, incrementing only the date. The current
// temperature is not carried forward since it is a live reading. Records
// must start at start; an empty input yields placeholders.
func Extend(records []Record, start time.Time, want int) []Record {
	if len(records) == 0 {
		return Placeholder(start, want)
	}
	if len(records) > want {
		records = records[:want]
	}
	for len(records) < want {
		last := records[len(records)-1]
		next := last
		next.Date = DateOnly(start).AddDate(0, 0, len(records))
		next.TempCurrent = ""
		records = append(records, next)
	}
	return records
}

// Placeholder synthesizes days records carrying only sentinel values,
// used when every acquisition tier failed.
func Placeholder(start time.Time, days int) []Record {
	records := make([]Record, 0, days)
	for i := 0; i < days; i++ {
		records = append(records, Record{
			Date:        DateOnly(start).AddDate(0, 0, i),
			TempMin:     TempUnknown,
			TempMax:     TempUnknown,
			Description: DescCheckSource,
		})
	}
	return records
}
