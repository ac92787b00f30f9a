// Package ics serializes weather forecasts into RFC 5545 iCalendar text.
// The serializer is hand-rolled because the document's folding and
// escaping behavior is load-bearing: calendar clients re-subscribe to the
// same feed and must see stable UIDs, correctly folded physical lines and
// CRLF endings byte for byte.
package ics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"wxcal/internal/config"
	"wxcal/internal/forecast"
)

const (
	prodID    = "-//Weather Forecast Calendar//wxcal//EN"
	uidPrefix = "weather-"
	uidDomain = "@wxcal"

	// Timed events block a quarter hour; all-day events use the
	// exclusive next-day DTEND convention.
	eventDuration = 15 * time.Minute

	dateLayout     = "20060102"
	dateTimeLayout = "20060102T150405"

	summaryMaxRunes = 30
	summaryCutRunes = 27
)

// Generate renders the calendar document for one location. It is a pure
// function of its inputs; now supplies the volatile DTSTAMP value and is
// the only thing allowed to differ between two regenerations of the same
// forecast.
func Generate(loc config.Location, records []forecast.Record, now time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:" + EscapeText("Daily Weather Forecast - "+loc.Name),
		"X-WR-TIMEZONE:" + loc.Timezone,
		"X-WR-CALDESC:Daily weather forecast from okairos.gr",
	}

	dtstamp := now.UTC().Format(dateTimeLayout) + "Z"
	for _, rec := range records {
		lines = append(lines, eventLines(loc, rec, dtstamp)...)
	}
	lines = append(lines, "END:VCALENDAR")

	folded := make([]string, 0, len(lines))
	for _, line := range lines {
		folded = append(folded, FoldLine(line, FoldLimit))
	}
	return strings.Join(folded, "\r\n") + "\r\n"
}

func eventLines(loc config.Location, rec forecast.Record, dtstamp string) []string {
	date := rec.Date.Format(dateLayout)

	lines := []string{
		"BEGIN:VEVENT",
		// The UID depends on the date alone, never on content, so a
		// regenerated feed updates existing events instead of
		// duplicating them.
		"UID:" + uidPrefix + date + uidDomain,
		"DTSTAMP:" + dtstamp,
	}
	lines = append(lines, startEndLines(loc, rec.Date)...)
	lines = append(lines,
		"SUMMARY:"+EscapeText(summaryText(loc, rec)),
		"DESCRIPTION:"+EscapeText(bodyText(loc, rec)),
		"STATUS:CONFIRMED",
		"TRANSP:TRANSPARENT",
		"END:VEVENT",
	)
	return lines
}

// startEndLines emits DTSTART/DTEND. A parseable "HH:MM" event time
// yields a timed event qualified by the location's timezone identifier;
// anything else, including a malformed time, falls back to an all-day
// event for that day.
func startEndLines(loc config.Location, date time.Time) []string {
	if strings.TrimSpace(loc.EventTime) != "" {
		if hour, minute, ok := parseEventTime(loc.EventTime); ok {
			start := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
			end := start.Add(eventDuration)
			return []string{
				fmt.Sprintf("DTSTART;TZID=%s:%s", loc.Timezone, start.Format(dateTimeLayout)),
				fmt.Sprintf("DTEND;TZID=%s:%s", loc.Timezone, end.Format(dateTimeLayout)),
			}
		}
	}
	return []string{
		"DTSTART;VALUE=DATE:" + date.Format(dateLayout),
		"DTEND;VALUE=DATE:" + date.AddDate(0, 0, 1).Format(dateLayout),
	}
}

// parseEventTime parses "HH:MM"; a bare "HH" means minute zero.
func parseEventTime(s string) (hour, minute int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	if len(parts) == 2 {
		minute, err = strconv.Atoi(parts[1])
		if err != nil || minute < 0 || minute > 59 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}

// summaryText composes the event title: condition emoji, then the
// current (or max) temperature, then the condition truncated to fit a
// calendar cell, or the location name when there is no real condition.
func summaryText(loc config.Location, rec forecast.Record) string {
	temp := rec.TempCurrent
	if temp == "" {
		temp = rec.TempMax
	}
	parts := []string{weatherEmoji(rec.Description, temp)}

	if rec.TempCurrent != "" {
		parts = append(parts, rec.TempCurrent)
	} else if rec.TempMax != forecast.TempUnknown {
		parts = append(parts, rec.TempMax)
	}

	if forecast.Meaningful(rec.Description) {
		desc := rec.Description
		if runes := []rune(desc); len(runes) > summaryMaxRunes {
			desc = string(runes[:summaryCutRunes]) + "..."
		}
		parts = append(parts, desc)
	} else {
		parts = append(parts, loc.Name)
	}

	return strings.Join(parts, " ")
}

// bodyText builds the event description from whatever fields the record
// actually carries. It never echoes volatile data.
func bodyText(loc config.Location, rec forecast.Record) string {
	var lines []string

	if rec.TempMin != forecast.TempUnknown || rec.TempMax != forecast.TempUnknown {
		lines = append(lines, fmt.Sprintf("Min/Max: %s / %s", rec.TempMin, rec.TempMax))
	}
	if forecast.Meaningful(rec.Description) {
		lines = append(lines, "Conditions: "+rec.Description)
	}
	if rec.TempCurrent != "" {
		lines = append(lines, "Current: "+rec.TempCurrent)
	}
	if rec.Sunrise != "" && rec.Sunset != "" {
		lines = append(lines, fmt.Sprintf("Sun: %s - %s", rec.Sunrise, rec.Sunset))
	}

	if len(lines) == 0 {
		return "See okairos.gr for details"
	}
	if loc.WidgetPageURL != "" {
		lines = append(lines, "More: "+loc.WidgetPageURL)
	}
	return strings.Join(lines, "\n")
}
