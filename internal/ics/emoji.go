package ics

import (
	"regexp"
	"strconv"
	"strings"
)

// Temperature extremes override any condition keyword.
const (
	hotThreshold  = 30
	coldThreshold = 5

	hotEmoji     = "🔥"
	coldEmoji    = "🥶"
	defaultEmoji = "🌤️"
)

// emojiRule pairs a keyword group with its emoji. Rules are evaluated in
// order and the first group containing a match wins, so more specific
// conditions (sleet, light rain, partly cloudy) must precede the generic
// ones. Each group carries both English and Greek terms.
type emojiRule struct {
	keywords []string
	emoji    string
}

var emojiRules = []emojiRule{
	{[]string{"thunder", "καταιγίδ"}, "⛈️"},
	{[]string{"snow", "χιόνι", "χιονόπτωση"}, "❄️"},
	{[]string{"sleet", "χιονόνερο"}, "🌨️"},
	{[]string{"light rain", "drizzle", "shower", "ψιχάλ", "νεροπ"}, "🌦️"},
	{[]string{"rain", "βροχ"}, "🌧️"},
	{[]string{"fog", "mist", "ομίχλη", "καταχνιά"}, "🌫️"},
	{[]string{"few clouds", "αραιές νεφώσεις"}, "🌤️"},
	{[]string{"partly", "μερικώς"}, "⛅"},
	{[]string{"mostly", "overcast", "πυκνές νεφώσεις", "συννεφιά"}, "🌥️"},
	{[]string{"cloud", "νεφ", "συννεφ"}, "☁️"},
	{[]string{"clear", "sunny", "sun", "αίθρι", "ηλιόλ", "ηλιοφάνεια", "λιακάδα"}, "☀️"},
	{[]string{"wind", "άνεμ", "θυελλ"}, "💨"},
}

var reTempDigits = regexp.MustCompile(`-?\d+`)

// weatherEmoji picks the title emoji for a condition description and
// temperature string ("23°C", "N/A", ...). A temperature that parses to
// an extreme value wins over every keyword match.
func weatherEmoji(description, temp string) string {
	if m := reTempDigits.FindString(temp); m != "" {
		if v, err := strconv.Atoi(m); err == nil {
			if v >= hotThreshold {
				return hotEmoji
			}
			if v <= coldThreshold {
				return coldEmoji
			}
		}
	}

	lower := strings.ToLower(description)
	for _, rule := range emojiRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.emoji
			}
		}
	}
	return defaultEmoji
}
