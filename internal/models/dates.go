package models

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// InvalidDate is shown when date_posted cannot be parsed
const InvalidDate = "Invalid Date"

// numeric short date layouts per supported locale, index-aligned with dateLocales
var (
	dateLocales = []language.Tag{
		language.AmericanEnglish, // fallback
		language.BritishEnglish,
		language.German,
		language.French,
		language.Spanish,
		language.Italian,
		language.Dutch,
		language.BrazilianPortuguese,
		language.Japanese,
		language.Chinese,
		language.Korean,
		language.Russian,
		language.Polish,
		language.Swedish,
	}
	dateLayouts = []string{
		"1/2/2006",
		"02/01/2006",
		"2.1.2006",
		"02/01/2006",
		"2/1/2006",
		"2/1/2006",
		"2-1-2006",
		"02/01/2006",
		"2006/1/2",
		"2006/1/2",
		"2006. 1. 2.",
		"02.01.2006",
		"2.01.2006",
		"2006-01-02",
	}
	dateMatcher = language.NewMatcher(dateLocales)
)

// timestamps without a zone are read in the formatter's location
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
}

// DateFormatter renders date_posted values as localized short dates
type DateFormatter struct {
	Locale   language.Tag
	Location *time.Location
	layout   string
}

// NewDateFormatter matches locale (BCP 47, e.g. "de-AT") against the supported
// date formats and loads the IANA time zone tz ("" or "Local" for the host zone).
func NewDateFormatter(locale, tz string) (*DateFormatter, error) {
	tag := language.AmericanEnglish
	if locale != "" {
		parsed, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("invalid locale '%s': %w", locale, err)
		}
		tag = parsed
	}
	loc := time.Local
	if tz != "" && tz != "Local" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid time zone '%s': %w", tz, err)
		}
		loc = l
	}
	_, idx, _ := dateMatcher.Match(tag)
	return &DateFormatter{Locale: dateLocales[idx], Location: loc, layout: dateLayouts[idx]}, nil
}

// DefaultDateFormatter returns an en-US formatter in the host time zone
func DefaultDateFormatter() *DateFormatter {
	return &DateFormatter{Locale: language.AmericanEnglish, Location: time.Local, layout: dateLayouts[0]}
}

// ParseDatePosted parses an ISO-8601 timestamp. Values carrying a zone keep it,
// date-time values without one are taken in loc and bare dates are UTC.
func ParseDatePosted(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date_posted '%s'", value)
	}
	return t, nil
}

// Format returns the localized date of value or InvalidDate
func (f *DateFormatter) Format(value string) string {
	if f == nil {
		f = DefaultDateFormatter()
	}
	t, err := ParseDatePosted(value, f.Location)
	if err != nil {
		return InvalidDate
	}
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	layout := f.layout
	if layout == "" {
		layout = dateLayouts[0]
	}
	return t.In(loc).Format(layout)
}
