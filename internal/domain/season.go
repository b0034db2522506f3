package domain

import "time"

// Season is a seasonal UI theme.
type Season string

// Seasons. Halloween and Christmas take precedence over the
// meteorological season they overlap.
const (
	SeasonHalloween Season = "halloween"
	SeasonChristmas Season = "christmas"
	SeasonSpring    Season = "spring"
	SeasonSummer    Season = "summer"
	SeasonAutumn    Season = "autumn"
	SeasonWinter    Season = "winter"
)

// SeasonAt returns the theme for the calendar date of t in t's location.
func SeasonAt(t time.Time) Season {
	month, day := t.Month(), t.Day()

	switch {
	case (month == time.October && day >= 15) || (month == time.November && day <= 5):
		return SeasonHalloween
	case month == time.December || (month == time.January && day <= 6):
		return SeasonChristmas
	case month >= time.March && month <= time.May:
		return SeasonSpring
	case month >= time.June && month <= time.August:
		return SeasonSummer
	case month >= time.September && month <= time.November:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}
