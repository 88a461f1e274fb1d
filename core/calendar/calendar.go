// Package calendar computes the Orthodox Paschalion and the feast days
// used to mark holidays on lectionary entries.
//
// Dates are civil (Gregorian) dates. Pascha is computed on the Julian
// calendar and shifted by the Julian-Gregorian offset of its century.
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/FocuswithJustin/lectio/core/errors"
)

// Supported year range of the century offset table.
const (
	MinYear = 1500
	MaxYear = 2299
)

// julianOffset is the Julian-Gregorian difference in days, by century
// (year/100 + 1).
var julianOffset = map[int]int{
	16: 10, 17: 10,
	18: 11,
	19: 12,
	20: 13, 21: 13,
	22: 14,
	23: 15,
}

// Feast is a named holiday on a given day.
type Feast struct {
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Moveable bool      `json:"moveable"`
}

// fixedFeasts are the Great Feasts and other fixed holidays, by civil
// month and day.
var fixedFeasts = []struct {
	month time.Month
	day   int
	name  string
}{
	{time.January, 7, "Nativity of Christ"},
	{time.January, 14, "Circumcision of the Lord"},
	{time.January, 19, "Theophany"},
	{time.February, 15, "Meeting of the Lord"},
	{time.April, 7, "Annunciation"},
	{time.July, 7, "Nativity of John the Baptist"},
	{time.July, 12, "Apostles Peter and Paul"},
	{time.August, 19, "Transfiguration"},
	{time.August, 28, "Dormition"},
	{time.September, 11, "Beheading of John the Baptist"},
	{time.September, 21, "Nativity of the Theotokos"},
	{time.September, 27, "Exaltation of the Cross"},
	{time.October, 14, "Protection of the Theotokos"},
	{time.December, 4, "Entry of the Theotokos"},
}

func checkYear(year int) error {
	if year < MinYear || year > MaxYear {
		return &errors.ValidationError{
			Field:   "year",
			Value:   fmt.Sprint(year),
			Message: fmt.Sprintf("must be between %d and %d", MinYear, MaxYear),
		}
	}
	return nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Pascha returns the civil date of Orthodox Easter in year.
func Pascha(year int) (time.Time, error) {
	if err := checkYear(year); err != nil {
		return time.Time{}, err
	}
	a := year % 19
	b := year % 4
	c := year % 7
	d := (19*a + 15) % 30
	e := (2*b + 4*c + 6*d + 6) % 7
	// March 22 + d + e on the Julian calendar; time.Date normalises
	// days past the end of March into April.
	julian := date(year, time.March, 22+d+e)
	return julian.AddDate(0, 0, julianOffset[year/100+1]), nil
}

// Feasts returns the holidays of year in date order: the fixed feasts plus
// Pascha, Palm Sunday, Ascension and Pentecost.
func Feasts(year int) ([]Feast, error) {
	pascha, err := Pascha(year)
	if err != nil {
		return nil, err
	}
	feasts := []Feast{
		{Name: "Pascha", Date: pascha, Moveable: true},
		{Name: "Palm Sunday", Date: pascha.AddDate(0, 0, -7), Moveable: true},
		{Name: "Ascension", Date: pascha.AddDate(0, 0, 39), Moveable: true},
		{Name: "Pentecost", Date: pascha.AddDate(0, 0, 49), Moveable: true},
	}
	for _, f := range fixedFeasts {
		feasts = append(feasts, Feast{Name: f.name, Date: date(year, f.month, f.day)})
	}
	sort.SliceStable(feasts, func(i, j int) bool { return feasts[i].Date.Before(feasts[j].Date) })
	return feasts, nil
}

// Year answers holiday queries for one civil year.
type Year struct {
	year   int
	feasts map[time.Time]string
}

// NewYear precomputes the feasts of year.
func NewYear(year int) (*Year, error) {
	feasts, err := Feasts(year)
	if err != nil {
		return nil, err
	}
	y := &Year{year: year, feasts: make(map[time.Time]string, len(feasts))}
	for _, f := range feasts {
		if _, ok := y.feasts[f.Date]; !ok {
			y.feasts[f.Date] = f.Name
		}
	}
	return y, nil
}

// Number returns the calendar year.
func (y *Year) Number() int { return y.year }

// Feast returns the feast falling on day, if any. Only the date part of
// day is considered.
func (y *Year) Feast(day time.Time) (string, bool) {
	name, ok := y.feasts[date(day.Year(), day.Month(), day.Day())]
	return name, ok
}

// IsHoliday reports whether day is a Saturday, a Sunday or a feast.
func (y *Year) IsHoliday(day time.Time) bool {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	_, ok := y.Feast(day)
	return ok
}

// Info renders the year's day flags, one line per month and one
// comma-separated field per day. Each field is the holiday flag ('1' or
// '0') followed by a reserved '0'.
func (y *Year) Info() string {
	var b strings.Builder
	for d := date(y.year, time.January, 1); d.Year() == y.year; d = d.AddDate(0, 0, 1) {
		if d.Day() == 1 && d.Month() != time.January {
			b.WriteByte('\n')
		}
		if d.Day() != 1 {
			b.WriteByte(',')
		}
		if y.IsHoliday(d) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
		b.WriteByte('0')
	}
	return b.String()
}
