package metrics

import "time"

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	year, month, day := t.Date()
	return civilDate{year: year, month: month, day: day}
}

// Arithmetic goes through UTC midnight so DST shifts cannot skip a day.
func (d civilDate) midnight() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d civilDate) addDays(n int) civilDate {
	return dateOf(d.midnight().AddDate(0, 0, n))
}

func (d civilDate) daysSince(earlier civilDate) int {
	return int(d.midnight().Sub(earlier.midnight()).Hours() / 24)
}
