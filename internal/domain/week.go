package domain

import "time"

// ISODateLayout is the calendar-date format used for session dates and ids.
const ISODateLayout = "2006-01-02"

// ToISODate formats a time as a calendar date string ("YYYY-MM-DD").
func ToISODate(t time.Time) string {
	return t.Format(ISODateLayout)
}

// WeekStart returns the Monday-aligned start (midnight) of the week
// containing t. A Sunday belongs to the week that started six days earlier.
func WeekStart(t time.Time) time.Time {
	day := int(t.Weekday())
	var diff int
	if day == 0 {
		diff = -6 // Sunday closes the previous Monday's week
	} else {
		diff = 1 - day
	}
	y, m, d := t.AddDate(0, 0, diff).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateForDayOfWeek maps a slot's dayOfWeek (0=Sunday..6=Saturday) onto the
// concrete calendar date inside the Monday-aligned week starting at
// weekStart. Monday lands on the window's first day, Sunday on its last.
func DateForDayOfWeek(weekStart time.Time, dayOfWeek int) time.Time {
	var offset int
	if dayOfWeek == 0 {
		offset = 6 // Sunday is the 7th day of a Monday-aligned week
	} else {
		offset = dayOfWeek - 1
	}
	return weekStart.AddDate(0, 0, offset)
}
