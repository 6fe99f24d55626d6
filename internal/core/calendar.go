package core

import (
	"strconv"
	"time"
)

// MonthCursor is the (year, month) the calendar is showing.
type MonthCursor struct {
	Year  int
	Month time.Month
}

// CursorOf returns the cursor for the month containing t.
func CursorOf(t time.Time) MonthCursor {
	return MonthCursor{Year: t.Year(), Month: t.Month()}
}

// Next moves one month forward, rolling December into January of the next year.
func (c MonthCursor) Next() MonthCursor {
	if c.Month == time.December {
		return MonthCursor{Year: c.Year + 1, Month: time.January}
	}
	return MonthCursor{Year: c.Year, Month: c.Month + 1}
}

// Previous moves one month back, rolling January into December of the previous year.
func (c MonthCursor) Previous() MonthCursor {
	if c.Month == time.January {
		return MonthCursor{Year: c.Year - 1, Month: time.December}
	}
	return MonthCursor{Year: c.Year, Month: c.Month - 1}
}

// First is day 1 of the month.
func (c MonthCursor) First() Date {
	return NewDate(c.Year, c.Month, 1)
}

// DaysIn returns the number of days in the month.
func (c MonthCursor) DaysIn() int {
	return time.Date(c.Year, c.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LeadingBlanks is the weekday of day 1, Sunday = 0.
func (c MonthCursor) LeadingBlanks() int {
	return int(c.First().Weekday())
}

// Label renders "2024년 5월".
func (c MonthCursor) Label() string {
	return strconv.Itoa(c.Year) + "년 " + strconv.Itoa(int(c.Month)) + "월"
}

// Key renders "2024-05".
func (c MonthCursor) Key() string {
	return c.First().Format("2006-01")
}

// Valid reports whether Month is within January..December.
func (c MonthCursor) Valid() bool {
	return c.Month >= time.January && c.Month <= time.December
}
