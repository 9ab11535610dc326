package core

import (
	"strings"
	"time"
)

// Month is a fee period month, stored by its English name so that
// receipts and the register stay human-readable.
type Month string

const (
	January   Month = "January"
	February  Month = "February"
	March     Month = "March"
	April     Month = "April"
	May       Month = "May"
	June      Month = "June"
	July      Month = "July"
	August    Month = "August"
	September Month = "September"
	October   Month = "October"
	November  Month = "November"
	December  Month = "December"
)

var months = [12]Month{
	January, February, March, April, May, June,
	July, August, September, October, November, December,
}

// Months returns the twelve months in calendar order.
func Months() []Month {
	return months[:]
}

func (m Month) Valid() bool {
	for _, v := range months {
		if m == v {
			return true
		}
	}
	return false
}

// Index returns the 1-based calendar index, or 0 for an unknown month.
func (m Month) Index() int {
	for i, v := range months {
		if m == v {
			return i + 1
		}
	}
	return 0
}

// ParseMonth accepts a month name case-insensitively.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	for _, v := range months {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", ErrInvalidMonth
}

// MonthOf maps a time.Month to the fee period month.
func MonthOf(m time.Month) Month {
	return months[int(m)-1]
}

// CurrentPeriod returns the fee period for the given instant.
func CurrentPeriod(now time.Time) (Month, int) {
	return MonthOf(now.Month()), now.Year()
}
