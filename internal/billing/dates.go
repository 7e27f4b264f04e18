// internal/billing/dates.go
package billing

import (
	"time"
)

// DateLayout is how dates are printed on receipts
const DateLayout = "2006-01-02"

// addMonthsClamped moves t by n months, keeping the day of month unless the
// target month is shorter, in which case its last day is used
func addMonthsClamped(t time.Time, n int) time.Time {
	return dayInMonth(t, t.Day(), n)
}

// dayInMonth returns the given day of the month n months after now, clamped
// to that month's length. A day of zero means today's day of month.
func dayInMonth(now time.Time, day, n int) time.Time {
	if day <= 0 {
		day = now.Day()
	}
	first := time.Date(now.Year(), now.Month()+time.Month(n), 1, 0, 0, 0, 0, now.Location())
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, now.Location())
}

// ReadingDate is the date printed as "Fecha". With a previous reading it is
// one month after it, or the same date once the reading is completed. Without
// one it is the billing day of the current month.
func ReadingDate(last *Reading, completed bool, billingDay int, now time.Time) (time.Time, error) {
	if last == nil || last.Date == "" {
		return dayInMonth(now, billingDay, 0), nil
	}

	t, err := time.ParseInLocation(DateLayout, last.Date, now.Location())
	if err != nil {
		return time.Time{}, err
	}
	if completed {
		return t, nil
	}
	return addMonthsClamped(t, 1), nil
}

// DueDate is the date printed as "Vence": two months after the previous
// reading, one month once completed, or the billing day of next month
func DueDate(last *Reading, completed bool, billingDay int, now time.Time) (time.Time, error) {
	if last == nil || last.Date == "" {
		return dayInMonth(now, billingDay, 1), nil
	}

	t, err := time.ParseInLocation(DateLayout, last.Date, now.Location())
	if err != nil {
		return time.Time{}, err
	}
	if completed {
		return addMonthsClamped(t, 1), nil
	}
	return addMonthsClamped(t, 2), nil
}
