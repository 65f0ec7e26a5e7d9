// Package jalali formats Gregorian dates in the Iranian (Jalali) calendar.
// Dates are stored and compared in Gregorian form everywhere; only the display
// boundary uses this package.
package jalali

import (
	"fmt"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// FormatDate renders a Gregorian date as "YYYY-MM-DD" in the Jalali calendar.
func FormatDate(t time.Time) string {
	return ptime.New(t).Format("yyyy-MM-dd")
}

// ParseDate converts a Jalali "YYYY-MM-DD" string to the Gregorian date.
func ParseDate(s string) (time.Time, error) {
	var year, month, day int
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &year, &month, &day); err != nil {
		return time.Time{}, fmt.Errorf("invalid jalali date %q: %w", s, err)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid jalali date %q", s)
	}
	pt := ptime.Date(year, ptime.Month(month), day, 0, 0, 0, 0, ptime.Iran())
	return pt.Time(), nil
}
