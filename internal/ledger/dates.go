package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// Date(2024,0,15) as emitted by the spreadsheet query endpoint; month is zero-based.
	vendorDatePattern = regexp.MustCompile(`^Date\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*(?:,[^)]*)?\)`)
	isoDatePattern    = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:[T ].*)?$`)
	localeDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// CalendarDate is a date without time of day or zone.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

func newCalendarDate(year, month, day int) (CalendarDate, bool) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return CalendarDate{}, false
	}
	return CalendarDate{Year: year, Month: time.Month(month), Day: day}, true
}

// String returns the yyyy-mm-dd form used by date inputs.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Display returns the dd/mm/yyyy form shown to operators.
func (d CalendarDate) Display() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// Time returns midnight UTC of the date.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// ParseLedgerDate recognizes the vendor Date(y,m,d) token, ISO yyyy-mm-dd and
// d/m/yyyy. The boolean is false for anything else, including impossible
// calendar days.
func ParseLedgerDate(raw string) (CalendarDate, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return CalendarDate{}, false
	}

	if m := vendorDatePattern.FindStringSubmatch(s); m != nil {
		return newCalendarDate(atoi(m[1]), atoi(m[2])+1, atoi(m[3]))
	}
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return newCalendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := localeDatePattern.FindStringSubmatch(s); m != nil {
		return newCalendarDate(atoi(m[3]), atoi(m[2]), atoi(m[1]))
	}
	return CalendarDate{}, false
}

// DisplayDate renders raw as dd/mm/yyyy, or hands it back untouched when it
// is not a date (warranty cells often hold "12 tháng" and the like).
func DisplayDate(raw string) string {
	if d, ok := ParseLedgerDate(raw); ok {
		return d.Display()
	}
	return raw
}

// FormatForDisplay converts yyyy-mm-dd to dd/mm/yyyy.
func FormatForDisplay(iso string) string {
	m := isoDatePattern.FindStringSubmatch(strings.TrimSpace(iso))
	if m == nil {
		return iso
	}
	d, ok := newCalendarDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	if !ok {
		return iso
	}
	return d.Display()
}

// FormatForInput converts dd/mm/yyyy to yyyy-mm-dd.
func FormatForInput(display string) string {
	m := localeDatePattern.FindStringSubmatch(strings.TrimSpace(display))
	if m == nil {
		return display
	}
	d, ok := newCalendarDate(atoi(m[3]), atoi(m[2]), atoi(m[1]))
	if !ok {
		return display
	}
	return d.String()
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
