// Package slot defines the fixed catalog of bookable session windows and
// the conversions between a catalog label and concrete timestamps on a
// given date.  Slots are coarse two-hour blocks chosen from the catalog,
// never arbitrary ranges, which keeps trainer conflict detection a plain
// equality check on (trainer, date, label) in the ledger.
package slot

import (
    "errors"
    "fmt"
    "strings"
    "time"
)

// ErrInvalidSlot is returned when a label is not one of the catalog's
// canonical strings or does not parse as "<start> - <end>" clock times.
var ErrInvalidSlot = errors.New("invalid time slot")

// clockLayout is the 12-hour clock format used on each side of a label.
const clockLayout = "3:04 PM"

// catalog is the fixed set of bookable windows: eight two-hour slots
// spanning 6 AM to 10 PM.  Configuration-level data, not user-editable.
var catalog = []string{
    "6:00 AM - 8:00 AM",
    "8:00 AM - 10:00 AM",
    "10:00 AM - 12:00 PM",
    "12:00 PM - 2:00 PM",
    "2:00 PM - 4:00 PM",
    "4:00 PM - 6:00 PM",
    "6:00 PM - 8:00 PM",
    "8:00 PM - 10:00 PM",
}

// catalogSet allows O(1) membership checks on labels.
var catalogSet = func() map[string]struct{} {
    m := make(map[string]struct{}, len(catalog))
    for _, l := range catalog {
        m[l] = struct{}{}
    }
    return m
}()

// Labels returns the ordered slot catalog.  The returned slice is a copy;
// callers may not mutate the catalog.
func Labels() []string {
    out := make([]string, len(catalog))
    copy(out, catalog)
    return out
}

// IsValid reports whether label is one of the catalog's canonical strings.
func IsValid(label string) bool {
    _, ok := catalogSet[label]
    return ok
}

// Range converts a catalog label into the concrete [start, end] window
// anchored to the calendar date of `date` in UTC.  Labels outside the
// catalog, or that fail to parse, yield ErrInvalidSlot.
func Range(label string, date time.Time) (time.Time, time.Time, error) {
    if !IsValid(label) {
        return time.Time{}, time.Time{}, ErrInvalidSlot
    }
    parts := strings.SplitN(label, " - ", 2)
    if len(parts) != 2 {
        return time.Time{}, time.Time{}, ErrInvalidSlot
    }
    startClock, err := time.Parse(clockLayout, strings.TrimSpace(parts[0]))
    if err != nil {
        return time.Time{}, time.Time{}, ErrInvalidSlot
    }
    endClock, err := time.Parse(clockLayout, strings.TrimSpace(parts[1]))
    if err != nil {
        return time.Time{}, time.Time{}, ErrInvalidSlot
    }
    y, m, d := date.UTC().Date()
    start := time.Date(y, m, d, startClock.Hour(), startClock.Minute(), 0, 0, time.UTC)
    end := time.Date(y, m, d, endClock.Hour(), endClock.Minute(), 0, 0, time.UTC)
    return start, end, nil
}

// Format renders the canonical label string for a start/end pair.  It is
// the inverse of Range and exists for persisting synthesized slots and
// for tests; booking logic always works from catalog labels.
func Format(start, end time.Time) string {
    return fmt.Sprintf("%s - %s", start.UTC().Format(clockLayout), end.UTC().Format(clockLayout))
}

// DateOf truncates t to midnight UTC, the normal form used for the
// bookings.session_date column.
func DateOf(t time.Time) time.Time {
    y, m, d := t.UTC().Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
