package slot

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLabels_CatalogShape(t *testing.T) {
    labels := Labels()
    require.Len(t, labels, 8)
    assert.Equal(t, "6:00 AM - 8:00 AM", labels[0])
    assert.Equal(t, "8:00 PM - 10:00 PM", labels[7])

    // Every catalog entry must round-trip through Range and Format.
    date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
    for _, l := range labels {
        start, end, err := Range(l, date)
        require.NoError(t, err, l)
        assert.Equal(t, 2*time.Hour, end.Sub(start), l)
        assert.Equal(t, l, Format(start, end), l)
    }
}

func TestLabels_ReturnsCopy(t *testing.T) {
    labels := Labels()
    labels[0] = "tampered"
    assert.Equal(t, "6:00 AM - 8:00 AM", Labels()[0])
}

func TestRange_AnchorsToDate(t *testing.T) {
    date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
    start, end, err := Range("10:00 AM - 12:00 PM", date)
    require.NoError(t, err)
    assert.Equal(t, time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC), start)
    assert.Equal(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC), end)
}

func TestRange_IgnoresTimeOfDayOnDate(t *testing.T) {
    // The anchor date may carry a time component; only its calendar day counts.
    date := time.Date(2025, 6, 10, 17, 42, 3, 0, time.UTC)
    start, _, err := Range("6:00 AM - 8:00 AM", date)
    require.NoError(t, err)
    assert.Equal(t, time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC), start)
}

func TestRange_RejectsUnknownLabels(t *testing.T) {
    date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
    for _, label := range []string{
        "",
        "7:00 AM - 9:00 AM",        // well-formed but not in the catalog
        "6:00 AM-8:00 AM",          // wrong separator spacing
        "06:00 AM - 08:00 AM",      // zero-padded hours are not canonical
        "6:00 am - 8:00 am",        // lower-case meridiem
        "garbage",
    } {
        _, _, err := Range(label, date)
        assert.ErrorIs(t, err, ErrInvalidSlot, "label %q", label)
    }
}

func TestFormat_NoonAndEvening(t *testing.T) {
    start := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
    end := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
    assert.Equal(t, "12:00 PM - 2:00 PM", Format(start, end))
}

func TestDateOf(t *testing.T) {
    in := time.Date(2025, 6, 10, 23, 59, 59, 0, time.UTC)
    assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), DateOf(in))
}
