package records

import "time"

const (
	// displayOffset shifts UTC order times to the display timezone. It is a
	// fixed offset; daylight saving is not applied.
	displayOffset = -4 * time.Hour
	displayLayout = "1/2 3:04 pm"
)

// DisplayTime shifts an order timestamp into the display timezone.
func DisplayTime(created time.Time) time.Time {
	if created.IsZero() {
		return time.Time{}
	}
	return created.UTC().Add(displayOffset)
}

// FormatDisplay renders a shifted timestamp as "M/D H:MM am".
func FormatDisplay(at time.Time) string {
	if at.IsZero() {
		return ""
	}
	return at.Format(displayLayout)
}
