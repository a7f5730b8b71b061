package orders

import (
	"fmt"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the timestamp shapes the commerce API has emitted.
func ParseTimestamp(text string) (time.Time, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty %s", KeyCreatedOn)
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable %s %q", KeyCreatedOn, trimmed)
}
