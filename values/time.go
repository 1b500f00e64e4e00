package values

import (
	"fmt"
	"time"
)

// Layouts accepted for UPnP date and time values, from the most to the
// least specific.
var timeLayouts = []string{
	time.RFC3339Nano,      // 2006-01-02T15:04:05.999999999Z07:00
	time.RFC3339,          // 2006-01-02T15:04:05Z07:00
	"2006-01-02T15:04:05", // dateTime
	"2006-01-02Z07:00",    // date.tz
	"2006-01-02",          // date
	"15:04:05Z07:00",      // time.tz
	"15:04:05",            // time
	"2006-01-02 15:04:05", // space separated
}

// ParseTime parses the textual forms of the UPnP date and time types.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time string: %q", s)
}
