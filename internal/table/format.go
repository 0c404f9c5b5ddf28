package table

import (
	"fmt"
	"strconv"
	"time"
)

// Format returns the canonical string form of a cell. Missing cells format
// as the empty string. Value mapping lookups and CSV export both use this
// form, so a mapping key "1" matches an integer cell 1.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}

		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
