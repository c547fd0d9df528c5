package descriptor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Text coerces a decoded scalar to its textual representation.
//
//   - strings are returned verbatim
//   - booleans become "true" / "false"
//   - numbers use the shortest decimal form ("3", "1.5")
//   - nil becomes ""
//   - times become a date when they fall on midnight UTC, RFC 3339 otherwise
//   - mappings and sequences become compact JSON
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		if val.Equal(val.Truncate(24*time.Hour)) && val.Location() == time.UTC {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.RFC3339Nano)
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}
