package conv

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// AsID returns the string form of a decoded JSON-RPC id; false for a missing id.
func AsID(id interface{}) (string, bool) {
	switch actual := id.(type) {
	case nil:
		return "", false
	case string:
		return actual, true
	case float64:
		return strconv.FormatFloat(actual, 'f', -1, 64), true
	case json.Number:
		return actual.String(), true
	case int:
		return strconv.Itoa(actual), true
	case int64:
		return strconv.FormatInt(actual, 10), true
	case uint64:
		return strconv.FormatUint(actual, 10), true
	default:
		return fmt.Sprintf("%v", actual), true
	}
}
