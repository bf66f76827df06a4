package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"
)

func numericValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

func stringValue(v any, fallback string) string {
	switch val := v.(type) {
	case nil:
		return fallback
	case string:
		if val == "" {
			return fallback
		}
		return val
	default:
		return fmt.Sprint(val)
	}
}

func displayValue(v any) string {
	if v == nil {
		return ""
	}
	if f, ok := numericValue(v); ok {
		if f == float64(int64(f)) {
			return fmt.Sprintf("%d", int64(f))
		}
		return fmt.Sprintf("%.2f", f)
	}
	return fmt.Sprint(v)
}

func normalizeText(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
