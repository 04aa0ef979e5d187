package report

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// SafeDiv divides num by denom; ok is false when the quotient is undefined.
func SafeDiv(num, denom float64) (float64, bool) {
	if denom == 0 {
		return 0, false
	}
	q := num / denom
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, false
	}
	return q, true
}

// DivOrZero is SafeDiv for callers that need a pure number.
func DivOrZero(num, denom float64) float64 {
	q, _ := SafeDiv(num, denom)
	return q
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
