// Package modeljson reads loosely formatted JSON objects out of model replies
// and coerces their fields without trusting the declared types.
package modeljson

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Object parses the first JSON object found in raw. Models sometimes wrap
// the object in prose or code fences, so the outermost braces are tried too.
func Object(raw string) (map[string]interface{}, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("model returned empty output")
	}

	candidates := []string{trimmed}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			candidates = append(candidates, trimmed[start:end+1])
		}
	}

	for _, candidate := range candidates {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil && obj != nil {
			return obj, nil
		}
	}
	return nil, errors.New("model output is not a valid JSON object")
}

// Number returns v as a finite float. Numeric strings are accepted.
func Number(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(t), "$"), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// String returns v trimmed when it is a string.
func String(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// Bool returns v when it is a bool, otherwise fallback.
func Bool(v interface{}, fallback bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return fallback
}

// Strings keeps the non-empty string members of an array.
func Strings(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := String(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Objects keeps the object members of an array. ok is false when v is not
// an array at all.
func Objects(v interface{}) ([]map[string]interface{}, bool) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out, true
}

// Currency rounds to cents.
func Currency(f float64) float64 {
	return math.Round(f*100) / 100
}
