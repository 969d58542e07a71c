// Package normalize maps loosely-typed scraper records onto Creator and
// ContentPost. Each target field has an ordered list of source paths
// (gjson syntax); the first path holding a usable value wins, so newer
// camelCase names are listed ahead of legacy snake_case ones.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Fields is an ordered list of candidate paths for one target field.
type Fields []string

// String returns the first non-empty string value.
func (f Fields) String(raw gjson.Result) (string, bool) {
	for _, path := range f {
		v := raw.Get(path)
		if v.Type == gjson.String {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s, true
			}
		}
		if v.Type == gjson.Number {
			return v.Raw, true
		}
	}
	return "", false
}

// StringOr returns the first non-empty string value or fallback.
func (f Fields) StringOr(raw gjson.Result, fallback string) string {
	if s, ok := f.String(raw); ok {
		return s
	}
	return fallback
}

// Int returns the first numeric value, accepting numeric strings such as "1,204".
func (f Fields) Int(raw gjson.Result) (int64, bool) {
	for _, path := range f {
		v := raw.Get(path)
		switch v.Type {
		case gjson.Number:
			if v.Num < 0 {
				continue
			}
			return int64(v.Num + 0.5), true
		case gjson.String:
			cleaned := strings.ReplaceAll(strings.TrimSpace(v.String()), ",", "")
			if n, err := strconv.ParseFloat(cleaned, 64); err == nil && n >= 0 {
				return int64(n + 0.5), true
			}
		}
	}
	return 0, false
}

// IntOr returns the first numeric value or zero.
func (f Fields) IntOr(raw gjson.Result) int64 {
	n, _ := f.Int(raw)
	return n
}

// Float returns the first numeric value as a float.
func (f Fields) Float(raw gjson.Result) (float64, bool) {
	for _, path := range f {
		v := raw.Get(path)
		if v.Type == gjson.Number {
			return v.Num, true
		}
	}
	return 0, false
}

// Bool reports whether any candidate path holds true.
func (f Fields) Bool(raw gjson.Result) bool {
	for _, path := range f {
		if v := raw.Get(path); v.Type == gjson.True {
			return true
		}
	}
	return false
}

// Strings returns the first non-empty array of strings, order preserved.
func (f Fields) Strings(raw gjson.Result) ([]string, bool) {
	for _, path := range f {
		v := raw.Get(path)
		if !v.IsArray() {
			continue
		}
		out := []string{}
		for _, item := range v.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out, true
		}
	}
	return nil, false
}

// Time returns the first value parseable as a timestamp (RFC 3339 or unix seconds).
func (f Fields) Time(raw gjson.Result) (time.Time, bool) {
	for _, path := range f {
		v := raw.Get(path)
		switch v.Type {
		case gjson.Number:
			if v.Int() > 0 {
				return time.Unix(v.Int(), 0).UTC(), true
			}
		case gjson.String:
			for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
				if t, err := time.Parse(layout, v.String()); err == nil {
					return t.UTC(), true
				}
			}
		}
	}
	return time.Time{}, false
}
