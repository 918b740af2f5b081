package outreach

import "github.com/tidwall/gjson"

// FirstNumber probes the keys in order and returns the first one present
// with a numeric (or numeric-string) value. Providers rename their counter
// fields across API versions, so adapters keep an ordered synonym list per
// metric and never rely on a single field name.
func FirstNumber(data []byte, keys ...string) (int64, bool) {
	for _, key := range keys {
		v := gjson.GetBytes(data, key)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		switch v.Type {
		case gjson.Number:
			return v.Int(), true
		case gjson.String:
			if v.Str == "" {
				continue
			}
			// gjson parses numeric strings in Int(); reject non-numeric ones.
			if n := v.Int(); n != 0 || v.Str == "0" {
				return n, true
			}
		}
	}
	return 0, false
}

// FirstString probes the keys in order and returns the first non-empty
// string value.
func FirstString(data []byte, keys ...string) string {
	for _, key := range keys {
		v := gjson.GetBytes(data, key)
		if v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}
