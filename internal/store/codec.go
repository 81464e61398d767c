package store

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Field decoding helpers shared by the typed collection adapters and the
// ledger normalizer. Stored documents come back as map[string]interface{};
// numeric values may be json.Number (from the Postgres JSONB decoder) or
// plain Go numbers (from in-memory test fixtures).

// StringField extracts a string field from document data.
func StringField(data map[string]interface{}, key string) (string, bool) {
	v, ok := data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// DecimalField extracts a numeric field as an exact decimal. Binary floats
// are converted through their shortest decimal representation.
func DecimalField(data map[string]interface{}, key string) (decimal.Decimal, bool) {
	v, ok := data[key]
	if !ok {
		return decimal.Zero, false
	}
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case decimal.Decimal:
		return n, true
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	default:
		return decimal.Zero, false
	}
}

// StringSliceField extracts a string array field.
func StringSliceField(data map[string]interface{}, key string) ([]string, bool) {
	v, ok := data[key]
	if !ok {
		return nil, false
	}
	switch arr := v.(type) {
	case []string:
		return arr, true
	case []interface{}:
		out := make([]string, 0, len(arr))
		for _, e := range arr {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// TimeField extracts a timestamp field. Accepts RFC3339 strings (the format
// this service writes), epoch seconds, and time.Time from fixtures.
func TimeField(data map[string]interface{}, key string) (time.Time, bool) {
	v, ok := data[key]
	if !ok {
		return time.Time{}, false
	}
	switch ts := v.(type) {
	case string:
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case json.Number:
		secs, err := ts.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(secs, 0).UTC(), true
	case float64:
		return time.Unix(int64(ts), 0).UTC(), true
	case int64:
		return time.Unix(ts, 0).UTC(), true
	case time.Time:
		return ts, true
	default:
		return time.Time{}, false
	}
}

// NumberValue encodes a decimal for storage so it round-trips as a JSON
// number rather than a quoted string.
func NumberValue(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
