package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalField_JSONNumberKeepsPrecision(t *testing.T) {
	data := map[string]interface{}{"price": json.Number("12.50")}

	d, ok := DecimalField(data, "price")
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("12.50")))
}

func TestDecimalField_AcceptedTypes(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{"json number", json.Number("0.1"), "0.1"},
		{"decimal", decimal.RequireFromString("3.33"), "3.33"},
		{"float64", float64(10), "10"},
		{"int", 7, "7"},
		{"int64", int64(42), "42"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, ok := DecimalField(map[string]interface{}{"v": tc.value}, "v")
			require.True(t, ok)
			assert.Equal(t, tc.expected, d.String())
		})
	}
}

func TestDecimalField_Rejects(t *testing.T) {
	for name, value := range map[string]interface{}{
		"string":     "12.50",
		"bool":       true,
		"bad number": json.Number("abc"),
	} {
		t.Run(name, func(t *testing.T) {
			_, ok := DecimalField(map[string]interface{}{"v": value}, "v")
			assert.False(t, ok)
		})
	}

	_, ok := DecimalField(map[string]interface{}{}, "missing")
	assert.False(t, ok)
}

func TestTimeField_RFC3339(t *testing.T) {
	ts, ok := TimeField(map[string]interface{}{"timestamp": "2026-05-01T12:00:00Z"}, "timestamp")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), ts.UTC())
}

func TestTimeField_EpochSeconds(t *testing.T) {
	ts, ok := TimeField(map[string]interface{}{"timestamp": json.Number("1746100800")}, "timestamp")
	require.True(t, ok)
	assert.Equal(t, int64(1746100800), ts.Unix())
}

func TestTimeField_RejectsGarbage(t *testing.T) {
	_, ok := TimeField(map[string]interface{}{"timestamp": "yesterday"}, "timestamp")
	assert.False(t, ok)
}

func TestStringSliceField(t *testing.T) {
	data := map[string]interface{}{
		"decoded":  []interface{}{"a", "b"},
		"fixture":  []string{"c"},
		"mixed":    []interface{}{"a", 1},
		"nonArray": "a",
	}

	got, ok := StringSliceField(data, "decoded")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)

	got, ok = StringSliceField(data, "fixture")
	require.True(t, ok)
	assert.Equal(t, []string{"c"}, got)

	_, ok = StringSliceField(data, "mixed")
	assert.False(t, ok)
	_, ok = StringSliceField(data, "nonArray")
	assert.False(t, ok)
}

func TestNumberValue_RoundTrips(t *testing.T) {
	n := NumberValue(decimal.RequireFromString("10.55"))

	raw, err := json.Marshal(map[string]interface{}{"price": n})
	require.NoError(t, err)
	assert.Equal(t, `{"price":10.55}`, string(raw))
}
