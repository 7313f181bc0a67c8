package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glowdesk/walletd/pkg/money"
)

// lookup returns the first present value among the given keys. Raw rows mix
// camelCase and snake_case naming, so every field read goes through both
// spellings here at the normalization boundary rather than scattering
// fallbacks through the view layer.
func lookup(raw map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// lookupString returns the first present non-empty string among the keys.
func lookupString(raw map[string]interface{}, keys ...string) string {
	v, ok := lookup(raw, keys...)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// lookupAmount returns the first present value among the keys parsed as a
// decimal, tolerating numeric strings with display formatting.
func lookupAmount(raw map[string]interface{}, keys ...string) (decimal.Decimal, bool) {
	v, ok := lookup(raw, keys...)
	if !ok {
		return decimal.Zero, false
	}
	return money.ParseAny(v)
}

// lookupTime returns the first present value among the keys parsed as a
// timestamp. Accepts RFC3339 strings and unix-epoch numbers.
func lookupTime(raw map[string]interface{}, keys ...string) (time.Time, bool) {
	v, ok := lookup(raw, keys...)
	if !ok {
		return time.Time{}, false
	}

	switch val := v.(type) {
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
	case json.Number:
		if sec, err := val.Int64(); err == nil {
			return time.Unix(sec, 0).UTC(), true
		}
	case float64:
		return time.Unix(int64(val), 0).UTC(), true
	}
	return time.Time{}, false
}

// parseMetadata normalizes the metadata field into a map. The server
// sometimes sends it as a JSON-encoded string; unparsable metadata degrades
// to an empty map rather than failing the row.
func parseMetadata(raw map[string]interface{}) (map[string]interface{}, error) {
	v, ok := lookup(raw, "metadata", "meta_data")
	if !ok {
		return map[string]interface{}{}, nil
	}

	switch val := v.(type) {
	case map[string]interface{}:
		return val, nil
	case string:
		if val == "" {
			return map[string]interface{}{}, nil
		}
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(val), &parsed); err != nil {
			return map[string]interface{}{}, fmt.Errorf("string metadata is not valid JSON: %w", err)
		}
		return parsed, nil
	default:
		return map[string]interface{}{}, fmt.Errorf("metadata is %T, want object or string", v)
	}
}
