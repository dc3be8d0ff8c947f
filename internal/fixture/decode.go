package fixture

import (
	"encoding/json"
	"fmt"

	"repocache/internal/domain"
)

// DecodeRecord converts a parsed snapshot entry back into a *domain.Record.
// It fits codec.Decoder, so a snapshot written by one run can seed the cache
// of the next.
func DecodeRecord(schema string, v any) (any, error) {
	if rec, ok := v.(*domain.Record); ok {
		return rec, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("re-encode entry: %w", err)
	}
	rec := new(domain.Record)
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	if rec.ID == "" {
		return nil, fmt.Errorf("%s entry has no id", schema)
	}
	if rec.Schema != schema {
		return nil, fmt.Errorf("%s entry holds a %s record", schema, rec.Schema)
	}
	return rec, nil
}
