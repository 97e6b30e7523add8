package ddbmock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	ddbmap "github.com/mrtj/dynamodb-mapping"
)

// SeedFromJSON populates a mapping from a JSON document of the form
//
//	{
//	    "first-key":  {"description": "foo", "price": 123},
//	    "second-key": {"description": "bar", "price": 456}
//	}
//
// where each top-level key becomes a simple primary key and its object the
// item attributes. JSON numbers are preserved verbatim as ddbmap.Number so
// no precision is lost. Returns the number of items written.
func SeedFromJSON(ctx context.Context, mapping *ddbmap.Mapping, r io.Reader) (int, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var document map[string]map[string]any
	if err := decoder.Decode(&document); err != nil {
		return 0, fmt.Errorf("failed to parse JSON document: %w", err)
	}

	count := 0
	for key, attrs := range document {
		value := make(map[string]ddbmap.Value, len(attrs))
		for name, raw := range attrs {
			converted, err := convertJSONValue(raw)
			if err != nil {
				return count, fmt.Errorf("attribute %s of item %s: %w", name, key, err)
			}
			value[name] = converted
		}
		if err := mapping.Set(ctx, ddbmap.SimpleKey(key), value); err != nil {
			return count, fmt.Errorf("failed to seed item %s: %w", key, err)
		}
		count++
	}
	return count, nil
}

// convertJSONValue rewrites a decoded JSON value into the mapping's value
// grammar, turning json.Number into ddbmap.Number.
func convertJSONValue(v any) (ddbmap.Value, error) {
	switch val := v.(type) {
	case nil, string, bool:
		return val, nil
	case json.Number:
		return ddbmap.Number(val), nil
	case []any:
		elems := make([]ddbmap.Value, len(val))
		for i, elem := range val {
			converted, err := convertJSONValue(elem)
			if err != nil {
				return nil, err
			}
			elems[i] = converted
		}
		return elems, nil
	case map[string]any:
		entries := make(map[string]ddbmap.Value, len(val))
		for name, elem := range val {
			converted, err := convertJSONValue(elem)
			if err != nil {
				return nil, err
			}
			entries[name] = converted
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value type %T", v)
	}
}
