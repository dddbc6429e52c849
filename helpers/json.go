package helpers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/querylens-org/querylens/dataset"
)

// ============================================================================
// JSON HELPER — Parses a JSON array of row objects into a Dataset
// ============================================================================
// Query backends return rows as [{"col": val, ...}, ...]. Go maps don't keep
// key order, so the column order is recovered from the first object's tokens.
// ============================================================================

// ParseJSONRows parses a JSON array of objects. Column order follows the key
// order of the first object; keys that first appear on later rows are
// appended after it. Nested objects and arrays are flattened to their JSON
// text, so every cell stays within the scalar union.
func ParseJSONRows(data []byte) (*dataset.Dataset, error) {
	var rows []dataset.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse row array: %w", err)
	}
	if len(rows) == 0 {
		return dataset.New(nil, nil), nil
	}
	for _, row := range rows {
		for key, v := range row {
			row[key] = scalarize(v)
		}
	}

	columns, err := firstObjectKeys(data)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		seen[c] = true
	}
	for _, row := range rows {
		for key := range row {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}

	return dataset.New(columns, rows), nil
}

// scalarize collapses nested JSON values to their compact JSON text.
func scalarize(v dataset.Value) dataset.Value {
	switch v.(type) {
	case nil, string, bool, float64:
		return v
	default:
		blob, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(blob)
	}
}

// firstObjectKeys walks the token stream to the first object and collects
// its keys in document order.
func firstObjectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	// consume the opening '[' and '{'
	for _, want := range []json.Delim{'[', '{'} {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read row tokens: %w", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != want {
			return nil, fmt.Errorf("unexpected token %v, want %v", tok, want)
		}
	}

	var keys []string
	depth := 0
	expectKey := true
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read row tokens: %w", err)
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				if depth == 0 {
					return keys, nil
				}
				depth--
				if depth == 0 {
					expectKey = true
				}
			}
			continue
		}
		if depth == 0 && expectKey {
			if key, ok := tok.(string); ok {
				keys = append(keys, key)
			}
			expectKey = false
			continue
		}
		if depth == 0 {
			expectKey = true
		}
	}
}
