package ledger

import (
	"encoding/json"
	"fmt"
)

// Merge applies fields onto the JSON object doc. A nil value removes the key.
// An empty doc is treated as {}.
func Merge(doc []byte, fields map[string]any) ([]byte, error) {
	obj := map[string]any{}
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &obj); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
	}
	for k, v := range fields {
		if v == nil {
			delete(obj, k)
			continue
		}
		obj[k] = v
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return out, nil
}
