package api

import "encoding/json"

// mustJSON marshals v, swallowing the (theoretically impossible for these
// call sites) marshal error by emitting an empty object instead.
func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}
