package envelope

import "fmt"

// Envelope is the response shape every Eye returns, unmarshalled verbatim
// onto the wire .
type Envelope struct {
	Tag    EyeTag                 `json:"tag"`
	OK     bool                   `json:"ok"`
	Code   StatusCode             `json:"code"`
	MD     string                 `json:"md"`
	Data   map[string]any         `json:"data"`
	Next   NextAction             `json:"next"`
}

// Build constructs an Envelope, panicking if code is outside the closed
// status-code set — a programmer error, never a caller-input error, so it
// is asserted rather than propagated (mirrors the harness's ValueError on
// an unrecognized code).
func Build(tag EyeTag, ok bool, code StatusCode, md string, data map[string]any, next NextAction) Envelope {
	if !code.IsValid() {
		panic(fmt.Sprintf("envelope: unknown status code %q", code))
	}
	if data == nil {
		data = map[string]any{}
	}
	return Envelope{Tag: tag, OK: ok, Code: code, MD: md, Data: data, Next: next}
}

// WithData returns a copy of e with key set in its Data map.
func (e Envelope) WithData(key DataKey, value any) Envelope {
	data := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	data[string(key)] = value
	return Envelope{Tag: e.Tag, OK: e.OK, Code: e.Code, MD: e.MD, Data: data, Next: e.Next}
}
