package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// listEnvelope accepts either a bare JSON array or an object wrapping one.
type listEnvelope[T any] struct {
	Items []T
}

var listKeys = []string{"logs", "data", "items", "results"}

func (l *listEnvelope[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		l.Items = nil
		return nil
	}
	if b[0] == '[' {
		return json.Unmarshal(b, &l.Items)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	for _, key := range listKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		return json.Unmarshal(raw, &l.Items)
	}
	return fmt.Errorf("response has none of %v", listKeys)
}

// objectEnvelope accepts a bare object or one nested under key.
type objectEnvelope[T any] struct {
	key   string
	Value T
}

func (o *objectEnvelope[T]) UnmarshalJSON(b []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if raw, ok := obj[o.key]; ok && len(bytes.TrimSpace(raw)) > 0 && raw[0] == '{' {
		return json.Unmarshal(raw, &o.Value)
	}
	return json.Unmarshal(b, &o.Value)
}
