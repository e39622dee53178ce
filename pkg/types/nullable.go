package types

import (
	"bytes"
	"encoding/json"
)

// Nullable tracks whether a JSON field was present, so PATCH bodies can tell
// "absent" from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	n.Set = true
	if bytes.Equal(trimmed, []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// Null reports an explicit null.
func (n Nullable[T]) Null() bool {
	return n.Set && n.Value == nil
}
