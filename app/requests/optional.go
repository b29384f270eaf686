package requests

import "encoding/json"

// Optional is a JSON field that tells "absent" apart from "null".
// Set is true whenever the key was present in the body.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// ValidateValue lets pkg/validate skip absent fields and see nulls.
func (o Optional[T]) ValidateValue() (any, bool) {
	if !o.Set {
		return nil, false
	}
	if o.Value == nil {
		return nil, true
	}
	return *o.Value, true
}
