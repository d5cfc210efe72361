package transport

import (
	"encoding/json"
)

// OptionalInt64 distinguishes an omitted field from an explicit null, so an
// update can clear a nullable amount.
type OptionalInt64 struct {
	Value *int64
	Set   bool
}

func (o OptionalInt64) IsZero() bool {
	return !o.Set
}

func (o *OptionalInt64) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o OptionalInt64) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// Apply writes the value to dst when the field was present.
func (o OptionalInt64) Apply(dst **int64) {
	if o.Set {
		*dst = o.Value
	}
}
