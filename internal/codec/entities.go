package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FromStruct converts a JSON-tagged value (user, meal, habit) into a record.
func FromStruct(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling %T: %w", v, err)
	}
	var r Record
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("unmarshaling %T: %w", v, err)
	}
	return r, nil
}

// ToStruct fills a JSON-tagged value from a record. Field matching is
// case-insensitive, as with encoding/json.
func ToStruct(r Record, v any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshaling into %T: %w", v, err)
	}
	return nil
}
