package entities

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode copies the stored field values of an entity into the struct pointed
// to by out, matching `cupi` struct tags against field names. No lazy loads
// are triggered.
func Decode(e *Entity, out any) error {
	values := map[string]any{}
	for name, v := range e.values {
		if v != nil {
			values[name] = v
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "cupi",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	err = decoder.Decode(values)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", e.policy.Tag(), err)
	}

	return nil
}
