package utils

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Optional tells a JSON field that was left out apart from an explicit
// null. Set is true whenever the key was present.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// ApplyTo overwrites *dst when the field was present
func (o Optional[T]) ApplyTo(dst **T) {
	if o.Set {
		*dst = o.Value
	}
}

type optionalValue interface {
	present() (any, bool)
}

func (o Optional[T]) present() (any, bool) {
	if o.Value == nil {
		return nil, false
	}
	return *o.Value, true
}

// OptionalRule validates the wrapped value of an Optional when one was sent
func OptionalRule(rules ...validation.Rule) validation.RuleFunc {
	return func(v any) error {
		o, ok := v.(optionalValue)
		if !ok {
			return nil
		}
		val, ok := o.present()
		if !ok {
			return nil
		}
		return validation.Validate(val, rules...)
	}
}
