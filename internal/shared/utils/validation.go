package utils

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrBlank is returned for strings made only of whitespace
var ErrBlank = validation.NewError("validation_blank", "cannot be blank")

// NotBlank rejects strings that are empty after trimming. Nil pointers
// pass, so patches pair it with NilOrNotEmpty.
func NotBlank(v any) error {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case *string:
		if t == nil {
			return nil
		}
		s = *t
	default:
		return nil
	}
	if strings.TrimSpace(s) == "" {
		return ErrBlank
	}
	return nil
}
