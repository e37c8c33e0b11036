package contextx

import "errors"

// ErrNoValue is returned when a typed value is absent from the context.
var ErrNoValue = errors.New("no value in context")
