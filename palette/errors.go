package palette

import "errors"

// ErrNotFound is returned when no palette exists for a project. Callers
// treat it as non-fatal and fall back to generated plans.
var ErrNotFound = errors.New("palette: not found")

// ErrInvalidTemplate is returned when a template fails validation.
var ErrInvalidTemplate = errors.New("palette: invalid template")
