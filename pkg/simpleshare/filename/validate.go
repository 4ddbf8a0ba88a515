package filename

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MaxLength is the longest stored filename accepted
const MaxLength = 255

// ErrInvalidName is returned for names that are not a single flat path segment
var ErrInvalidName = errors.New("invalid filename")

// Validate checks that name is safe to use as a key in a flat storage
// namespace. It rejects separators, parent directory references, control
// characters and names starting with a dot, which are reserved for
// in-progress uploads.
func Validate(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case len(name) > MaxLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, MaxLength)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q contains a parent directory reference", ErrInvalidName, name)
	}

	for _, r := range name {
		if r == unicode.ReplacementChar || unicode.IsControl(r) {
			return fmt.Errorf("%w: %q contains a control or invalid character", ErrInvalidName, name)
		}
	}
	return nil
}
