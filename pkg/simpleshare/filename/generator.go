// Package filename generates and validates stored filenames.
//
// Stored filenames are a short random identifier followed by the extension of
// the client supplied name, if it has one: "photo.png" is stored as
// "aB3x_9Qz.png" and "README" as "aB3x_9Qz".
package filename

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultIDLength is the number of characters in a generated identifier
const DefaultIDLength = 8

// Generator defines the interface for stored filename generation strategies
type Generator interface {
	// Generate creates a stored filename for a client supplied original name
	Generate(original string) (string, error)
}

// NanoIDGenerator produces URL-safe random identifiers
type NanoIDGenerator struct {
	// Length of the identifier (default: 8)
	Length int
	// Alphabet overrides the default nanoid alphabet (A-Za-z0-9_-)
	Alphabet string
}

// NewNanoIDGenerator returns a generator producing DefaultIDLength identifiers
func NewNanoIDGenerator() *NanoIDGenerator {
	return &NanoIDGenerator{
		Length: DefaultIDLength,
	}
}

// Generate returns a random identifier joined with the extension of original
func (g *NanoIDGenerator) Generate(original string) (string, error) {
	length := g.Length
	if length <= 0 {
		length = DefaultIDLength
	}

	var id string
	var err error
	if g.Alphabet != "" {
		id, err = gonanoid.Generate(g.Alphabet, length)
	} else {
		id, err = gonanoid.New(length)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}

	return Join(id, Extension(original)), nil
}

// CustomFuncGenerator allows users to provide their own generation function
type CustomFuncGenerator struct {
	GenerateFunc func(original string) (string, error)
}

// NewCustomFuncGenerator wraps fn as a Generator
func NewCustomFuncGenerator(fn func(original string) (string, error)) *CustomFuncGenerator {
	return &CustomFuncGenerator{
		GenerateFunc: fn,
	}
}

// Generate calls the wrapped function
func (g *CustomFuncGenerator) Generate(original string) (string, error) {
	return g.GenerateFunc(original)
}

// Extension returns the trailing dot segment of the last path component of
// original, without the dot. Names without a dot, names whose only dot is the
// leading one (".bashrc") and names ending in a dot yield "".
func Extension(original string) string {
	base := original
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}

	i := strings.LastIndex(base, ".")
	if i <= 0 {
		return ""
	}
	return base[i+1:]
}

// Join combines an identifier and an extension into a stored filename
func Join(id, ext string) string {
	if ext == "" {
		return id
	}
	return id + "." + ext
}
