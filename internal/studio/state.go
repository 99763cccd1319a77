package studio

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Defaults restored by Reset.
const (
	DefaultText  = "https://example.com"
	DefaultColor = "#000000"
	DefaultSize  = Size300

	// PreviewSize is the fixed on-screen size of the rendered graphic.
	PreviewSize = 200
)

var ErrUnsupportedSize = errors.New("studio: unsupported export size")

// Size is a square raster export dimension in pixels.
type Size int

const (
	Size200 Size = 200
	Size300 Size = 300
	Size400 Size = 400
	Size500 Size = 500
)

var sizes = []Size{Size200, Size300, Size400, Size500}

// Sizes returns the export presets in ascending order.
func Sizes() []Size {
	return slices.Clone(sizes)
}

// Valid reports whether s is one of the presets.
func (s Size) Valid() bool {
	return slices.Contains(sizes, s)
}

func (s Size) String() string {
	return strconv.Itoa(int(s)) + "px"
}

// ParseSize turns a form value such as "400" into a preset.
func ParseSize(v string) (Size, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedSize, v)
	}
	s := Size(n)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedSize, n)
	}
	return s, nil
}

// State is a snapshot of the form fields.
type State struct {
	Text  string `json:"text"`
	Color string `json:"color"`
	Size  Size   `json:"size"`
}

// DefaultState returns the initial form values.
func DefaultState() State {
	return State{Text: DefaultText, Color: DefaultColor, Size: DefaultSize}
}
