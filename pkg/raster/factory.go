package raster

import "fmt"

// DefaultMaxDimension bounds surfaces handed out by the default factory.
const DefaultMaxDimension = 4096

// Factory hands out drawing surfaces.
type Factory interface {
	Acquire(width, height int) (*Surface, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(width, height int) (*Surface, error)

func (f FactoryFunc) Acquire(width, height int) (*Surface, error) {
	return f(width, height)
}

// NewFactory returns a factory that refuses surfaces larger than maxDim on
// either side. A non-positive maxDim means DefaultMaxDimension.
func NewFactory(maxDim int) Factory {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	return FactoryFunc(func(width, height int) (*Surface, error) {
		if width > maxDim || height > maxDim {
			return nil, fmt.Errorf("%w: %dx%d exceeds %d", ErrNoContext, width, height, maxDim)
		}
		return NewSurface(width, height)
	})
}
