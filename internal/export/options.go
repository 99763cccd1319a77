package export

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/qrstudio/pkg/blob"
	"github.com/dmitrymomot/qrstudio/pkg/raster"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithFilename overrides DefaultFilename.
func WithFilename(name string) Option {
	return func(p *Pipeline) {
		if name != "" {
			p.filename = name
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithSurfaceFactory sets where raster surfaces come from.
func WithSurfaceFactory(f raster.Factory) Option {
	return func(p *Pipeline) {
		if f != nil {
			p.surfaces = f
		}
	}
}

// WithRegistry shares a blob registry, so exported markup is reachable
// through its blob: URL while the export runs.
func WithRegistry(r *blob.Registry) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.registry = r
		}
	}
}

// WithDecodeTimeout bounds the asynchronous decode. Zero waits until the
// decode finishes or the context is done.
func WithDecodeTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d >= 0 {
			p.decodeTimeout = d
		}
	}
}
