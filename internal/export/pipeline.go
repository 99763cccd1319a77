package export

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/qrstudio/core/logger"
	"github.com/dmitrymomot/qrstudio/pkg/async"
	"github.com/dmitrymomot/qrstudio/pkg/blob"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
	"github.com/dmitrymomot/qrstudio/pkg/raster"
)

// Source is the read-only view of the form state the pipeline needs.
// ExportSnapshot returns the displayed graphic and the export size as one
// consistent pair; ok is false when nothing is displayed.
type Source interface {
	ExportSnapshot() (g qrcode.Graphic, size int, ok bool)
}

// Pipeline turns the displayed vector graphic into a PNG download.
// A Pipeline is stateless between calls and safe for concurrent use.
type Pipeline struct {
	filename      string
	logger        *slog.Logger
	surfaces      raster.Factory
	registry      *blob.Registry
	decodeTimeout time.Duration
}

// New creates a Pipeline with its own registry and the default surface factory.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		filename: DefaultFilename,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		surfaces: raster.NewFactory(0),
		registry: blob.NewRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("export"))
	return p
}

// Registry returns the registry blobs are created in.
func (p *Pipeline) Registry() *blob.Registry {
	return p.registry
}

// Export rasterizes the current graphic of src at its export size and hands
// the PNG to dst. It reports whether an artifact was saved. Failures are
// never surfaced to the caller; they are logged at debug level.
func (p *Pipeline) Export(ctx context.Context, src Source, dst Saver) (saved bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.DebugContext(ctx, "export aborted", logger.Result("panic"), logger.Key("panic", r))
			saved = false
		}
	}()

	g, size, ok := src.ExportSnapshot()
	if !ok {
		p.logger.DebugContext(ctx, "export skipped", logger.Result("no_graphic"))
		return false
	}

	url := p.registry.Create(g.Markup, ContentTypeSVG)
	defer p.registry.Revoke(url)

	icon, err := p.decode(ctx, url)
	if err != nil {
		p.logger.DebugContext(ctx, "export aborted", logger.Result("decode_failed"), logger.Error(err))
		return false
	}

	surface, err := p.surfaces.Acquire(size, size)
	if err != nil {
		p.logger.DebugContext(ctx, "export aborted", logger.Result("no_surface"), logger.Dimension(size), logger.Error(err))
		return false
	}
	surface.Fill(icon)

	data, err := surface.PNG()
	if err != nil {
		p.logger.DebugContext(ctx, "export aborted", logger.Result("encode_failed"), logger.Error(err))
		return false
	}

	artifact := Artifact{
		Filename:    p.filename,
		ContentType: ContentTypePNG,
		Width:       size,
		Height:      size,
		Data:        data,
	}
	if err := dst.Save(ctx, artifact); err != nil {
		p.logger.DebugContext(ctx, "export aborted", logger.Result("save_failed"), logger.Error(err))
		return false
	}

	p.logger.DebugContext(ctx, "export saved",
		logger.Dimension(size),
		logger.BytesOut(int64(len(data))),
	)
	return true
}

// decode loads url from the registry and parses it off the calling goroutine.
func (p *Pipeline) decode(ctx context.Context, url string) (*raster.Icon, error) {
	if p.decodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.decodeTimeout)
		defer cancel()
	}

	f := async.Async(ctx, url, func(_ context.Context, url string) (*raster.Icon, error) {
		b, err := p.registry.Open(url)
		if err != nil {
			return nil, err
		}
		return raster.Decode(b.Reader())
	})
	return f.AwaitContext(ctx)
}
