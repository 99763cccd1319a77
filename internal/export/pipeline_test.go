package export_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrstudio/internal/export"
	"github.com/dmitrymomot/qrstudio/internal/studio"
	"github.com/dmitrymomot/qrstudio/pkg/blob"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
	"github.com/dmitrymomot/qrstudio/pkg/raster"
)

// collector records every artifact it is given.
type collector struct {
	mu        sync.Mutex
	artifacts []export.Artifact
	err       error
}

func (c *collector) Save(_ context.Context, a export.Artifact) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artifacts = append(c.artifacts, a)
	return c.err
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.artifacts)
}

type fixedSource struct {
	g    qrcode.Graphic
	ok   bool
	size int
}

func (s fixedSource) ExportSnapshot() (qrcode.Graphic, int, bool) { return s.g, s.size, s.ok }

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

// scan composites img onto white with a quiet zone and reads the QR code.
func scan(t *testing.T, img image.Image) string {
	t.Helper()

	const pad = 40
	b := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx()+2*pad, b.Dy()+2*pad))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(pad, pad, pad+b.Dx(), pad+b.Dy()), img, b.Min, draw.Over)

	bmp, err := gozxing.NewBinaryBitmapFromImage(canvas)
	require.NoError(t, err)
	res, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return res.GetText()
}

// moduleCenter returns the pixel at the center of module (mx, my).
func moduleCenter(size, modules, mx, my int) (int, int) {
	px := float64(size) / float64(modules)
	return int((float64(mx) + 0.5) * px), int((float64(my) + 0.5) * px)
}

func TestExportDefaultState(t *testing.T) {
	t.Parallel()

	s := studio.New()
	out := &collector{}

	p := export.New()
	require.True(t, p.Export(context.Background(), s, out))
	require.Equal(t, 1, out.count())

	a := out.artifacts[0]
	assert.Equal(t, "qr-code.png", a.Filename)
	assert.Equal(t, "image/png", a.ContentType)
	assert.Equal(t, 300, a.Width)
	assert.Equal(t, 300, a.Height)

	img := decodePNG(t, a.Data)
	assert.Equal(t, image.Rect(0, 0, 300, 300), img.Bounds())

	r, g, b, alpha := img.At(0, 0).RGBA()
	assert.Zero(t, r>>8)
	assert.Zero(t, g>>8)
	assert.Zero(t, b>>8)
	assert.GreaterOrEqual(t, alpha>>8, uint32(250), "finder corner is opaque")

	graphic, ok := s.Graphic()
	require.True(t, ok)
	// The module right of the top-left finder pattern is always light.
	x, y := moduleCenter(300, graphic.Modules, 7, 0)
	_, _, _, alpha = img.At(x, y).RGBA()
	assert.Zero(t, alpha, "light modules are transparent")

	assert.Equal(t, "https://example.com", scan(t, img))
	assert.Equal(t, 0, p.Registry().Len())
}

func TestExportCustomState(t *testing.T) {
	t.Parallel()

	s := studio.New()
	s.SetText("hello world")
	s.SetColor("#ff0000")
	require.NoError(t, s.SetSize(studio.Size500))

	out := &collector{}
	require.True(t, export.New().Export(context.Background(), s, out))

	img := decodePNG(t, out.artifacts[0].Data)
	assert.Equal(t, image.Rect(0, 0, 500, 500), img.Bounds())

	r, g, b, alpha := img.At(2, 2).RGBA()
	assert.GreaterOrEqual(t, r>>8, uint32(250))
	assert.Zero(t, g>>8)
	assert.Zero(t, b>>8)
	assert.GreaterOrEqual(t, alpha>>8, uint32(250))

	assert.Equal(t, "hello world", scan(t, img))
}

func TestExportAllSizes(t *testing.T) {
	t.Parallel()

	for _, size := range studio.Sizes() {
		t.Run(size.String(), func(t *testing.T) {
			t.Parallel()

			s := studio.New()
			require.NoError(t, s.SetSize(size))
			out := &collector{}
			require.True(t, export.New().Export(context.Background(), s, out))

			img := decodePNG(t, out.artifacts[0].Data)
			assert.Equal(t, int(size), img.Bounds().Dx())
			assert.Equal(t, int(size), img.Bounds().Dy())
		})
	}
}

// changingSource hands out its first snapshot once and a different one
// afterwards, like a studio being reset mid-export.
type changingSource struct {
	first, later fixedSource
	reads        int
}

func (s *changingSource) ExportSnapshot() (qrcode.Graphic, int, bool) {
	s.reads++
	if s.reads == 1 {
		return s.first.ExportSnapshot()
	}
	return s.later.ExportSnapshot()
}

func TestExportReadsOneSnapshot(t *testing.T) {
	t.Parallel()

	g, err := qrcode.Vector("snapshot", qrcode.WithSize(studio.PreviewSize), qrcode.WithMargin(false))
	require.NoError(t, err)

	src := &changingSource{
		first: fixedSource{g: g, ok: true, size: 200},
		later: fixedSource{size: 500},
	}
	out := &collector{}
	require.True(t, export.New().Export(context.Background(), src, out))

	assert.Equal(t, 1, src.reads)
	require.Equal(t, 1, out.count())
	assert.Equal(t, 200, out.artifacts[0].Width)
	assert.Equal(t, "snapshot", scan(t, decodePNG(t, out.artifacts[0].Data)))
}

func TestExportBeforeFirstRender(t *testing.T) {
	t.Parallel()

	s := studio.New(studio.WithLazyRender())
	out := &collector{}
	p := export.New()

	assert.False(t, p.Export(context.Background(), s, out))
	assert.Zero(t, out.count())
	assert.Equal(t, 0, p.Registry().Len())
}

func TestExportIsIdempotent(t *testing.T) {
	t.Parallel()

	s := studio.New()
	out := &collector{}
	p := export.New()

	require.True(t, p.Export(context.Background(), s, out))
	require.True(t, p.Export(context.Background(), s, out))
	require.Equal(t, 2, out.count())
	assert.Equal(t, out.artifacts[0].Data, out.artifacts[1].Data)
}

func TestExportDoesNotMutateSource(t *testing.T) {
	t.Parallel()

	s := studio.New()
	s.SetText("abc")
	before := s.State()
	g1, _ := s.Graphic()

	export.New().Export(context.Background(), s, &collector{})

	assert.Equal(t, before, s.State())
	g2, _ := s.Graphic()
	assert.Equal(t, g1, g2)
}

func TestExportSurfaceUnavailable(t *testing.T) {
	t.Parallel()

	reg := blob.NewRegistry()
	p := export.New(
		export.WithRegistry(reg),
		export.WithSurfaceFactory(raster.FactoryFunc(func(int, int) (*raster.Surface, error) {
			return nil, raster.ErrNoContext
		})),
	)
	out := &collector{}

	assert.False(t, p.Export(context.Background(), studio.New(), out))
	assert.Zero(t, out.count())
	assert.Equal(t, 0, reg.Len(), "blob revoked when no surface")
}

func TestExportSurfaceTooLarge(t *testing.T) {
	t.Parallel()

	p := export.New(export.WithSurfaceFactory(raster.NewFactory(250)))
	out := &collector{}

	assert.False(t, p.Export(context.Background(), studio.New(), out))
	assert.Zero(t, out.count())
}

func TestExportDecodeFailure(t *testing.T) {
	t.Parallel()

	reg := blob.NewRegistry()
	p := export.New(export.WithRegistry(reg))
	src := fixedSource{g: qrcode.Graphic{Markup: []byte("<svg")}, ok: true, size: 300}
	out := &collector{}

	assert.False(t, p.Export(context.Background(), src, out))
	assert.Zero(t, out.count())
	assert.Equal(t, 0, reg.Len())
}

func TestExportCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := export.New()
	out := &collector{}
	assert.False(t, p.Export(ctx, studio.New(), out))
	assert.Zero(t, out.count())
	assert.Equal(t, 0, p.Registry().Len())
}

func TestExportSaveFailure(t *testing.T) {
	t.Parallel()

	p := export.New()
	out := &collector{err: errors.New("disk full")}

	assert.False(t, p.Export(context.Background(), studio.New(), out))
	assert.Equal(t, 1, out.count())
	assert.Equal(t, 0, p.Registry().Len())
}

func TestExportSaverPanics(t *testing.T) {
	t.Parallel()

	p := export.New()
	saver := export.SaverFunc(func(context.Context, export.Artifact) error {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		assert.False(t, p.Export(context.Background(), studio.New(), saver))
	})
	assert.Equal(t, 0, p.Registry().Len())
}

func TestExportBlobReachableDuringSave(t *testing.T) {
	t.Parallel()

	p := export.New()
	var live int
	saver := export.SaverFunc(func(context.Context, export.Artifact) error {
		live = p.Registry().Len()
		return nil
	})

	require.True(t, p.Export(context.Background(), studio.New(), saver))
	assert.Equal(t, 1, live)
	assert.Equal(t, 0, p.Registry().Len())
}

func TestExportFilename(t *testing.T) {
	t.Parallel()

	out := &collector{}
	require.True(t, export.New(export.WithFilename("custom.png")).Export(context.Background(), studio.New(), out))
	assert.Equal(t, "custom.png", out.artifacts[0].Filename)
}

func TestExportConcurrent(t *testing.T) {
	t.Parallel()

	s := studio.New()
	p := export.New()
	out := &collector{}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, p.Export(context.Background(), s, out))
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, out.count())
	assert.Equal(t, 0, p.Registry().Len())
}

func TestDirSaver(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.True(t, export.New().Export(context.Background(), studio.New(), export.DirSaver(dir)))

	data, err := os.ReadFile(filepath.Join(dir, "qr-code.png"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", scan(t, decodePNG(t, data)))

	err = export.DirSaver(filepath.Join(dir, "missing")).Save(context.Background(), export.Artifact{Filename: "x.png"})
	assert.Error(t, err)
}

func TestArtifactDataURI(t *testing.T) {
	t.Parallel()

	a := export.Artifact{ContentType: "image/png", Data: []byte("abc")}
	assert.Equal(t, "data:image/png;base64,YWJj", a.DataURI())
	assert.True(t, strings.HasPrefix(a.DataURI(), "data:image/png;base64,"))
}
