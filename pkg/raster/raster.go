package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

var (
	// ErrNoContext is returned when a drawing surface cannot be acquired.
	ErrNoContext = errors.New("raster: drawing surface unavailable")
	ErrDecode    = errors.New("raster: failed to decode svg")
	ErrEncode    = errors.New("raster: failed to encode png")
)

// Icon is a decoded vector image ready to be drawn.
type Icon struct {
	svg *oksvg.SvgIcon
}

// Decode parses SVG markup. Unsupported elements are skipped; a document
// without a usable view box is rejected.
func Decode(r io.Reader) (*Icon, error) {
	svg, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	if svg.ViewBox.W <= 0 || svg.ViewBox.H <= 0 {
		return nil, fmt.Errorf("%w: empty view box", ErrDecode)
	}
	return &Icon{svg: svg}, nil
}

// Width returns the intrinsic width of the view box.
func (i *Icon) Width() float64 { return i.svg.ViewBox.W }

// Height returns the intrinsic height of the view box.
func (i *Icon) Height() float64 { return i.svg.ViewBox.H }

// Surface is an off-screen RGBA canvas. It starts fully transparent.
type Surface struct {
	img *image.RGBA
}

// NewSurface allocates a transparent surface of w by h pixels.
func NewSurface(w, h int) (*Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrNoContext, w, h)
	}
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, w, h))}, nil
}

func (s *Surface) Width() int  { return s.img.Rect.Dx() }
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// Image exposes the backing pixels.
func (s *Surface) Image() *image.RGBA { return s.img }

// Clear resets every pixel to transparent.
func (s *Surface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// DrawIcon draws icon scaled into the rectangle at x, y with size w by h.
func (s *Surface) DrawIcon(icon *Icon, x, y, w, h float64) {
	icon.svg.SetTarget(x, y, w, h)
	width, height := s.Width(), s.Height()
	scanner := rasterx.NewScannerGV(width, height, s.img, s.img.Bounds())
	dasher := rasterx.NewDasher(width, height, scanner)
	icon.svg.Draw(dasher, 1.0)
}

// Fill draws icon stretched over the whole surface.
func (s *Surface) Fill(icon *Icon) {
	s.DrawIcon(icon, 0, 0, float64(s.Width()), float64(s.Height()))
}

// EncodePNG writes the surface as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	if err := imaging.Encode(w, s.img, imaging.PNG); err != nil {
		return errors.Join(ErrEncode, err)
	}
	return nil
}

// PNG returns the surface encoded as PNG.
func (s *Surface) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
