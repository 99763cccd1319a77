package studio

import "github.com/dmitrymomot/qrstudio/pkg/qrcode"

// Renderer turns the form inputs into a vector graphic.
type Renderer interface {
	Render(text, color string) (qrcode.Graphic, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(text, color string) (qrcode.Graphic, error)

func (f RendererFunc) Render(text, color string) (qrcode.Graphic, error) {
	return f(text, color)
}

// PreviewRenderer draws the on-screen graphic: PreviewSize pixels, low error
// correction, transparent background and no quiet zone. Empty text is
// rendered as DefaultText.
func PreviewRenderer() Renderer {
	return RendererFunc(func(text, color string) (qrcode.Graphic, error) {
		if text == "" {
			text = DefaultText
		}
		return qrcode.Vector(text,
			qrcode.WithSize(PreviewSize),
			qrcode.WithColor(color),
			qrcode.WithLevel(qrcode.Low),
		)
	})
}
