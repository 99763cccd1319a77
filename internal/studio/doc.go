// Package studio is the form state controller of the QR generator.
//
// A Studio owns three fields: the encoded text, the foreground color and
// the export size. Every write to the text or the color re-renders the
// vector preview through a Renderer; the export size never affects the
// preview. Reset restores the defaults atomically.
//
//	s := studio.New(studio.WithObserver(func(g qrcode.Graphic, ok bool) {
//		// push g.Markup to the page
//	}))
//	s.SetText("hello world")
//	if err := s.SetSize(studio.Size500); err != nil {
//		return err
//	}
//	g, ok := s.Graphic()
package studio
