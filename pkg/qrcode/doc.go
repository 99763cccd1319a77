// Package qrcode renders QR codes as SVG on top of skip2/go-qrcode.
//
//	g, err := qrcode.Vector("https://example.com",
//		qrcode.WithColor("#ff0000"),
//		qrcode.WithSize(200),
//	)
//	if err != nil {
//		return err
//	}
//	w.Header().Set("Content-Type", "image/svg+xml")
//	w.Write(g.Markup)
//
// The SVG has a viewBox of one unit per module and a single path holding
// the dark modules, one closed subpath per horizontal run. The background
// is transparent unless WithBackground is given, and there is no quiet zone
// unless WithMargin(true) is set. Scanners need a light quiet zone, so
// place transparent output on a light surface.
//
// Content longer than the symbol capacity at the chosen level fails with
// ErrContentTooLong.
package qrcode
