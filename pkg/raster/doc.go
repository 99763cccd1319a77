// Package raster draws SVG documents onto off-screen RGBA surfaces and
// encodes them as PNG.
//
// Parsing is done by github.com/srwiley/oksvg and scan conversion by
// github.com/srwiley/rasterx. Only the SVG subset oksvg understands is
// rendered; paths, basic shapes and solid fills are enough for QR markup.
//
//	icon, err := raster.Decode(bytes.NewReader(markup))
//	if err != nil {
//		return err
//	}
//	surface, err := raster.NewFactory(0).Acquire(300, 300)
//	if err != nil {
//		return err // raster.ErrNoContext
//	}
//	surface.Fill(icon)
//	data, err := surface.PNG()
package raster
