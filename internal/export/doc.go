// Package export rasterizes the displayed QR graphic and saves it as PNG.
//
// An export reads the current graphic and export size from a Source. It
// registers the markup as a blob: resource and decodes it asynchronously.
// It then draws the result on a fresh transparent surface of the export
// size and passes the encoded PNG to a Saver. The blob is revoked before
// Export returns, whatever the outcome.
//
// Export has a binary contract: it returns true when the Saver accepted
// an artifact and false otherwise. Nothing is reported to the user on
// failure.
//
//	p := export.New(export.WithLogger(log))
//	if !p.Export(ctx, s, export.DirSaver(".")) {
//		// nothing was written
//	}
package export
