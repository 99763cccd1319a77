package qrcode

import qr "github.com/skip2/go-qrcode"

// Preview defaults.
const (
	DefaultSize  = 200
	DefaultColor = "#000000"
	// MarginModules is the quiet zone width used when a margin is requested.
	MarginModules = 4
)

// RecoveryLevel is the error correction level of the encoded symbol.
type RecoveryLevel = qr.RecoveryLevel

const (
	Low     RecoveryLevel = qr.Low
	Medium  RecoveryLevel = qr.Medium
	High    RecoveryLevel = qr.High
	Highest RecoveryLevel = qr.Highest
)

type options struct {
	size       int
	color      string
	background string
	level      RecoveryLevel
	margin     bool
}

// Option configures Vector.
type Option func(*options)

// WithSize sets the rendered width and height in pixels.
func WithSize(px int) Option {
	return func(o *options) { o.size = px }
}

// WithColor sets the module color.
func WithColor(color string) Option {
	return func(o *options) { o.color = color }
}

// WithBackground paints the background. The default is transparent.
func WithBackground(color string) Option {
	return func(o *options) { o.background = color }
}

func WithLevel(level RecoveryLevel) Option {
	return func(o *options) { o.level = level }
}

// WithMargin adds a quiet zone of MarginModules around the symbol.
func WithMargin(enabled bool) Option {
	return func(o *options) { o.margin = enabled }
}
