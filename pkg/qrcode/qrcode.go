package qrcode

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	qr "github.com/skip2/go-qrcode"
)

// Graphic is a rendered vector QR code.
type Graphic struct {
	// Markup is a standalone SVG document.
	Markup []byte
	// Modules is the side of the symbol in modules, including any margin.
	Modules int
	// Size is the nominal width and height in pixels.
	Size    int
	Content string
	Color   string
}

// IsZero reports whether g holds no markup.
func (g Graphic) IsZero() bool {
	return len(g.Markup) == 0
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// IsHexColor reports whether s has the #rrggbb form.
func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// Vector encodes content and renders it as SVG. By default it draws black
// modules on a transparent background at DefaultSize with low error
// correction and no quiet zone.
func Vector(content string, opts ...Option) (Graphic, error) {
	o := options{size: DefaultSize, color: DefaultColor, level: Low}
	for _, opt := range opts {
		opt(&o)
	}

	if content == "" {
		return Graphic{}, ErrEmptyContent
	}
	if o.size <= 0 {
		return Graphic{}, ErrInvalidSize
	}

	code, err := qr.New(content, o.level)
	if err != nil {
		return Graphic{}, errors.Join(ErrContentTooLong, err)
	}
	code.DisableBorder = true
	bitmap := code.Bitmap()

	margin := 0
	if o.margin {
		margin = MarginModules
	}
	n := len(bitmap) + 2*margin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, o.size, o.size, n, n)
	if o.background != "" {
		fmt.Fprintf(&buf, `<path fill="%s" d="M0,0 h%dv%dH0z"/>`, escape(o.background), n, n)
	}
	buf.WriteString(`<path fill="`)
	buf.WriteString(escape(o.color))
	buf.WriteString(`" d="`)
	writeModules(&buf, bitmap, margin)
	buf.WriteString(`"/></svg>`)

	return Graphic{
		Markup:  buf.Bytes(),
		Modules: n,
		Size:    o.size,
		Content: content,
		Color:   o.color,
	}, nil
}

// writeModules emits one closed subpath per horizontal run of dark modules.
func writeModules(buf *bytes.Buffer, bitmap [][]bool, margin int) {
	for y, row := range bitmap {
		start := -1
		for x := 0; x <= len(row); x++ {
			dark := x < len(row) && row[x]
			switch {
			case dark && start < 0:
				start = x
			case !dark && start >= 0:
				sx := strconv.Itoa(start + margin)
				buf.WriteString("M" + sx + " " + strconv.Itoa(y+margin))
				buf.WriteString("h" + strconv.Itoa(x-start) + "v1H" + sx + "z")
				start = -1
			}
		}
	}
}

func escape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
