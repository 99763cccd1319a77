package web

import (
	"embed"
	"html/template"

	"github.com/dmitrymomot/qrstudio/internal/studio"
)

//go:embed templates/*.html static
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "templates/index.html"))

type sizeOption struct {
	Value    int
	Label    string
	Selected bool
}

type pageData struct {
	Title   string
	State   studio.State
	Sizes   []sizeOption
	Preview template.HTML
}

func newPageData(title string, sess *Session) pageData {
	state := sess.Studio.State()
	sizes := studio.Sizes()
	opts := make([]sizeOption, 0, len(sizes))
	for _, s := range sizes {
		opts = append(opts, sizeOption{Value: int(s), Label: s.String(), Selected: s == state.Size})
	}

	// Markup is produced by pkg/qrcode with escaped attribute values.
	return pageData{
		Title:   title,
		State:   state,
		Sizes:   opts,
		Preview: template.HTML(sess.Preview().Markup),
	}
}
