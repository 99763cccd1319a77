package response

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/dmitrymomot/qrstudio/core/handler"
)

var ErrNilTemplate = errors.New("template is nil")

// Template renders tmpl with data as an HTML page. Output is buffered, so a
// failing template writes nothing.
func Template(tmpl *template.Template, data any) handler.Response {
	return TemplateName(tmpl, "", data)
}

// TemplateName renders the named template from a template set. An empty
// name executes tmpl itself.
func TemplateName(tmpl *template.Template, name string, data any) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if tmpl == nil {
			return ErrNilTemplate
		}

		var buf bytes.Buffer
		var err error
		if name != "" {
			err = tmpl.ExecuteTemplate(&buf, name, data)
		} else {
			err = tmpl.Execute(&buf, data)
		}
		if err != nil {
			return err
		}
		return write(w, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	}
}
