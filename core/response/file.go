package response

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrymomot/qrstudio/core/handler"
)

var filenameReplacer = strings.NewReplacer("\n", "", "\r", "", `"`, "'")

// Attachment creates a response for downloading in-memory data as a file.
// If contentType is empty it is detected from the filename extension,
// falling back to application/octet-stream.
func Attachment(data []byte, filename string, contentType string) handler.Response {
	filename = filenameReplacer.Replace(filename)
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		return write(w, http.StatusOK, contentType, data)
	}
}
