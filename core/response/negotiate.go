package response

import (
	"mime"
	"net/http"
	"strings"

	"github.com/dmitrymomot/qrstudio/core/handler"
)

const (
	HeaderHXRequest  = "HX-Request"
	HeaderHXLocation = "HX-Location"
)

// IsHTMX reports whether the request was sent by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderHXRequest) == "true"
}

// WantsJSON reports whether the client prefers a JSON answer, either because
// it is a scripted (htmx) request or because Accept names application/json.
func WantsJSON(r *http.Request) bool {
	if IsHTMX(r) {
		return true
	}
	for part := range strings.SplitSeq(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mt == "application/json" {
			return true
		}
	}
	return false
}

// Negotiate picks asJSON for clients that want JSON and page otherwise.
func Negotiate(page, asJSON handler.Response) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Add("Vary", "Accept")
		w.Header().Add("Vary", HeaderHXRequest)
		if WantsJSON(r) {
			return asJSON(w, r)
		}
		return page(w, r)
	}
}
