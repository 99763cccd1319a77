package response

import (
	"net/http"

	"github.com/dmitrymomot/qrstudio/core/handler"
)

func redirect(url string, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if IsHTMX(r) {
			w.Header().Set(HeaderHXLocation, url)
			w.WriteHeader(http.StatusOK)
			return nil
		}
		http.Redirect(w, r, url, status)
		return nil
	}
}

// Redirect creates a 302 Found response. htmx requests get an HX-Location
// header with 200 OK instead.
func Redirect(url string) handler.Response {
	return redirect(url, http.StatusFound)
}

// RedirectSeeOther creates a 303 See Other response, the usual answer to a
// form POST.
func RedirectSeeOther(url string) handler.Response {
	return redirect(url, http.StatusSeeOther)
}

// RedirectWithStatus creates a redirect with a custom 3xx status.
// Anything outside the 3xx range falls back to 302.
func RedirectWithStatus(url string, status int) handler.Response {
	if status < 300 || status >= 400 {
		status = http.StatusFound
	}
	return redirect(url, status)
}
