package web

import (
	"net/http"

	"github.com/dmitrymomot/qrstudio/core/router"
	"github.com/dmitrymomot/qrstudio/internal/studio"
)

// Context is the request context of the web app. The session is attached
// by the session middleware and is nil on routes outside it.
type Context struct {
	*router.Context
	session *Session
}

func newContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{Context: router.NewContext(w, r)}
}

func (c *Context) Session() *Session {
	return c.session
}

// Studio returns the visitor's form state.
func (c *Context) Studio() *studio.Studio {
	return c.session.Studio
}
