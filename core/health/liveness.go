package health

import (
	"github.com/dmitrymomot/qrstudio/core/handler"
	"github.com/dmitrymomot/qrstudio/core/response"
)

// Liveness reports that the process is serving requests. It never checks
// dependencies.
func Liveness[C handler.Context](C) handler.Response {
	return response.NoStore(response.String("ALIVE"))
}

// NoContent returns 204 without a body.
func NoContent[C handler.Context](C) handler.Response {
	return response.NoContent()
}
