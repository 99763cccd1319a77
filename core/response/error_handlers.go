package response

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/qrstudio/core/handler"
	"github.com/dmitrymomot/qrstudio/core/router"
)

// convertToHTTPError normalizes any error into an HTTPError. Router errors
// and errors implementing StatusCode() int keep their status.
func convertToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	baseErr, ok := httpErrorsByStatus[router.StatusOf(err)]
	if !ok {
		baseErr = ErrInternalServerError
	}
	return baseErr.WithError(err)
}

// ErrorHandler writes errors as plain text.
func ErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := convertToHTTPError(err)
	Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
}

// JSONErrorHandler writes errors as JSON objects.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := convertToHTTPError(err)
	Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
}

// NegotiatedErrorHandler writes JSON to clients that asked for it and plain
// text to everyone else.
func NegotiatedErrorHandler[C handler.Context](ctx C, err error) {
	if WantsJSON(ctx.Request()) {
		JSONErrorHandler(ctx, err)
		return
	}
	ErrorHandler(ctx, err)
}

// StatusOf reports the HTTP status err will be rendered with.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return convertToHTTPError(err).Status
}
