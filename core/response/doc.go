// Package response provides constructors for handler.Response values: plain
// text, HTML templates, JSON, redirects, attachments, websocket upgrades and
// structured HTTP errors.
//
// Handlers return a response instead of writing to the ResponseWriter:
//
//	func stateHandler(ctx *web.Context) handler.Response {
//		return response.JSON(ctx.Studio().State())
//	}
//
// # Content Negotiation
//
// Form endpoints answer browsers with a redirect and scripted clients with
// JSON. Negotiate picks between the two using the HX-Request and Accept
// headers:
//
//	return response.Negotiate(
//		response.RedirectSeeOther("/"),
//		response.JSON(state),
//	)
//
// # Errors
//
// HTTPError carries a status, a machine-readable code and a message. Return
// it through Error and let the router's error handler render it:
//
//	return response.Error(response.ErrBadRequest.WithMessage("color must be #rrggbb"))
//
// ErrorHandler, JSONErrorHandler and NegotiatedErrorHandler are ready-made
// router error handlers. Errors that are not HTTPError values are mapped by
// their StatusCode() method or by the router's sentinel errors, and default
// to 500.
//
// # Downloads
//
// Attachment serves generated bytes with a Content-Disposition header:
//
//	return response.Attachment(pngBytes, "qr-code.png", "image/png")
//
// # WebSocket
//
// WebSocket upgrades the request and hands the connection to a callback
// that runs until the client goes away:
//
//	return response.WebSocket(func(ctx context.Context, conn *websocket.Conn) error {
//		for markup := range updates {
//			if err := conn.WriteMessage(websocket.TextMessage, markup); err != nil {
//				return err
//			}
//		}
//		return nil
//	})
package response
