// Package middleware provides generic handler.Middleware implementations:
// request IDs, request logging, security headers, request body limits and
// token bucket rate limits.
//
//	r := router.New(router.WithContextFactory(newContext))
//	r.Use(
//		middleware.RequestID[*Context](),
//		middleware.LoggingWithLogger[*Context](log),
//		middleware.SecurityHeaders[*Context](),
//		middleware.BodyLimitWithSize[*Context](16*middleware.KB),
//	)
//
// Order matters: RequestID must run before Logging for records to carry
// the request_id attribute through logger.WithContextExtractors.
package middleware
