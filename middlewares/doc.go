// Package middlewares provides net/http middleware for restina applications.
//
// Middleware wraps the whole router, so it also runs for unmatched paths.
//
// # Request ID
//
// RequestID assigns a unique ID to each request. It reuses an incoming
// X-Request-ID style header or generates a UUIDv7. Handlers and hooks read
// it with GetRequestID(ctx).
//
//	app, err := restina.New(
//	    restina.WithLogger(logger.New(
//	        logger.WithExtractors(middlewares.RequestIDExtractor()),
//	    )),
//	    restina.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// The dispatcher recovers handler panics on its own. Recover covers the
// rest: other middleware, health endpoints, custom mounts. It logs the panic
// and answers 500 with the usual JSON error body.
//
//	restina.WithMiddleware(
//	    middlewares.Recover(middlewares.WithRecoverLogger(log)),
//	)
//
// # Timeout
//
// Timeout buffers the handler's output and answers 503 if it does not
// finish in time. The handler goroutine keeps running; honour ctx.Done()
// in slow work.
//
//	restina.WithMiddleware(middlewares.Timeout(5 * time.Second))
//
// # CORS
//
// CORS answers preflight requests and adds CORS headers to all other
// responses.
//
//	restina.WithMiddleware(
//	    middlewares.CORS(
//	        middlewares.WithAllowOrigins("https://app.example.com"),
//	        middlewares.WithAllowCredentials(),
//	    ),
//	)
//
// # Recommended Middleware Order
//
//	restina.WithMiddleware(
//	    middlewares.CORS(),
//	    middlewares.RequestID(),
//	    middlewares.Recover(),
//	    middlewares.Timeout(5*time.Second),
//	)
package middlewares
