// Package logger builds structured slog loggers with context extraction and
// optional Sentry forwarding.
//
//	log := logger.New(
//	    logger.WithLevel(logger.ParseLevel(cfg.Log.Level)),
//	    logger.WithComponent("restina"),
//	    logger.WithExtractors(middlewares.RequestIDExtractor()),
//	    logger.WithSentry(logger.SentryConfig{DSN: cfg.Sentry.DSN}),
//	)
//
// A ContextExtractor pulls one attribute from the context of every record,
// which is how request IDs reach dispatcher and hook logs:
//
//	type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
//
// With a Sentry DSN, errors create Sentry issues and warnings are stored as
// Sentry logs; stdout output is unchanged. NewNope returns a logger that
// discards everything and is the default for every component that accepts
// a logger option.
package logger
