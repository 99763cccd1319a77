// Package logger builds slog loggers and provides attribute helpers.
//
//	log := logger.New(
//		logger.WithProduction("qrstudio"),
//		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
//		logger.WithContextExtractors(middleware.RequestIDExtractor()),
//	)
//
//	log.Debug("export skipped",
//		logger.Component("export"),
//		logger.Result("no_graphic"),
//	)
//
// Helpers such as Error, RequestID and Key return an empty slog.Attr for nil
// or empty input, so they can be passed without checks:
//
//	log.Error("save failed", logger.Error(err))
package logger
