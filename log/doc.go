// Package log provides a small structured logging facade over [log/slog]
// with an extra Trace level below Debug.
//
// A zero-value [Logger] is valid and discards everything, so library code
// can log unconditionally without nil checks:
//
//	logger := log.Make(os.Stderr, log.WithLevel(log.LevelDebug))
//	logger.Info("sheet loaded", slog.Int("cells", n))
//
// Configuration is applied once at creation time with functional options;
// loggers are immutable values after that.
package log
