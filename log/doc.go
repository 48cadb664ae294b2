// Package log provides a concurrency-safe structured logger built on
// [log/slog].
//
// A [Logger] is immutable: [Logger.Wrap] and [Logger.With] return modified
// copies. The zero Logger discards everything, so libraries may accept one
// without requiring callers to configure logging.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr, log.WithLevel(log.LevelDebug))
//	logger.Info("template compiled", slog.Int("nodes", 12))
//
// # Package Logger
//
// The package-level functions ([Info], [ErrorContext], ...) log through a
// default Logger writing to standard error, reconfigured with [Config]:
//
//	log.Config(log.WithFormat(log.FormatJSON), log.WithPretty(false))
//
// # Levels
//
// [LevelTrace] sits below [LevelDebug] for very chatty diagnostics such as
// per-node render events. Levels are parsed with [ParseLevel].
//
// # Output
//
// Two formats are supported, [FormatText] and [FormatJSON]. With
// [WithPretty], both are colorized with lipgloss when the output is a
// terminal and the JSON form is indented. Timestamps use [WithTimeLayout],
// which accepts the names of the [time] package layouts.
package log
