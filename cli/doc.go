// Package cli contains the command line interface for sout.
//
// # Usage
//
//	sout [flags] [render] [--data FILE]... [TEMPLATE]
//	sout check TEMPLATE...
//	sout fmt [native|json|yaml|tree] [TEMPLATE]
//	sout repl [--data FILE]...
//	sout init [--force]
//
// Render is the default command. A template or data path of "-" reads
// standard input.
//
// # Delimiters
//
// The --delims flag selects the four special runes in the order open,
// separator, close, escape:
//
//	sout --delims='<,>~' render page.tmpl
//
// # Configuration
//
// Flag defaults are read from config.yaml, then config.json, in the
// configuration directory. The init command writes config.yaml from the
// current flag values. Command-line flags override both files.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o sout .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
package cli
