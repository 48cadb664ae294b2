// Package cmd implements the sout subcommands.
//
//   - render: render a template against a YAML or JSON data model
//   - check:  report syntax errors in templates
//   - fmt:    print a template canonically, or dump its tree
//   - init:   write the current flag values to the configuration file
//   - repl:   render templates interactively
//
// Commands receive a [context.Context] carrying the parsed [kong.Context]
// ([WithContext]), the template delimiters ([WithDelimiters]), and the
// standard streams ([WithStreams]).
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
