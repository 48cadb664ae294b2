//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of sout embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the command identifier. It appears in help text and in the
	// default configuration and cache paths.
	Name = "sout"
	// Description is the one-line summary shown in help output.
	Description = "Minimal text templating with delimited holes and loops"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// String returns the author as "Name <Email>".
func (a AuthorInfo) String() string {
	switch {
	case a.Email == "":
		return a.Name
	case a.Name == "":
		return "<" + a.Email + ">"
	default:
		return a.Name + " <" + a.Email + ">"
	}
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
