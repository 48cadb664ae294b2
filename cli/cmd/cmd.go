package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"unicode/utf8"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/sout/tmpl"
)

type (
	contextKey    struct{}
	delimitersKey struct{}
	streamsKey    struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the kong variable named id, or "" if there is none.
func kongVar(ctx context.Context, id string) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	return ktx.Model.Vars()[id]
}

// Delims is a flag value holding the template delimiters as four runes in
// the order open, separator, close, escape. The zero Delims selects
// [tmpl.DefaultDelimiters].
type Delims tmpl.Delimiters

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Delims) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Delims{}

		return nil
	}

	if utf8.RuneCount(text) != 4 {
		return ErrDelimiters.With(slog.String("value", string(text)))
	}

	rs := []rune(string(text))
	v := tmpl.Delimiters{Open: rs[0], Separator: rs[1], Close: rs[2], Escape: rs[3]}

	if err := v.Validate(); err != nil {
		return ErrDelimiters.With(slog.String("value", string(text))).Wrap(err)
	}

	*d = Delims(v)

	return nil
}

// String returns the four runes, or "" for the zero Delims.
func (d Delims) String() string {
	if d == (Delims{}) {
		return ""
	}

	return tmpl.Delimiters(d).String()
}

// Delimiters returns the selected delimiters.
func (d Delims) Delimiters() tmpl.Delimiters {
	if d == (Delims{}) {
		return tmpl.DefaultDelimiters
	}

	return tmpl.Delimiters(d)
}

// WithDelimiters returns a new context.Context carrying the delimiters used
// to compile templates.
func WithDelimiters(ctx context.Context, d tmpl.Delimiters) context.Context {
	return context.WithValue(ctx, delimitersKey{}, d)
}

func delimitersFrom(ctx context.Context) tmpl.Delimiters {
	if d, ok := ctx.Value(delimitersKey{}).(tmpl.Delimiters); ok {
		return d
	}

	return tmpl.DefaultDelimiters
}

// Streams are the standard input and output of a command.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// WithStreams returns a new context.Context carrying s. Nil members fall back
// to the process's standard streams.
func WithStreams(ctx context.Context, s Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

func streamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// stdinSource is the special source name for reading from stdin.
const stdinSource = "-"

// source is an opened input named on the command line.
type source struct {
	name string
	io.ReadCloser
}

// openSource opens path, or the input stream of ctx if path is "-".
func openSource(ctx context.Context, path string) (source, error) {
	if path == stdinSource {
		return source{stdinSource, io.NopCloser(streamsFrom(ctx).In)}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return source{}, ErrOpenSource.With(slog.String("path", path)).Wrap(err)
	}

	return source{path, f}, nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// uniqueSources returns paths with duplicates removed, keeping the first
// occurrence. Paths naming the same file through symlinks or relative
// components are duplicates, and so is every "-" after the first.
func uniqueSources(paths []string) ([]string, error) {
	var (
		out      []string
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})

	for _, path := range paths {
		if path == stdinSource {
			if !hasStdin {
				out = append(out, stdinSource)
			}

			hasStdin = true

			continue
		}

		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil, ErrOpenSource.With(slog.String("path", path)).Wrap(err)
		}

		info, err := os.Stat(resolved)
		if err != nil {
			return nil, ErrOpenSource.With(slog.String("path", path)).Wrap(err)
		}

		if key, ok := makeFileKey(info); ok {
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}
		}

		out = append(out, path)
	}

	return out, nil
}

// loadData decodes each of paths as a YAML (or JSON) document and merges
// them into one data model, later files overriding earlier ones. Mappings
// are merged recursively; any other value replaces what came before. With
// no paths, or only empty documents, the model is nil.
func loadData(ctx context.Context, paths []string) (any, error) {
	paths, err := uniqueSources(paths)
	if err != nil {
		return nil, ErrLoadData.Wrap(err)
	}

	var data any

	for _, path := range paths {
		doc, err := decodeSource(ctx, path)
		if err != nil {
			return nil, err
		}

		if doc != nil {
			data = merge(data, doc)
		}
	}

	return data, nil
}

func decodeSource(ctx context.Context, path string) (any, error) {
	src, err := openSource(ctx, path)
	if err != nil {
		return nil, ErrLoadData.Wrap(err)
	}
	defer src.Close()

	var doc any

	err = yaml.NewDecoder(src).DecodeContext(ctx, &doc)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, ErrLoadData.With(slog.String("path", src.name)).Wrap(err)
	}

	return doc, nil
}

// merge returns src merged over dst.
func merge(dst, src any) any {
	dm, ok := dst.(map[string]any)
	if !ok {
		return src
	}

	sm, ok := src.(map[string]any)
	if !ok {
		return src
	}

	for k, v := range sm {
		dm[k] = merge(dm[k], v)
	}

	return dm
}
