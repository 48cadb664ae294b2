package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/sout/tmpl"
)

// Fmt reads a template and prints it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Print canonical template source (default)."`
	JSON   JSON   `cmd:""                    help:"Print the template tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Print the template tree as YAML."`
	Tree   Tree   `cmd:""                    help:"Print the template tree as an indented outline."`
}

// Native prints the canonical source of a template, optionally rewritten
// with other delimiters.
type Native struct {
	To Delims `help:"Rewrite with these delimiters (open, separator, close, escape)." placeholder:"RUNES"`

	Source string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source"`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context) error {
	t, err := compileFile(ctx, f.Source, tmpl.WithDelimiters(delimitersFrom(ctx)))
	if err != nil {
		return err
	}

	d := t.Delimiters()
	if f.To != (Delims{}) {
		d = f.To.Delimiters()
	}

	_, err = io.WriteString(streamsFrom(ctx).Out, tmpl.Unparse(t.Root(), d))

	return err
}

// JSON prints the template tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	t, err := compileFile(ctx, j.Source, tmpl.WithDelimiters(delimitersFrom(ctx)))
	if err != nil {
		return err
	}

	var data []byte

	if j.Indent > 0 {
		data, err = json.MarshalIndent(treeOf(t.Root()), "", strings.Repeat(" ", j.Indent))
	} else {
		data, err = json.Marshal(treeOf(t.Root()))
	}

	if err != nil {
		return ErrJSONMarshal.With(slog.String("source", j.Source)).Wrap(err)
	}

	_, err = fmt.Fprintln(streamsFrom(ctx).Out, string(data))

	return err
}

// YAML prints the template tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output; 0 selects flow style" short:"i"`

	Source string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	t, err := compileFile(ctx, y.Source, tmpl.WithDelimiters(delimitersFrom(ctx)))
	if err != nil {
		return err
	}

	opts := []yaml.EncodeOption{yaml.Flow(true)}
	if y.Indent > 0 {
		opts = []yaml.EncodeOption{yaml.Indent(y.Indent)}
	}

	data, err := yaml.MarshalContext(ctx, treeOf(t.Root()), opts...)
	if err != nil {
		return ErrYAMLMarshal.With(slog.String("source", y.Source)).Wrap(err)
	}

	_, err = streamsFrom(ctx).Out.Write(data)

	return err
}

// Tree prints the template tree as an indented outline, one node per line.
type Tree struct {
	Source string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source"`
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) error {
	tpl, err := compileFile(ctx, t.Source, tmpl.WithDelimiters(delimitersFrom(ctx)))
	if err != nil {
		return err
	}

	var sb strings.Builder

	writeOutline(&sb, tpl.Root(), "", 0)

	_, err = io.WriteString(streamsFrom(ctx).Out, sb.String())

	return err
}

// treeNode is the serialized form of a template node.
type treeNode struct {
	Kind      string      `json:"kind"                yaml:"kind"`
	Pos       string      `json:"pos"                 yaml:"pos"`
	Text      string      `json:"text,omitempty"      yaml:"text,omitempty"`
	Name      string      `json:"name,omitempty"      yaml:"name,omitempty"`
	Children  []*treeNode `json:"children,omitempty"  yaml:"children,omitempty"`
	Main      *treeNode   `json:"main,omitempty"      yaml:"main,omitempty"`
	Separator *treeNode   `json:"separator,omitempty" yaml:"separator,omitempty"`
	LeadIn    *treeNode   `json:"leadIn,omitempty"    yaml:"leadIn,omitempty"`
	LeadOut   *treeNode   `json:"leadOut,omitempty"   yaml:"leadOut,omitempty"`
}

// treeOf converts n to its serialized form. An absent loop part is nil.
func treeOf(n tmpl.Node) *treeNode {
	if c, ok := n.(*tmpl.Container); ok && c == nil {
		return nil
	}

	t := &treeNode{Pos: n.Pos().String()}

	switch n := n.(type) {
	case *tmpl.Container:
		t.Kind = "container"
		for c := range n.Children() {
			t.Children = append(t.Children, treeOf(c))
		}

	case *tmpl.Text:
		t.Kind, t.Text = "text", n.Text()

	case *tmpl.Name:
		t.Kind, t.Name = "name", n.Name()

	case *tmpl.Loop:
		t.Kind, t.Name = "loop", n.Name()
		t.Main = treeOf(n.Main())
		t.Separator = treeOf(n.Separator())
		t.LeadIn = treeOf(n.LeadIn())
		t.LeadOut = treeOf(n.LeadOut())
	}

	return t
}

// partLabels name the parts of a loop in source order.
var partLabels = []string{"main", "separator", "leadIn", "leadOut"}

// writeOutline writes n and its descendants, indenting two spaces per level.
// label replaces the kind of a container that is a loop part.
func writeOutline(sb *strings.Builder, n tmpl.Node, label string, depth int) {
	indent := strings.Repeat("  ", depth)

	switch n := n.(type) {
	case *tmpl.Container:
		if label == "" {
			label = "container"
		}

		fmt.Fprintf(sb, "%s%s %v\n", indent, label, n.Pos())

		for c := range n.Children() {
			writeOutline(sb, c, "", depth+1)
		}

	case *tmpl.Text:
		fmt.Fprintf(sb, "%stext %v %s\n", indent, n.Pos(), strconv.Quote(n.Text()))

	case *tmpl.Name:
		fmt.Fprintf(sb, "%sname %v %s\n", indent, n.Pos(), strconv.Quote(n.Name()))

	case *tmpl.Loop:
		fmt.Fprintf(sb, "%sloop %v %s\n", indent, n.Pos(), strconv.Quote(n.Name()))

		for i, part := range n.Parts() {
			if part != nil {
				writeOutline(sb, part, partLabels[i], depth+1)
			}
		}
	}
}
