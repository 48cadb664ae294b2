package tmpl

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// Delimiters are the four special runes of the template syntax.
type Delimiters struct {
	Open      rune
	Separator rune
	Close     rune
	Escape    rune
}

// DefaultDelimiters are used when no [WithDelimiters] option is given.
var DefaultDelimiters = Delimiters{
	Open:      '{',
	Separator: '|',
	Close:     '}',
	Escape:    '\\',
}

// Validate reports an [ErrDelimiters] if the runes of d are not pairwise
// distinct valid runes.
func (d Delimiters) Validate() error {
	rs := d.runes()

	for i, r := range rs {
		if r == 0 || !utf8.ValidRune(r) {
			return d.invalid()
		}

		for _, o := range rs[i+1:] {
			if r == o {
				return d.invalid()
			}
		}
	}

	return nil
}

func (d Delimiters) runes() []rune {
	return []rune{d.Open, d.Separator, d.Close, d.Escape}
}

func (d Delimiters) invalid() *Error {
	return ErrDelimiters.At(Position{Line: 1, Column: 1}).With(
		slog.String("open", string(d.Open)),
		slog.String("separator", string(d.Separator)),
		slog.String("close", string(d.Close)),
		slog.String("escape", string(d.Escape)),
	)
}

// String returns the delimiters in the order open, separator, close, escape.
func (d Delimiters) String() string { return string(d.runes()) }

// Parse compiles src into a template tree using delimiters d.
//
// The grammar is:
//
//	template = { text | block } ;
//	block    = open name ( close | separator part { separator part } close ) ;
//	part     = { text | block } ;
//
// A block with parts is a [*Loop] whose parts are, in order, main,
// separator, leadIn, and leadOut; a fifth part is [ErrTooManyParts].
// The escape rune makes the following special rune literal. Bytes that are
// not valid UTF-8 are kept as they are.
func Parse(src string, d Delimiters) (*Container, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	p := &parser{
		input: []byte(src),
		line:  1,
		col:   1,
		d:     d,
	}

	root := &Container{pos: p.position()}

	if _, _, err := p.parseSeq(root, false, root.pos); err != nil {
		return nil, err
	}

	return root, nil
}

// parser holds the parser state.
type parser struct {
	input []byte
	pos   int
	line  int
	col   int
	d     Delimiters
}

// parseSeq appends text and blocks to c until end of input or, inside a
// block, an unescaped separator or close, which is consumed and returned
// along with its position.
func (p *parser) parseSeq(
	c *Container,
	inBlock bool,
	blockPos Position,
) (rune, Position, error) {
	var (
		text    strings.Builder
		textPos Position
	)

	flush := func() {
		if text.Len() > 0 {
			c.children = append(c.children, &Text{text: text.String(), pos: textPos})
			text.Reset()
		}
	}

	mark := func() {
		if text.Len() == 0 {
			textPos = p.position()
		}
	}

	for !p.eof() {
		r, pos := p.peek(), p.position()

		switch {
		case r == p.d.Escape:
			mark()
			p.escape(&text)

		case r == p.d.Open:
			flush()

			n, err := p.parseBlock()
			if err != nil {
				return 0, pos, err
			}

			c.children = append(c.children, n)

		case inBlock && (r == p.d.Separator || r == p.d.Close):
			flush()
			p.advance()

			return r, pos, nil

		case r == p.d.Close:
			return 0, pos, ErrUnexpectedClose.At(pos)

		default:
			mark()
			p.take(&text)
		}
	}

	if inBlock {
		return 0, p.position(), ErrUnclosedBlock.At(blockPos)
	}

	flush()

	return 0, p.position(), nil
}

// parseBlock parses a block starting at the open rune.
func (p *parser) parseBlock() (Node, error) {
	start := p.position()
	p.advance()

	var name strings.Builder

	for !p.eof() {
		switch r := p.peek(); r {
		case p.d.Escape:
			p.escape(&name)

		case p.d.Close:
			p.advance()

			return &Name{name: name.String(), pos: start}, nil

		case p.d.Separator:
			p.advance()

			return p.parseLoop(start, name.String())

		default:
			p.take(&name)
		}
	}

	return nil, ErrUnclosedBlock.At(start).With(slog.String("name", name.String()))
}

// parseLoop parses the parts of a loop block after its name.
func (p *parser) parseLoop(start Position, name string) (*Loop, error) {
	const maxParts = 4

	parts := make([]*Container, 0, maxParts)

	for {
		part := &Container{pos: p.position()}

		term, pos, err := p.parseSeq(part, true, start)
		if err != nil {
			return nil, err
		}

		parts = append(parts, part)

		if term == p.d.Close {
			break
		}

		if len(parts) == maxParts {
			return nil, ErrTooManyParts.At(pos).With(slog.String("name", name))
		}
	}

	l := &Loop{name: name, pos: start, main: parts[0]}

	for i, dst := range []**Container{&l.separator, &l.leadIn, &l.leadOut} {
		if i+1 < len(parts) {
			*dst = parts[i+1]
		}
	}

	return l, nil
}

// escape consumes an escape rune and the rune following it, writing the
// result to sb. A special rune is written alone; any other rune is written
// after the escape rune. An escape at end of input is written literally.
func (p *parser) escape(sb *strings.Builder) {
	p.advance()

	if p.eof() {
		sb.WriteRune(p.d.Escape)

		return
	}

	r := p.peek()

	switch r {
	case p.d.Open, p.d.Separator, p.d.Close, p.d.Escape:
	default:
		sb.WriteRune(p.d.Escape)
	}

	p.take(sb)
}

// take writes the current rune to sb as it appears in the input and
// advances. Bytes that are not valid UTF-8 are copied unchanged.
func (p *parser) take(sb *strings.Builder) {
	_, size := utf8.DecodeRune(p.input[p.pos:])
	sb.Write(p.input[p.pos : p.pos+size])
	p.advance()
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}
