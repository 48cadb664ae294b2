// Package tmpl implements a minimal text-templating engine.
//
// A template is literal text with delimited blocks. With the default
// delimiters ({, |, }, and \), a block is either a name reference
//
//	Hello {user.name}!
//
// or a loop over a collection with up to four parts: main, separator,
// leadIn, and leadOut:
//
//	{items|{name} {price}|, |Items: |.}
//
// Main is rendered against each element, separator between consecutive
// elements, and leadIn and leadOut against the enclosing model before the
// first and after the last element. A loop over an empty collection renders
// nothing at all. The escape rune makes the following special rune literal,
// so \{ renders as {.
//
// # Compiling and Rendering
//
//	t, err := tmpl.Compile(ctx, "Hello {}")
//	if err != nil {
//		return err
//	}
//
//	err = t.Render(ctx, os.Stdout, "Piet") // Hello Piet
//
// A compiled [Template] is immutable and may be rendered concurrently.
//
// # Name Resolution
//
// Names are resolved by [Resolve]: the empty name is the model itself, and a
// dotted name walks maps with string keys, exported struct fields (honoring
// the "sout" struct tag), and niladic methods. Models implementing [Fields]
// resolve names themselves.
//
// # Iteration
//
// Loops iterate with [Iterate]: slices, arrays, channels, iter.Seq and
// iter.Seq2 functions, types with an All method, and existing [Cursor]
// values. Maps and strings are not iterable by default.
//
// # Hooks
//
// Three optional hooks override the default behavior, each tried first:
//
//   - [NameHook] may render a name reference itself, e.g. to forward to a
//     nested template.
//   - [ValueHook] may write a resolved value itself, e.g. to format dates.
//   - [IterHook] may supply the [Cursor] for a loop, e.g. to iterate maps.
//
// Package hook provides ready-made implementations.
//
// # Errors
//
// All errors are [*Error] values derived from the sentinel variables of this
// package, with the source position of the failing node. Their text has the
// form "line:column message".
package tmpl
