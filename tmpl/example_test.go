package tmpl_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ardnew/sout/tmpl"
)

func Example() {
	t, err := tmpl.Compile(context.Background(), "Hello {}")
	if err != nil {
		fmt.Println(err)

		return
	}

	_ = t.Render(context.Background(), os.Stdout, "Piet")
	// Output: Hello Piet
}

func Example_loop() {
	type item struct {
		Name  string
		Price string `sout:"cost"`
	}

	t := tmpl.MustCompile("{items|{name} {cost}|, |Items: |.}")

	_ = t.Render(context.Background(), os.Stdout, map[string]any{
		"items": []item{{"tea", "2.50"}, {"cake", "4.00"}},
	})
	// Output: Items: tea 2.50, cake 4.00.
}

func Example_valueHook() {
	date := tmpl.ValueFunc(func(w io.Writer, v any, _ tmpl.Leaf) (bool, error) {
		d, ok := v.(time.Time)
		if !ok {
			return false, nil
		}

		_, err := io.WriteString(w, d.Format(time.DateOnly))

		return true, err
	})

	t := tmpl.MustCompile("{title} on {when}", tmpl.WithValueHook(date))

	_ = t.Render(context.Background(), os.Stdout, map[string]any{
		"title": "Release",
		"when":  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	// Output: Release on 2024-05-01
}

func Example_errors() {
	_, err := tmpl.Compile(context.Background(), "{items|a|b|c|d|e}")
	fmt.Println(err)

	t := tmpl.MustCompile("Dear {nme},")

	var sb strings.Builder

	err = t.Render(context.Background(), &sb, map[string]string{"name": "Piet"})
	fmt.Printf("%q\n%v\n", sb.String(), err)
	// Output:
	// 1:15 too many loop parts
	// "Dear "
	// 1:6 name not found: "nme" (did you mean name?)
}

func ExampleTemplate_String() {
	d := tmpl.Delimiters{Open: '<', Separator: ',', Close: '>', Escape: '~'}

	t := tmpl.MustCompile("<xs,<>,; > ~<tag~>", tmpl.WithDelimiters(d))
	fmt.Println(t)
	// Output: <xs,<>,; > ~<tag~>
}
