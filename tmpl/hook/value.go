package hook

import (
	"fmt"
	"io"
	"time"

	"github.com/ardnew/sout/tmpl"
)

// Time returns a [tmpl.ValueHook] that writes time.Time and non-nil
// *time.Time values formatted with layout.
func Time(layout string) tmpl.ValueHook {
	return tmpl.ValueFunc(func(w io.Writer, value any, _ tmpl.Leaf) (bool, error) {
		var t time.Time

		switch v := value.(type) {
		case time.Time:
			t = v
		case *time.Time:
			if v == nil {
				return false, nil
			}

			t = *v
		default:
			return false, nil
		}

		_, err := io.WriteString(w, t.Format(layout))

		return true, err
	})
}

// Stringer writes values implementing [fmt.Stringer] with their String
// method. Nil pointers are left to the default rendering.
var Stringer tmpl.ValueHook = tmpl.ValueFunc(
	func(w io.Writer, value any, _ tmpl.Leaf) (bool, error) {
		s, ok := value.(fmt.Stringer)
		if !ok || isNil(value) {
			return false, nil
		}

		_, err := io.WriteString(w, s.String())

		return true, err
	},
)
