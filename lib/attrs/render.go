package attrs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// String renders the resolved attributes as markup, each preceded by a
// space: ` class="card active" disabled`. Bare true values render as the key
// alone; false and nil values are omitted. Nested groups are not rendered.
func (s *Set) String() string {
	var b strings.Builder
	for _, p := range s.ResolveAll() {
		switch v := p.Value.(type) {
		case nil:
			continue
		case bool:
			if v {
				b.WriteByte(' ')
				b.WriteString(p.Key)
			}
		default:
			b.WriteByte(' ')
			b.WriteString(p.Key)
			b.WriteString(`="`)
			b.WriteString(templ.EscapeString(stringify(v)))
			b.WriteByte('"')
		}
	}
	return b.String()
}

// Attributes converts the resolved entries into templ.Attributes for use
// with templ's attribute spreading ({ attrs... }).
func (s *Set) Attributes() templ.Attributes {
	out := make(templ.Attributes, len(s.keys))
	for _, p := range s.ResolveAll() {
		if p.Value == nil {
			continue
		}
		if b, ok := p.Value.(bool); ok {
			out[p.Key] = b
			continue
		}
		out[p.Key] = stringify(p.Value)
	}
	return out
}

// Component renders String() as a templ component.
func (s *Set) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s.String())
		return err
	})
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
