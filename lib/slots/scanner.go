// Package slots splits the body of a component call into a default content
// run and named content runs.
//
// The scanner consumes tokens produced by a host parser. It tracks the
// nesting depth of component tags so that slots declared inside a nested
// component stay in the outer component's content as opaque markup.
package slots

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Kind classifies a Token.
type Kind int

const (
	Text      Kind = iota // anything that is not a component or slot tag
	Open                  // component open tag
	Close                 // component close tag
	SlotOpen              // named slot open tag
	SlotClose             // named slot close tag
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Open:
		return "open"
	case Close:
		return "close"
	case SlotOpen:
		return "slot-open"
	case SlotClose:
		return "slot-close"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is one markup chunk. Raw is the exact source text and is what ends
// up in captured runs; Name is the component or slot name for tag kinds.
type Token struct {
	Kind        Kind
	Name        string
	SelfClosing bool
	Raw         string
}

// Source yields tokens. Next returns io.EOF after the last token.
type Source interface {
	Next() (Token, error)
}

// SliceSource serves tokens from a slice.
type SliceSource struct {
	Tokens []Token
	pos    int
}

// Next implements Source.
func (s *SliceSource) Next() (Token, error) {
	if s.pos >= len(s.Tokens) {
		return Token{}, io.EOF
	}
	t := s.Tokens[s.pos]
	s.pos++
	return t, nil
}

// Run is a captured sequence of raw markup.
type Run struct {
	parts []string
}

func (r *Run) add(raw string) {
	r.parts = append(r.parts, raw)
}

// String concatenates the captured markup.
func (r Run) String() string {
	return strings.Join(r.parts, "")
}

// Empty reports whether the run holds only whitespace.
func (r Run) Empty() bool {
	return strings.TrimSpace(r.String()) == ""
}

// Component writes the captured markup unescaped.
func (r Run) Component() templ.Component {
	s := r.String()
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// Capture is the result of scanning one component body.
type Capture struct {
	Default Run
	Named   map[string]Run
	Order   []string // named slots in first-seen order
}

// Slot returns the named run, or the default run for the empty name.
func (c *Capture) Slot(name string) (Run, bool) {
	if name == "" {
		return c.Default, true
	}
	r, ok := c.Named[name]
	return r, ok
}

// ErrUnterminated is matched by every *UnterminatedError.
var ErrUnterminated = errors.New("slots: unterminated block")

// UnterminatedError reports a body that ended before its closing tag.
type UnterminatedError struct {
	Expected string // the component whose close tag was missing
	Slot     string // the open named slot, if any
}

func (e *UnterminatedError) Error() string {
	if e.Slot != "" {
		return fmt.Sprintf("slots: unterminated slot %q in %q", e.Slot, e.Expected)
	}
	return fmt.Sprintf("slots: unterminated block, expected close of %q", e.Expected)
}

func (e *UnterminatedError) Is(target error) bool {
	return target == ErrUnterminated
}

// Scanner scans component bodies. The zero value is ready to use.
type Scanner struct {
	// OnDuplicate is called when a named slot is declared again in the
	// same body. The later declaration replaces the earlier one.
	OnDuplicate func(name string)
}

// Scan scans with a zero Scanner.
func Scan(outer string, src Source) (*Capture, error) {
	return Scanner{}.Scan(outer, src)
}

// Scan reads src, which must start just after the open tag of the component
// called outer, up to and including that component's close tag.
func (s Scanner) Scan(outer string, src Source) (*Capture, error) {
	c := &Capture{Named: make(map[string]Run)}
	depth := 0
	slot := ""
	var named Run

	active := func() *Run {
		if slot != "" {
			return &named
		}
		return &c.Default
	}

	for {
		tok, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil, &UnterminatedError{Expected: outer, Slot: slot}
		}
		if err != nil {
			return nil, err
		}

		switch tok.Kind {
		case Open:
			if !tok.SelfClosing {
				depth++
			}
			active().add(tok.Raw)

		case Close:
			if depth == 0 && tok.Name == outer {
				if slot != "" {
					return nil, &UnterminatedError{Expected: outer, Slot: slot}
				}
				return c, nil
			}
			if depth > 0 {
				depth--
			}
			active().add(tok.Raw)

		case SlotOpen:
			if depth != 0 || slot != "" {
				active().add(tok.Raw)
				continue
			}
			if tok.SelfClosing {
				s.store(c, tok.Name, Run{})
				continue
			}
			slot = tok.Name
			named = Run{}

		case SlotClose:
			if depth == 0 && slot != "" && tok.Name == slot {
				s.store(c, slot, named)
				slot = ""
				continue
			}
			active().add(tok.Raw)

		default:
			active().add(tok.Raw)
		}
	}
}

func (s Scanner) store(c *Capture, name string, r Run) {
	if _, dup := c.Named[name]; dup {
		if s.OnDuplicate != nil {
			s.OnDuplicate(name)
		}
	} else {
		c.Order = append(c.Order, name)
	}
	c.Named[name] = r
}
