package slots

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Syntax names the tag prefixes that mark component and slot tags.
type Syntax struct {
	ComponentPrefix string
	SlotPrefix      string
}

// DefaultSyntax matches <include:card> components and <content:footer>
// slots.
var DefaultSyntax = Syntax{ComponentPrefix: "include:", SlotPrefix: "content:"}

type htmlSource struct {
	z   *html.Tokenizer
	syn Syntax
}

// HTMLSource tokenizes markup from r. Tag names are matched case
// insensitively; Raw keeps the source text as written.
func HTMLSource(r io.Reader, syn Syntax) Source {
	return &htmlSource{z: html.NewTokenizer(r), syn: syn}
}

func (s *htmlSource) Next() (Token, error) {
	tt := s.z.Next()
	if tt == html.ErrorToken {
		return Token{}, s.z.Err()
	}
	raw := string(s.z.Raw())

	switch tt {
	case html.StartTagToken, html.SelfClosingTagToken:
		name, _ := s.z.TagName()
		tok := s.classify(string(name), false)
		tok.SelfClosing = tt == html.SelfClosingTagToken
		tok.Raw = raw
		return tok, nil
	case html.EndTagToken:
		name, _ := s.z.TagName()
		tok := s.classify(string(name), true)
		tok.Raw = raw
		return tok, nil
	default:
		return Token{Kind: Text, Raw: raw}, nil
	}
}

func (s *htmlSource) classify(tag string, closing bool) Token {
	if name, ok := cutPrefix(tag, s.syn.ComponentPrefix); ok {
		if closing {
			return Token{Kind: Close, Name: name}
		}
		return Token{Kind: Open, Name: name}
	}
	if name, ok := cutPrefix(tag, s.syn.SlotPrefix); ok {
		if closing {
			return Token{Kind: SlotClose, Name: name}
		}
		return Token{Kind: SlotOpen, Name: name}
	}
	return Token{Kind: Text}
}

func cutPrefix(tag, prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	return strings.CutPrefix(tag, prefix)
}

// ScanHTML scans body, the markup between the open and close tags of the
// component called outer.
func (s Scanner) ScanHTML(outer, body string, syn Syntax) (*Capture, error) {
	outer = strings.ToLower(outer)
	closeTag := "</" + syn.ComponentPrefix + outer + ">"
	return s.Scan(outer, HTMLSource(strings.NewReader(body+closeTag), syn))
}

// ScanHTML scans with a zero Scanner.
func ScanHTML(outer, body string, syn Syntax) (*Capture, error) {
	return Scanner{}.ScanHTML(outer, body, syn)
}
