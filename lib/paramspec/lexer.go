package paramspec

import (
	"fmt"
	"strings"
	"unicode"
)

// tokenize splits a declaration on whitespace that is outside quotes and
// brackets. Quotes are kept in the token so literals can tell "3" from 3.
// A trailing comma separates tokens rather than belonging to them.
func tokenize(decl string) ([]string, error) {
	var (
		tokens []string
		cur    strings.Builder
		quote  rune
		escape bool
		depth  int
	)

	flush := func() {
		tok := strings.TrimRight(cur.String(), ",")
		if tok != "" {
			tokens = append(tokens, tok)
		}
		cur.Reset()
	}

	for _, r := range decl {
		if quote != 0 {
			cur.WriteRune(r)
			switch {
			case escape:
				escape = false
			case r == '\\':
				escape = true
			case r == quote:
				quote = 0
			}
			continue
		}

		switch {
		case r == '"' || r == '\'':
			quote = r
			cur.WriteRune(r)
		case r == '[' || r == '(' || r == '{':
			depth++
			cur.WriteRune(r)
		case r == ']' || r == ')' || r == '}':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(r)
		case unicode.IsSpace(r) && depth == 0:
			flush()
		default:
			cur.WriteRune(r)
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote in %q", quote, cur.String())
	}
	flush()
	return tokens, nil
}

// splitTopLevel splits s on sep where sep is outside quotes and brackets.
func splitTopLevel(s string, sep rune) []string {
	var (
		parts  []string
		start  int
		depth  int
		quote  rune
		escape bool
	)
	for i, r := range s {
		if quote != 0 {
			switch {
			case escape:
				escape = false
			case r == '\\':
				escape = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch {
		case r == '"' || r == '\'':
			quote = r
		case r == '[' || r == '(' || r == '{':
			depth++
		case r == ']' || r == ')' || r == '}':
			depth--
		case r == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + len(string(sep))
		}
	}
	return append(parts, s[start:])
}

// splitAssignment splits "name:type=default" at the first "=" outside
// quotes and brackets.
func splitAssignment(tok string) (lhs, rhs string, hasDefault bool) {
	depth := 0
	var quote rune
	for i, r := range tok {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '[' || r == '(':
			depth++
		case r == ']' || r == ')':
			depth--
		case r == '=' && depth == 0:
			return tok[:i], tok[i+1:], true
		}
	}
	return tok, "", false
}
