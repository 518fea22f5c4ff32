package paramspec

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	intLiteral   = regexp.MustCompile(`^[+-]?\d+$`)
	floatLiteral = regexp.MustCompile(`^[+-]?(\d+\.\d*|\.\d+|\d+)([eE][+-]?\d+)?$`)
)

// enumUnsafe are the characters that make a comma-bearing default a
// malformed literal instead of a bare enum.
const enumUnsafe = `()[]{}"'`

// isBareEnum reports whether raw is an enum shorthand such as
// "primary,secondary".
func isBareEnum(raw string) bool {
	return strings.Contains(raw, ",") &&
		!strings.ContainsAny(raw, " \t\n") &&
		!strings.ContainsAny(raw, enumUnsafe)
}

// parseLiteral parses a quoted string, number, boolean, none or bracketed
// list.
func parseLiteral(raw string) (any, error) {
	if raw == "" {
		return nil, errors.New("empty value")
	}

	switch raw {
	case "true", "True":
		return true, nil
	case "false", "False":
		return false, nil
	case "none", "None", "null":
		return nil, nil
	}

	if q := raw[0]; q == '"' || q == '\'' {
		return unquote(raw)
	}

	if strings.HasPrefix(raw, "[") {
		if !strings.HasSuffix(raw, "]") {
			return nil, fmt.Errorf("unterminated list %s", raw)
		}
		return parseList(raw[1 : len(raw)-1])
	}

	if intLiteral.MatchString(raw) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
	if floatLiteral.MatchString(raw) {
		return strconv.ParseFloat(raw, 64)
	}

	return nil, fmt.Errorf("cannot parse %s as a value", raw)
}

func parseList(body string) (any, error) {
	items := []any{}
	if strings.TrimSpace(body) == "" {
		return items, nil
	}
	for _, part := range splitTopLevel(body, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := parseLiteral(part)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

func unquote(raw string) (string, error) {
	q := raw[0]
	if len(raw) < 2 || raw[len(raw)-1] != q {
		return "", fmt.Errorf("unterminated string %s", raw)
	}
	body := raw[1 : len(raw)-1]

	var b strings.Builder
	escape := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		if escape {
			switch c {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(c)
			}
			escape = false
			continue
		}
		if c == '\\' {
			escape = true
			continue
		}
		if c == q {
			return "", fmt.Errorf("unexpected quote in %s", raw)
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}
