package paramspec

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validator is a named check attached to an Annotated type. Check receives
// the coerced value and returns nil when it is acceptable.
type Validator struct {
	Name   string
	Arg    any
	HasArg bool
	Check  func(v any) error
}

func (v Validator) String() string {
	if !v.HasArg {
		return v.Name
	}
	if s, ok := v.Arg.(string); ok {
		return fmt.Sprintf("%s=%q", v.Name, s)
	}
	return fmt.Sprintf("%s=%v", v.Name, v.Arg)
}

// ValidatorFactory builds a check from the literal argument written in the
// declaration. hasArg is false for bare validators such as "email".
type ValidatorFactory func(arg any, hasArg bool) (func(v any) error, error)

// BuiltinValidators returns the validators available in every declaration.
func BuiltinValidators() map[string]ValidatorFactory {
	return map[string]ValidatorFactory{
		"min":      boundValidator("min", func(c int) bool { return c >= 0 }, "must be at least"),
		"max":      boundValidator("max", func(c int) bool { return c <= 0 }, "must be at most"),
		"minlen":   lengthValidator("minlen", func(n, limit int) bool { return n >= limit }, "must have at least %d items"),
		"maxlen":   lengthValidator("maxlen", func(n, limit int) bool { return n <= limit }, "must have at most %d items"),
		"pattern":  patternValidator,
		"email":    bareValidator("email", checkEmail),
		"url":      bareValidator("url", checkURL),
		"nonempty": bareValidator("nonempty", checkNonEmpty),
	}
}

func boundValidator(name string, ok func(cmp int) bool, msg string) ValidatorFactory {
	return func(arg any, hasArg bool) (func(any) error, error) {
		if !hasArg {
			return nil, fmt.Errorf("%s requires a number", name)
		}
		limit, isNum := toDecimal(arg)
		if !isNum {
			return nil, fmt.Errorf("%s requires a number, got %v", name, arg)
		}
		return func(v any) error {
			d, isNum := toDecimal(v)
			if !isNum {
				return fmt.Errorf("%s applies to numbers", name)
			}
			if !ok(d.Cmp(limit)) {
				return fmt.Errorf("%s %s", msg, limit.String())
			}
			return nil
		}, nil
	}
}

func lengthValidator(name string, ok func(n, limit int) bool, msg string) ValidatorFactory {
	return func(arg any, hasArg bool) (func(any) error, error) {
		limit, isInt := arg.(int)
		if !hasArg || !isInt || limit < 0 {
			return nil, fmt.Errorf("%s requires a non-negative integer", name)
		}
		return func(v any) error {
			var n int
			switch x := v.(type) {
			case string:
				n = utf8.RuneCountInString(x)
			case []any:
				n = len(x)
			default:
				return fmt.Errorf("%s applies to strings and lists", name)
			}
			if !ok(n, limit) {
				return fmt.Errorf(msg, limit)
			}
			return nil
		}, nil
	}
}

func patternValidator(arg any, hasArg bool) (func(any) error, error) {
	expr, isStr := arg.(string)
	if !hasArg || !isStr {
		return nil, errors.New("pattern requires a quoted regular expression")
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return func(v any) error {
		s, ok := v.(string)
		if !ok {
			return errors.New("pattern applies to strings")
		}
		if !re.MatchString(s) {
			return fmt.Errorf("does not match pattern %q", expr)
		}
		return nil
	}, nil
}

func bareValidator(name string, check func(any) error) ValidatorFactory {
	return func(arg any, hasArg bool) (func(any) error, error) {
		if hasArg {
			return nil, fmt.Errorf("%s takes no argument", name)
		}
		return check, nil
	}
}

func checkEmail(v any) error {
	s, ok := v.(string)
	if !ok {
		return errors.New("email applies to strings")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return errors.New("enter a valid email address")
	}
	return nil
}

func checkURL(v any) error {
	s, ok := v.(string)
	if !ok {
		return errors.New("url applies to strings")
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("enter a valid URL")
	}
	return nil
}

func checkNonEmpty(v any) error {
	switch x := v.(type) {
	case string:
		if x == "" {
			return errors.New("must not be empty")
		}
	case []any:
		if len(x) == 0 {
			return errors.New("must not be empty")
		}
	case nil:
		return errors.New("must not be empty")
	}
	return nil
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case float64:
		return decimal.NewFromFloat(x), true
	case decimal.Decimal:
		return x, true
	default:
		return decimal.Decimal{}, false
	}
}
