package hxprops

import (
	"errors"

	"github.com/pthm/hxprops/lib/attrs"
	"github.com/pthm/hxprops/lib/coerce"
	"github.com/pthm/hxprops/lib/encoding"
	"github.com/pthm/hxprops/lib/paramspec"
	"github.com/pthm/hxprops/lib/slots"
)

// Sentinel errors for props resolution.
//
// Errors returned by the Engine and Registry match one or more of these with
// errors.Is while still exposing the structured error underneath to
// errors.As (*SyntaxError, *ValidationError, FieldError,
// *slots.UnterminatedError).
var (
	ErrParamSyntax      = errors.New("hxprops: invalid parameter declaration")
	ErrMissingRequired  = errors.New("hxprops: missing required parameter")
	ErrTypeCoercion     = errors.New("hxprops: type coercion failed")
	ErrValidatorFailure = errors.New("hxprops: validator failed")
	ErrEnumRejected     = errors.New("hxprops: enum value rejected")
	ErrCrossCheck       = errors.New("hxprops: cross-field check failed")
	ErrUnterminatedSlot = errors.New("hxprops: unterminated slot block")
	ErrUnknownAttribute = errors.New("hxprops: unknown attribute")
	ErrUnknownComponent = errors.New("hxprops: unknown component")
	ErrInvalidToken     = errors.New("hxprops: invalid token")
)

// Structured error types from the lower layers.
type (
	SyntaxError     = paramspec.SyntaxError
	FieldError      = coerce.FieldError
	ValidationError = coerce.ValidationError
)

var kindSentinels = map[coerce.ErrorKind]error{
	coerce.KindMissing:   ErrMissingRequired,
	coerce.KindType:      ErrTypeCoercion,
	coerce.KindValidator: ErrValidatorFailure,
	coerce.KindEnum:      ErrEnumRejected,
	coerce.KindCheck:     ErrCrossCheck,
}

// IsSyntaxError checks if err comes from a malformed declaration or an
// unterminated slot block. These mean the template itself is unusable.
func IsSyntaxError(err error) bool {
	return errors.Is(err, ErrParamSyntax) || errors.Is(err, ErrUnterminatedSlot)
}

// IsValidationError checks if err reports bad values at a call site.
func IsValidationError(err error) bool {
	for _, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// IsNotFound checks if err names a component or attribute that does not
// exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownComponent) || errors.Is(err, ErrUnknownAttribute)
}

// IsTokenError checks if err is a re-render token that failed to open.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

// FieldErrors returns every field-scoped error carried by err, or nil.
//
//	if errs := hxprops.FieldErrors(err); errs != nil {
//	    for _, fe := range errs {
//	        log.Printf("%s: %s (did you mean %q?)", fe.Field, fe.Message, fe.Suggestion)
//	    }
//	}
func FieldErrors(err error) []FieldError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Errors
	}
	return nil
}

// tagged carries a structured error plus the sentinels it matches.
type tagged struct {
	err       error
	sentinels []error
}

func (t *tagged) Error() string { return t.err.Error() }

func (t *tagged) Unwrap() []error {
	return append(append([]error(nil), t.sentinels...), t.err)
}

// wrapError tags lower-layer errors with the matching root sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var sentinels []error

	var se *paramspec.SyntaxError
	if errors.As(err, &se) {
		sentinels = append(sentinels, ErrParamSyntax)
	}
	var ve *coerce.ValidationError
	if errors.As(err, &ve) {
		seen := make(map[error]bool)
		for _, fe := range ve.Errors {
			s := kindSentinels[fe.Kind]
			if s != nil && !seen[s] {
				seen[s] = true
				sentinels = append(sentinels, s)
			}
		}
	}
	if errors.Is(err, slots.ErrUnterminated) {
		sentinels = append(sentinels, ErrUnterminatedSlot)
	}
	if errors.Is(err, attrs.ErrUnknownAttribute) {
		sentinels = append(sentinels, ErrUnknownAttribute)
	}
	if errors.Is(err, encoding.ErrInvalidToken) {
		sentinels = append(sentinels, ErrInvalidToken)
	}

	if len(sentinels) == 0 {
		return err
	}
	return &tagged{err: err, sentinels: sentinels}
}
