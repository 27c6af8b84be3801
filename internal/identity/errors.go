package identity

import (
	"fmt"
	"strings"
)

// Kind is the closed set of identity failure classes. Provider error codes
// are mapped into it exactly once, at this boundary; everything else in the
// system consumes the tagged value instead of matching code strings.
type Kind int

const (
	KindUnknown Kind = iota
	KindEmailInUse
	KindWeakCredential
	KindInvalidFormat
	KindWrongCredential
	KindNotFound
	KindCodeExpired
	KindCodeInvalid
	KindUnavailable
)

type Error struct {
	Kind Kind
	// Code is the raw provider error code, kept for logs only.
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity: %s (%s)", e.Message(), e.Code)
	}
	return fmt.Sprintf("identity: %s", e.Message())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the user-facing text for each kind. Identity failures never
// force a crash; they surface as these messages.
func (e *Error) Message() string {
	switch e.Kind {
	case KindEmailInUse:
		return "This email is already in use. Please use a different one."
	case KindWeakCredential:
		return "The password is too weak. Please use a stronger password."
	case KindInvalidFormat:
		return "The email address or phone number is not valid."
	case KindWrongCredential:
		return "Invalid email or password."
	case KindNotFound:
		return "No account found with those details."
	case KindCodeExpired:
		return "The verification code has expired. Please request a new one."
	case KindCodeInvalid:
		return "The verification code is invalid."
	case KindUnavailable:
		return "The sign-in service is unavailable. Please try again."
	default:
		return "Sign-in failed. Please try again."
	}
}

// classify maps a provider error code to its kind. Codes occasionally carry
// a detail suffix ("WEAK_PASSWORD : Password should be ..."), so matching is
// on the leading token.
func classify(code string, err error) *Error {
	token := code
	if i := strings.IndexAny(code, " :"); i > 0 {
		token = code[:i]
	}

	var kind Kind
	switch token {
	case "EMAIL_EXISTS":
		kind = KindEmailInUse
	case "WEAK_PASSWORD":
		kind = KindWeakCredential
	case "INVALID_EMAIL", "INVALID_PHONE_NUMBER", "MISSING_PASSWORD", "CAPTCHA_CHECK_FAILED":
		kind = KindInvalidFormat
	case "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		kind = KindWrongCredential
	case "EMAIL_NOT_FOUND", "USER_NOT_FOUND":
		kind = KindNotFound
	case "SESSION_EXPIRED", "CODE_EXPIRED":
		kind = KindCodeExpired
	case "INVALID_CODE", "INVALID_SESSION_INFO":
		kind = KindCodeInvalid
	default:
		kind = KindUnknown
	}

	return &Error{Kind: kind, Code: code, Err: err}
}
