// Package nodeerr defines the failure taxonomy of node delegation operations.
//
// Every failure that a caller of the node operations may need to branch on is
// an *Error carrying a stable Kind. Message is the human readable reason that is
// surfaced verbatim to the submitter of the transaction.
package nodeerr

import "errors"

type Kind string

const (
	KindUnauthorized             Kind = "UNAUTHORIZED"
	KindMissingOperatorSignature Kind = "MISSING_OPERATOR_SIGNATURE"
	KindForbidden                Kind = "FORBIDDEN"
	KindAgreementMismatch        Kind = "AGREEMENT_MISMATCH"
	KindNotFound                 Kind = "NOT_FOUND"
	KindValidation               Kind = "VALIDATION"
)

// Reason names which field of an operator proposal disagreed with the
// activation request. It is only set for KindAgreementMismatch.
type Reason string

const (
	ReasonToken     Reason = "token"
	ReasonNodeKey   Reason = "nodeKey"
	ReasonAgreement Reason = "agreement"
)

type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, cause error) error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func Unauthorized(msg string) error {
	return New(KindUnauthorized, msg)
}

func NotFound(msg string) error {
	return New(KindNotFound, msg)
}

func Validation(msg string) error {
	return New(KindValidation, msg)
}

func Mismatch(reason Reason, msg string) error {
	return &Error{Kind: KindAgreementMismatch, Reason: reason, Message: msg}
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// MismatchReason returns the reason of an agreement mismatch, or "" when err
// is not one.
func MismatchReason(err error) Reason {
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindAgreementMismatch {
		return ""
	}
	return e.Reason
}

// ErrorCode maps kinds to JSON-RPC application error codes.
func (e *Error) ErrorCode() int {
	switch e.Kind {
	case KindUnauthorized:
		return -32001
	case KindMissingOperatorSignature:
		return -32002
	case KindForbidden:
		return -32003
	case KindAgreementMismatch:
		return -32004
	case KindNotFound:
		return -32005
	default:
		return -32006
	}
}

// ErrorData is sent as the data member of a JSON-RPC error.
func (e *Error) ErrorData() interface{} {
	data := map[string]string{"kind": string(e.Kind)}
	if e.Reason != "" {
		data["reason"] = string(e.Reason)
	}
	return data
}
