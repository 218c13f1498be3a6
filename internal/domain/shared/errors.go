package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain failure so callers can react without string matching
type ErrorKind string

const (
	KindNotFound                ErrorKind = "NOT_FOUND"
	KindInsufficientFunds       ErrorKind = "INSUFFICIENT_FUNDS"
	KindAlreadySigned           ErrorKind = "ALREADY_SIGNED"
	KindAlreadyCompleted        ErrorKind = "ALREADY_COMPLETED"
	KindAlreadyPaid             ErrorKind = "ALREADY_PAID"
	KindPromoExpiredOrExhausted ErrorKind = "PROMO_EXPIRED_OR_EXHAUSTED"
	KindNothingToPay            ErrorKind = "NOTHING_TO_PAY"
	KindPermissionDenied        ErrorKind = "PERMISSION_DENIED"
	KindConflict                ErrorKind = "CONFLICT"
	KindUnavailable             ErrorKind = "UNAVAILABLE"
	KindValidation              ErrorKind = "VALIDATION"
	KindInvalidTransition       ErrorKind = "INVALID_TRANSITION"
	KindDuplicate               ErrorKind = "DUPLICATE"
)

// Error is the typed failure returned by the ledger and lifecycle components.
// Entity and ID are optional; an empty value matches anything in Is.
type Error struct {
	Kind    ErrorKind
	Entity  string
	ID      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Entity != "" {
		msg += ": " + e.Entity
		if e.ID != "" {
			msg += " " + e.ID
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements the errors.Is interface, matching on kind and on entity/id when the target sets them
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Entity != "" && t.Entity != e.Entity {
		return false
	}
	if t.ID != "" && t.ID != e.ID {
		return false
	}
	return true
}

// Sentinels for errors.Is checks against a whole kind
var (
	ErrNotFound                = &Error{Kind: KindNotFound}
	ErrInsufficientFunds       = &Error{Kind: KindInsufficientFunds}
	ErrAlreadySigned           = &Error{Kind: KindAlreadySigned}
	ErrAlreadyCompleted        = &Error{Kind: KindAlreadyCompleted}
	ErrAlreadyPaid             = &Error{Kind: KindAlreadyPaid}
	ErrPromoExpiredOrExhausted = &Error{Kind: KindPromoExpiredOrExhausted}
	ErrNothingToPay            = &Error{Kind: KindNothingToPay}
	ErrPermissionDenied        = &Error{Kind: KindPermissionDenied}
	ErrConflict                = &Error{Kind: KindConflict}
	ErrUnavailable             = &Error{Kind: KindUnavailable}
	ErrValidation              = &Error{Kind: KindValidation}
	ErrInvalidTransition       = &Error{Kind: KindInvalidTransition}
	ErrDuplicate               = &Error{Kind: KindDuplicate}
)

// KindOf returns the kind of the first *Error in the chain, or "" for foreign errors
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func NotFound(entity, id string) error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id}
}

func InsufficientFunds(entity, id string, balance, delta int64) error {
	return &Error{
		Kind:    KindInsufficientFunds,
		Entity:  entity,
		ID:      id,
		Message: fmt.Sprintf("balance %d cannot absorb %d", balance, delta),
	}
}

func AlreadySigned(entity, id string) error {
	return &Error{Kind: KindAlreadySigned, Entity: entity, ID: id}
}

func AlreadyCompleted(entity, id string) error {
	return &Error{Kind: KindAlreadyCompleted, Entity: entity, ID: id}
}

func AlreadyPaid(entity, id string) error {
	return &Error{Kind: KindAlreadyPaid, Entity: entity, ID: id}
}

func PromoExpiredOrExhausted(code string) error {
	return &Error{Kind: KindPromoExpiredOrExhausted, Entity: "promo_code", ID: code}
}

func NothingToPay(memberID string) error {
	return &Error{Kind: KindNothingToPay, Entity: "team_member", ID: memberID}
}

func PermissionDenied(role, operation string) error {
	return &Error{Kind: KindPermissionDenied, Message: fmt.Sprintf("role %q may not %s", role, operation)}
}

func Conflict(entity, id string, cause error) error {
	return &Error{Kind: KindConflict, Entity: entity, ID: id, Err: cause}
}

func Unavailable(reason string) error {
	return &Error{Kind: KindUnavailable, Message: reason}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(entity, id, from, to string) error {
	return &Error{
		Kind:    KindInvalidTransition,
		Entity:  entity,
		ID:      id,
		Message: fmt.Sprintf("cannot move from %s to %s", from, to),
	}
}

func Duplicate(entity, key string) error {
	return &Error{Kind: KindDuplicate, Entity: entity, ID: key}
}
