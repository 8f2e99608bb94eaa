package validator

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/starknet-validator/blockifier"
)

// ErrLifecycleViolation is returned when Setup is called while a height is live, or when
// validations are requested while none is. It always points at a bug in the caller.
var ErrLifecycleViolation = errors.New("validator lifecycle violation")

// ErrInvalidTransaction is returned for transactions missing the fields every validation
// stage relies on.
var ErrInvalidTransaction = errors.New("invalid transaction")

// ErrorKind identifies a validation failure across the component boundary.
type ErrorKind uint8

const (
	ErrKindInternal ErrorKind = iota
	ErrKindLifecycleViolation
	ErrKindStateRead
	ErrKindNonce
	ErrKindFeeCheck
	ErrKindValidationProgram
	ErrKindResourceBoundsExceeded
	ErrKindInvalidTransaction
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindInternal:
		return "InternalError"
	case ErrKindLifecycleViolation:
		return "LifecycleViolation"
	case ErrKindStateRead:
		return "StateReadError"
	case ErrKindNonce:
		return "NonceMismatchError"
	case ErrKindFeeCheck:
		return "FeeCheckError"
	case ErrKindValidationProgram:
		return "ValidationProgramFailure"
	case ErrKindResourceBoundsExceeded:
		return "ResourceBoundsExceededError"
	case ErrKindInvalidTransaction:
		return "InvalidTransaction"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// Error is a validation failure as reported to remote callers.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets callers match lifecycle violations and invalid transactions reported over the
// wire with errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrLifecycleViolation:
		return e.Kind == ErrKindLifecycleViolation
	case ErrInvalidTransaction:
		return e.Kind == ErrKindInvalidTransaction
	default:
		return false
	}
}

// ToError classifies err. It returns nil for a nil err.
func ToError(err error) *Error {
	if err == nil {
		return nil
	}

	var wireErr *Error
	if errors.As(err, &wireErr) {
		return wireErr
	}
	return &Error{Kind: errorKind(err), Message: err.Error()}
}

func errorKind(err error) ErrorKind {
	var (
		stateErr   *blockifier.StateReadError
		nonceErr   *blockifier.NonceError
		feeErr     *blockifier.FeeCheckError
		programErr *blockifier.ValidationProgramError
		boundsErr  *blockifier.ResourceBoundsExceededError
	)
	switch {
	case errors.Is(err, ErrLifecycleViolation):
		return ErrKindLifecycleViolation
	case errors.Is(err, ErrInvalidTransaction):
		return ErrKindInvalidTransaction
	case errors.As(err, &stateErr):
		return ErrKindStateRead
	case errors.As(err, &nonceErr):
		return ErrKindNonce
	case errors.As(err, &feeErr):
		return ErrKindFeeCheck
	case errors.As(err, &programErr):
		return ErrKindValidationProgram
	case errors.As(err, &boundsErr):
		return ErrKindResourceBoundsExceeded
	default:
		return ErrKindInternal
	}
}
