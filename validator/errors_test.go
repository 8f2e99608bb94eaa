package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/NethermindEth/starknet-validator/blockifier"
	"github.com/NethermindEth/starknet-validator/validator"
	"github.com/stretchr/testify/assert"
)

func TestToError(t *testing.T) {
	assert.Nil(t, validator.ToError(nil))

	tests := map[validator.ErrorKind]error{
		validator.ErrKindInternal:           errors.New("boom"),
		validator.ErrKindLifecycleViolation: fmt.Errorf("%w: twice", validator.ErrLifecycleViolation),
		validator.ErrKindStateRead:          &blockifier.StateReadError{Entry: "nonce", Err: errors.New("io")},
		validator.ErrKindNonce:              &blockifier.NonceError{},
		validator.ErrKindFeeCheck:           &blockifier.FeeCheckError{Kind: blockifier.MaxFeeTooLow},
		validator.ErrKindValidationProgram:  &blockifier.ValidationProgramError{Reason: "reverted"},
		validator.ErrKindInvalidTransaction: fmt.Errorf("%w: no sender", validator.ErrInvalidTransaction),
		validator.ErrKindResourceBoundsExceeded: fmt.Errorf("wrapped: %w",
			&blockifier.ResourceBoundsExceededError{Resource: "fee"}),
	}
	for kind, err := range tests {
		t.Run(kind.String(), func(t *testing.T) {
			wireErr := validator.ToError(err)
			assert.Equal(t, kind, wireErr.Kind)
			assert.Equal(t, err.Error(), wireErr.Message)
		})
	}

	wireErr := &validator.Error{Kind: validator.ErrKindFeeCheck, Message: "low"}
	assert.Same(t, wireErr, validator.ToError(fmt.Errorf("relayed: %w", wireErr)))
}

func TestErrorIs(t *testing.T) {
	lifecycle := &validator.Error{Kind: validator.ErrKindLifecycleViolation}
	assert.ErrorIs(t, lifecycle, validator.ErrLifecycleViolation)
	assert.NotErrorIs(t, &validator.Error{Kind: validator.ErrKindNonce}, validator.ErrLifecycleViolation)
	assert.ErrorIs(t, &validator.Error{Kind: validator.ErrKindInvalidTransaction}, validator.ErrInvalidTransaction)
}
