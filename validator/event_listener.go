package validator

import (
	"time"

	"github.com/NethermindEth/starknet-validator/core"
)

type EventListener interface {
	OnSetup(height uint64)
	OnTeardown(height uint64)
	// OnValidation is called once per PerformValidations call that reached a live height.
	OnValidation(txType core.TransactionType, skipped bool, err error, took time.Duration)
}

type SelectiveListener struct {
	OnSetupCb      func(height uint64)
	OnTeardownCb   func(height uint64)
	OnValidationCb func(txType core.TransactionType, skipped bool, err error, took time.Duration)
}

func (l *SelectiveListener) OnSetup(height uint64) {
	if l.OnSetupCb != nil {
		l.OnSetupCb(height)
	}
}

func (l *SelectiveListener) OnTeardown(height uint64) {
	if l.OnTeardownCb != nil {
		l.OnTeardownCb(height)
	}
}

func (l *SelectiveListener) OnValidation(txType core.TransactionType, skipped bool, err error, took time.Duration) {
	if l.OnValidationCb != nil {
		l.OnValidationCb(txType, skipped, err, took)
	}
}
