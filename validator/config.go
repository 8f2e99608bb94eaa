package validator

import (
	"reflect"
	"sync"

	"github.com/NethermindEth/starknet-validator/blockifier"
	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/go-playground/validator/v10"
)

// Config is immutable for the lifetime of a Validator.
type Config struct {
	// Overrides the versioned recursion depth when non-zero
	MaxRecursionDepth uint64 `mapstructure:"max-recursion-depth"`
	// Highest transaction nonce whose account validation may be skipped while the sender's
	// deploy-account transaction is pending
	MaxNonceForValidationSkip *felt.Felt           `mapstructure:"max-nonce-for-validation-skip" validate:"required"`
	ChainInfo                 blockifier.ChainInfo `mapstructure:",squash"`
}

var (
	once sync.Once
	v    *validator.Validate
)

// structValidator returns a singleton that can be used to validate configuration
func structValidator() *validator.Validate {
	once.Do(func() {
		v = validator.New()

		// Register these types to use their string representation for validation
		// purposes
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			switch f := field.Interface().(type) {
			case felt.Felt:
				return f.String()
			case *felt.Felt:
				return f.String()
			}
			panic("not a felt")
		}, felt.Felt{}, &felt.Felt{})
	})
	return v
}

func (c *Config) Validate() error {
	return structValidator().Struct(c)
}
