package blockifier

import (
	"fmt"

	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/core/felt"
)

type BlockInfo struct {
	Number           uint64
	Timestamp        uint64
	SequencerAddress *felt.Felt
	GasPrices        GasPrices
	// Starknet protocol version, e.g. "0.13.2"
	ProtocolVersion string
}

type FeeTokenAddresses struct {
	ETH  *felt.Felt `mapstructure:"eth-fee-token" validate:"required"`
	STRK *felt.Felt `mapstructure:"strk-fee-token" validate:"required"`
}

type ChainInfo struct {
	ChainID           string            `mapstructure:"chain-id" validate:"required"`
	FeeTokenAddresses FeeTokenAddresses `mapstructure:",squash"`
}

// FeeTokenAddress returns the token contract fees of type feeType are paid to
func (c *ChainInfo) FeeTokenAddress(feeType core.FeeType) *felt.Felt {
	if feeType == core.FeeTypeSTRK {
		return c.FeeTokenAddresses.STRK
	}
	return c.FeeTokenAddresses.ETH
}

// BlockContext is everything about the block being built that execution depends on.
// It does not change for the lifetime of an executor.
type BlockContext struct {
	BlockInfo          BlockInfo
	ChainInfo          ChainInfo
	VersionedConstants VersionedConstants
}

// NewBlockContext picks the versioned constants matching the block's protocol version.
// A non-zero maxRecursionDepth overrides the versioned one.
func NewBlockContext(blockInfo BlockInfo, chainInfo ChainInfo, maxRecursionDepth uint64) (*BlockContext, error) {
	version, err := core.ParseBlockVersion(blockInfo.ProtocolVersion)
	if err != nil {
		return nil, fmt.Errorf("parse protocol version %q: %w", blockInfo.ProtocolVersion, err)
	}

	constants := VersionedConstantsFor(version)
	if maxRecursionDepth != 0 {
		constants.MaxRecursionDepth = maxRecursionDepth
	}
	return &BlockContext{
		BlockInfo:          blockInfo,
		ChainInfo:          chainInfo,
		VersionedConstants: constants,
	}, nil
}
