package blockifier_test

import (
	"testing"

	"github.com/NethermindEth/starknet-validator/blockifier"
	"github.com/NethermindEth/starknet-validator/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlockContextConstants(t *testing.T) {
	tests := map[string]struct {
		protocolVersion string
		invokeMaxSteps  uint32
		minimalInvoke   blockifier.GasAmount
	}{
		"pre 0.13.1": {protocolVersion: "0.13.0", invokeMaxSteps: 3_000_000, minimalInvoke: 1_224},
		"0.13.1.1":   {protocolVersion: "0.13.1.1", invokeMaxSteps: 4_000_000, minimalInvoke: 612},
		"latest":     {protocolVersion: "0.13.3", invokeMaxSteps: 10_000_000, minimalInvoke: 612},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			blockCtx, err := blockifier.NewBlockContext(blockifier.BlockInfo{ProtocolVersion: test.protocolVersion},
				blockifier.ChainInfo{}, 0)
			require.NoError(t, err)

			constants := blockCtx.VersionedConstants
			assert.Equal(t, test.invokeMaxSteps, constants.InvokeTxMaxNSteps)
			assert.Equal(t, test.minimalInvoke, constants.MinimalL1GasFor(core.TxnInvoke))
			assert.Equal(t, uint64(50), constants.MaxRecursionDepth)
			assert.Equal(t, uint64(10_000_000_000), constants.DefaultInitialGas)
		})
	}

	t.Run("recursion depth override", func(t *testing.T) {
		blockCtx, err := blockifier.NewBlockContext(blockifier.BlockInfo{}, blockifier.ChainInfo{}, 7)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), blockCtx.VersionedConstants.MaxRecursionDepth)
	})

	t.Run("constants are not shared between contexts", func(t *testing.T) {
		first, err := blockifier.NewBlockContext(blockifier.BlockInfo{}, blockifier.ChainInfo{}, 0)
		require.NoError(t, err)
		first.VersionedConstants.MinimalL1Gas[core.TxnInvoke] = 1

		second, err := blockifier.NewBlockContext(blockifier.BlockInfo{}, blockifier.ChainInfo{}, 0)
		require.NoError(t, err)
		assert.Equal(t, blockifier.GasAmount(1_224), second.VersionedConstants.MinimalL1GasFor(core.TxnInvoke))
	})

	t.Run("invalid protocol version", func(t *testing.T) {
		_, err := blockifier.NewBlockContext(blockifier.BlockInfo{ProtocolVersion: "x.y"}, blockifier.ChainInfo{}, 0)
		require.Error(t, err)
	})
}
