package blockifier_test

import (
	"errors"
	"testing"

	"github.com/NethermindEth/starknet-validator/blockifier"
	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/NethermindEth/starknet-validator/core/state"
	"github.com/NethermindEth/starknet-validator/db/memory"
	"github.com/NethermindEth/starknet-validator/mocks"
	"github.com/NethermindEth/starknet-validator/utils"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	ethToken  = felt.NewUnsafeFromString("0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7")
	strkToken = felt.NewUnsafeFromString("0x4718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d")
	account   = felt.NewUnsafeFromString("0xacc0")
	txHash    = felt.NewUnsafeFromString("0x1234")
)

func newBlockContext(t *testing.T) *blockifier.BlockContext {
	t.Helper()

	blockCtx, err := blockifier.NewBlockContext(blockifier.BlockInfo{
		Number:          7,
		ProtocolVersion: "0.13.2",
		GasPrices: blockifier.GasPrices{
			L1GasPrice: blockifier.GasPrice{
				PriceInWei: new(felt.Felt).SetUint64(10),
				PriceInFri: new(felt.Felt).SetUint64(20),
			},
		},
	}, blockifier.ChainInfo{
		ChainID:           "SN_SEPOLIA",
		FeeTokenAddresses: blockifier.FeeTokenAddresses{ETH: ethToken, STRK: strkToken},
	}, 0)
	require.NoError(t, err)
	return blockCtx
}

type balances struct {
	eth, strk uint64
	ethHigh   uint64
}

func newExecutor(t *testing.T, nonce uint64, bal balances) *blockifier.TransactionExecutor {
	t.Helper()

	testDB := memory.New()
	w := state.NewWriter(testDB)
	require.NoError(t, w.SetNonce(account, new(felt.Felt).SetUint64(nonce)))

	low, high := blockifier.BalanceKeys(account)
	require.NoError(t, w.SetStorage(ethToken, low, new(felt.Felt).SetUint64(bal.eth)))
	require.NoError(t, w.SetStorage(ethToken, high, new(felt.Felt).SetUint64(bal.ethHigh)))
	require.NoError(t, w.SetStorage(strkToken, low, new(felt.Felt).SetUint64(bal.strk)))

	engine := mocks.NewMockEngine(gomock.NewController(t))
	return blockifier.NewTransactionExecutor(state.NewSnapshotReader(testDB), newBlockContext(t), engine,
		utils.NewNopZapLogger())
}

func invokeV1(nonce, maxFee uint64) *core.TxInfo {
	return core.NewTxInfo(&core.InvokeV1{
		TransactionHash: txHash,
		SenderAddress:   account,
		AccountParams: core.AccountParams{
			Nonce:  new(felt.Felt).SetUint64(nonce),
			MaxFee: new(felt.Felt).SetUint64(maxFee),
		},
	})
}

func invokeV3(nonce, l1Amount, l1Price uint64) *core.TxInfo {
	return core.NewTxInfo(&core.InvokeV3{
		TransactionHash: txHash,
		SenderAddress:   account,
		TransactionParamsV3: core.TransactionParamsV3{
			Nonce: new(felt.Felt).SetUint64(nonce),
			ResourceBounds: map[core.Resource]core.ResourceBounds{
				core.ResourceL1Gas: {MaxAmount: l1Amount, MaxPricePerUnit: new(felt.Felt).SetUint64(l1Price)},
				core.ResourceL2Gas: {MaxAmount: 0, MaxPricePerUnit: new(felt.Felt)},
			},
		},
	})
}

func accountNonce(t *testing.T, e *blockifier.TransactionExecutor) uint64 {
	t.Helper()

	nonce, err := e.State().ContractNonce(account)
	require.NoError(t, err)
	n, err := nonce.Uint64()
	require.NoError(t, err)
	return n
}

func TestChargeNonce(t *testing.T) {
	t.Run("non-strict accepts the current nonce", func(t *testing.T) {
		e := newExecutor(t, 2, balances{})
		require.NoError(t, e.ChargeNonceAndCheckFee(invokeV1(2, 0), true, false))
		assert.Equal(t, uint64(3), accountNonce(t, e))
	})

	t.Run("non-strict accepts a nonce ahead of the account", func(t *testing.T) {
		e := newExecutor(t, 2, balances{})
		require.NoError(t, e.ChargeNonceAndCheckFee(invokeV1(5, 0), true, false))
		assert.Equal(t, uint64(3), accountNonce(t, e))
	})

	t.Run("non-strict rejects an old nonce", func(t *testing.T) {
		e := newExecutor(t, 2, balances{})
		err := e.ChargeNonceAndCheckFee(invokeV1(1, 0), true, false)

		var nonceErr *blockifier.NonceError
		require.ErrorAs(t, err, &nonceErr)
		assert.False(t, nonceErr.Strict)
		assert.Equal(t, new(felt.Felt).SetUint64(2), nonceErr.AccountNonce)
		assert.Equal(t, uint64(2), accountNonce(t, e))
	})

	t.Run("strict requires equality", func(t *testing.T) {
		e := newExecutor(t, 2, balances{})
		var nonceErr *blockifier.NonceError
		require.ErrorAs(t, e.ChargeNonceAndCheckFee(invokeV1(3, 0), true, true), &nonceErr)
		assert.True(t, nonceErr.Strict)

		require.NoError(t, e.ChargeNonceAndCheckFee(invokeV1(2, 0), true, true))
	})

	t.Run("not idempotent", func(t *testing.T) {
		e := newExecutor(t, 2, balances{})
		info := invokeV1(2, 0)
		require.NoError(t, e.ChargeNonceAndCheckFee(info, true, true))
		require.ErrorAs(t, e.ChargeNonceAndCheckFee(info, true, true), new(*blockifier.NonceError))
	})

	t.Run("version 0 transactions are not nonce checked", func(t *testing.T) {
		e := newExecutor(t, 2, balances{})
		info := core.NewTxInfo(&core.InvokeV0{TransactionHash: txHash, TargetAddress: account})
		require.NoError(t, e.ChargeNonceAndCheckFee(info, true, true))
		assert.Equal(t, uint64(2), accountNonce(t, e))
	})
}

func TestCheckFee(t *testing.T) {
	// minimal L1 gas of an invoke is 612, L1 gas costs 10 wei or 20 fri
	tests := map[string]struct {
		info      *core.TxInfo
		balances  balances
		chargeFee bool
		wantKind  *blockifier.FeeCheckErrorKind
	}{
		"legacy max fee below minimal fee": {
			info:      invokeV1(0, 6119),
			balances:  balances{eth: 1_000_000},
			chargeFee: true,
			wantKind:  utils.HeapPtr(blockifier.MaxFeeTooLow),
		},
		"legacy max fee above balance": {
			info:      invokeV1(0, 10_000),
			balances:  balances{eth: 9_999},
			chargeFee: true,
			wantKind:  utils.HeapPtr(blockifier.MaxFeeExceedsBalance),
		},
		"legacy covered by balance": {
			info:      invokeV1(0, 10_000),
			balances:  balances{eth: 10_000},
			chargeFee: true,
		},
		"legacy covered by the high word": {
			info:      invokeV1(0, 10_000),
			balances:  balances{ethHigh: 1},
			chargeFee: true,
		},
		"fee not charged": {
			info:     invokeV1(0, 1),
			balances: balances{},
		},
		"legacy without a fee commitment": {
			info:      invokeV1(0, 0),
			chargeFee: true,
		},
		"v3 amount below minimal gas": {
			info:      invokeV3(0, 611, 20),
			balances:  balances{strk: 1_000_000},
			chargeFee: true,
			wantKind:  utils.HeapPtr(blockifier.MaxL1GasAmountTooLow),
		},
		"v3 price below block price": {
			info:      invokeV3(0, 1000, 19),
			balances:  balances{strk: 1_000_000},
			chargeFee: true,
			wantKind:  utils.HeapPtr(blockifier.MaxL1GasPriceTooLow),
		},
		"v3 bounds above balance": {
			info:      invokeV3(0, 1000, 20),
			balances:  balances{strk: 19_999, eth: 1_000_000},
			chargeFee: true,
			wantKind:  utils.HeapPtr(blockifier.ResourceBoundsExceedBalance),
		},
		"v3 covered by balance": {
			info:      invokeV3(0, 1000, 20),
			balances:  balances{strk: 20_000},
			chargeFee: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			e := newExecutor(t, 0, test.balances)
			err := e.ChargeNonceAndCheckFee(test.info, test.chargeFee, false)
			if test.wantKind == nil {
				require.NoError(t, err)
				return
			}

			var feeErr *blockifier.FeeCheckError
			require.ErrorAs(t, err, &feeErr)
			assert.Equal(t, *test.wantKind, feeErr.Kind)
			// the nonce stays charged
			assert.Equal(t, uint64(1), accountNonce(t, e))
		})
	}
}

func TestChargeNonceAndCheckFeeStateReadError(t *testing.T) {
	readErr := errors.New("disk on fire")
	reader := mocks.NewMockReader(gomock.NewController(t))
	reader.EXPECT().ContractNonce(account).Return(felt.Zero, readErr)

	e := blockifier.NewTransactionExecutor(reader, newBlockContext(t), nil, utils.NewNopZapLogger())
	err := e.ChargeNonceAndCheckFee(invokeV1(0, 0), true, false)

	var stateErr *blockifier.StateReadError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "nonce", stateErr.Entry)
	assert.ErrorIs(t, err, readErr)
}

func TestCheckFeeRange(t *testing.T) {
	// p - 1 and 2^128, neither is a valid fee amount or gas price
	pMinusOne := felt.NewUnsafeFromString("0x800000000000011000000000000000000000000000000000000000000000000")
	twoTo128 := felt.NewUnsafeFromString("0x100000000000000000000000000000000")

	v3 := func(bounds map[core.Resource]core.ResourceBounds) *core.TxInfo {
		return core.NewTxInfo(&core.InvokeV3{
			TransactionHash: txHash,
			SenderAddress:   account,
			TransactionParamsV3: core.TransactionParamsV3{
				Nonce:          new(felt.Felt),
				ResourceBounds: bounds,
			},
		})
	}
	legacy := func(maxFee *felt.Felt) *core.TxInfo {
		return core.NewTxInfo(&core.InvokeV1{
			TransactionHash: txHash,
			SenderAddress:   account,
			AccountParams:   core.AccountParams{Nonce: new(felt.Felt), MaxFee: maxFee},
		})
	}

	tests := map[string]struct {
		info     *core.TxInfo
		wantKind blockifier.FeeCheckErrorKind
	}{
		"v3 bounds summing to zero in the field": {
			info: v3(map[core.Resource]core.ResourceBounds{
				core.ResourceL1Gas: {MaxAmount: 1, MaxPricePerUnit: pMinusOne},
				core.ResourceL2Gas: {MaxAmount: 1, MaxPricePerUnit: &felt.One},
			}),
			wantKind: blockifier.MaxPricePerUnitOutOfRange,
		},
		"v3 l2 price above u128": {
			info: v3(map[core.Resource]core.ResourceBounds{
				core.ResourceL1Gas: {MaxAmount: 1000, MaxPricePerUnit: new(felt.Felt).SetUint64(20)},
				core.ResourceL2Gas: {MaxAmount: 1 << 63, MaxPricePerUnit: twoTo128},
			}),
			wantKind: blockifier.MaxPricePerUnitOutOfRange,
		},
		"legacy max fee above u128": {
			info:     legacy(twoTo128),
			wantKind: blockifier.MaxFeeOutOfRange,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			// the sender owns nothing, only the range check stands between it and admission
			e := newExecutor(t, 0, balances{})
			err := e.ChargeNonceAndCheckFee(test.info, true, false)

			var feeErr *blockifier.FeeCheckError
			require.ErrorAs(t, err, &feeErr)
			assert.Equal(t, test.wantKind, feeErr.Kind)
			assert.Equal(t, core.MaxU128, feeErr.Required)
			// rejected before the nonce is charged
			assert.Equal(t, uint64(0), accountNonce(t, e))
		})
	}

	t.Run("u128 maximum is in range", func(t *testing.T) {
		maxU128 := felt.NewUnsafeFromString("0xffffffffffffffffffffffffffffffff")
		require.NoError(t, blockifier.CheckFeeRange(legacy(maxU128)))
		require.NoError(t, blockifier.CheckFeeRange(v3(map[core.Resource]core.ResourceBounds{
			core.ResourceL1Gas: {MaxAmount: 1 << 63, MaxPricePerUnit: maxU128},
		})))
	})
}

func TestCheckFeeAgainstFullBalance(t *testing.T) {
	maxU128 := felt.NewUnsafeFromString("0xffffffffffffffffffffffffffffffff")
	legacy := core.NewTxInfo(&core.InvokeV1{
		TransactionHash: txHash,
		SenderAddress:   account,
		AccountParams:   core.AccountParams{Nonce: new(felt.Felt), MaxFee: maxU128},
	})

	t.Run("low word alone does not cover a u128 max fee", func(t *testing.T) {
		e := newExecutor(t, 0, balances{eth: 1_000_000})
		var feeErr *blockifier.FeeCheckError
		require.ErrorAs(t, e.ChargeNonceAndCheckFee(legacy, true, false), &feeErr)
		assert.Equal(t, blockifier.MaxFeeExceedsBalance, feeErr.Kind)
		assert.Equal(t, uint256.NewInt(1_000_000), feeErr.Required)
	})

	t.Run("high word counts as 2^128", func(t *testing.T) {
		e := newExecutor(t, 0, balances{ethHigh: 1})
		require.NoError(t, e.ChargeNonceAndCheckFee(legacy, true, false))
	})
}
