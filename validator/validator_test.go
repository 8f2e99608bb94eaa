package validator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NethermindEth/starknet-validator/blockifier"
	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/NethermindEth/starknet-validator/core/state"
	"github.com/NethermindEth/starknet-validator/db/memory"
	"github.com/NethermindEth/starknet-validator/mocks"
	"github.com/NethermindEth/starknet-validator/utils"
	"github.com/NethermindEth/starknet-validator/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	chainInfo = blockifier.ChainInfo{
		ChainID: "SN_SEPOLIA",
		FeeTokenAddresses: blockifier.FeeTokenAddresses{
			ETH:  felt.NewUnsafeFromString("0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"),
			STRK: felt.NewUnsafeFromString("0x4718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d"),
		},
	}
	blockInfo = blockifier.BlockInfo{
		Number:          10,
		Timestamp:       1_700_000_000,
		ProtocolVersion: "0.13.2",
		GasPrices: blockifier.GasPrices{
			L1GasPrice: blockifier.GasPrice{
				PriceInWei: new(felt.Felt).SetUint64(10),
				PriceInFri: new(felt.Felt).SetUint64(20),
			},
		},
	}
	sender    = felt.NewUnsafeFromString("0xacc0")
	classHash = felt.NewUnsafeFromString("0xc1a55")
	hint      = felt.NewUnsafeFromString("0xdead")
)

// newReader returns state where sender has the given nonce and a STRK balance of strk
func newReader(t *testing.T, nonce, strk uint64) state.Reader {
	t.Helper()

	testDB := memory.New()
	w := state.NewWriter(testDB)
	require.NoError(t, w.SetNonce(sender, new(felt.Felt).SetUint64(nonce)))
	low, _ := blockifier.BalanceKeys(sender)
	require.NoError(t, w.SetStorage(chainInfo.FeeTokenAddresses.STRK, low, new(felt.Felt).SetUint64(strk)))
	return state.NewSnapshotReader(testDB)
}

func invoke(nonce uint64) *core.InvokeV1 {
	return &core.InvokeV1{
		TransactionHash: new(felt.Felt).SetUint64(100 + nonce),
		SenderAddress:   sender,
		AccountParams:   core.AccountParams{Nonce: new(felt.Felt).SetUint64(nonce)},
	}
}

func invokeV3(nonce, l1Amount uint64) *core.InvokeV3 {
	return &core.InvokeV3{
		TransactionHash: new(felt.Felt).SetUint64(300 + nonce),
		SenderAddress:   sender,
		TransactionParamsV3: core.TransactionParamsV3{
			Nonce: new(felt.Felt).SetUint64(nonce),
			ResourceBounds: map[core.Resource]core.ResourceBounds{
				core.ResourceL1Gas: {MaxAmount: l1Amount, MaxPricePerUnit: new(felt.Felt).SetUint64(20)},
			},
		},
	}
}

func deployAccount() *core.DeployAccountV1 {
	return &core.DeployAccountV1{
		TransactionHash: felt.NewUnsafeFromString("0xde9107"),
		ClassHash:       classHash,
		DeployedAddress: sender,
	}
}

func newValidator(t *testing.T) (*validator.Validator, *mocks.MockEngine) {
	t.Helper()

	engine := mocks.NewMockEngine(gomock.NewController(t))
	return validator.NewForTesting(chainInfo, engine, utils.NewNopZapLogger()), engine
}

func TestNew(t *testing.T) {
	log := utils.NewNopZapLogger()

	v, err := validator.New(validator.Config{
		MaxRecursionDepth:         20,
		MaxNonceForValidationSkip: new(felt.Felt).SetUint64(3),
		ChainInfo:                 chainInfo,
	}, nil, log)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), v.Config().MaxRecursionDepth)

	_, err = validator.New(validator.Config{ChainInfo: chainInfo}, nil, log)
	require.Error(t, err, "max nonce for validation skip is required")

	_, err = validator.New(validator.Config{
		MaxNonceForValidationSkip: &felt.One,
		ChainInfo:                 blockifier.ChainInfo{ChainID: "SN_MAIN"},
	}, nil, log)
	require.Error(t, err, "fee token addresses are required")
}

func TestNewForTesting(t *testing.T) {
	v, _ := newValidator(t)
	assert.Equal(t, uint64(50), v.Config().MaxRecursionDepth)
	assert.Equal(t, &felt.One, v.Config().MaxNonceForValidationSkip)
}

func TestLifecycle(t *testing.T) {
	v, _ := newValidator(t)

	_, live := v.Height()
	assert.False(t, live)
	require.ErrorIs(t, v.PerformValidations(context.Background(), invoke(0), nil), validator.ErrLifecycleViolation)

	require.NoError(t, v.Setup(newReader(t, 0, 0), blockInfo))
	height, live := v.Height()
	assert.True(t, live)
	assert.Equal(t, blockInfo.Number, height)

	next := blockInfo
	next.Number++
	require.ErrorIs(t, v.Setup(newReader(t, 0, 0), next), validator.ErrLifecycleViolation)

	v.Teardown()
	require.ErrorIs(t, v.PerformValidations(context.Background(), invoke(0), nil), validator.ErrLifecycleViolation)

	// teardown and close are idempotent
	v.Teardown()
	v.Close()
	v.Close()

	require.NoError(t, v.Setup(newReader(t, 0, 0), next))
	v.Close()
	_, live = v.Height()
	assert.False(t, live)
}

func TestSetupInvalidProtocolVersion(t *testing.T) {
	v, _ := newValidator(t)

	bad := blockInfo
	bad.ProtocolVersion = "zero.thirteen"
	require.Error(t, v.Setup(newReader(t, 0, 0), bad))
	_, live := v.Height()
	assert.False(t, live)
}

func TestSkipValidation(t *testing.T) {
	zero, maxNonce := &felt.Zero, new(felt.Felt).SetUint64(3)
	nonce := func(n uint64) *felt.Felt { return new(felt.Felt).SetUint64(n) }

	assert.True(t, validator.SkipValidation(zero, nonce(1), maxNonce, true))
	assert.True(t, validator.SkipValidation(zero, nonce(3), maxNonce, true))
	assert.False(t, validator.SkipValidation(zero, nonce(4), maxNonce, true), "above threshold")
	assert.False(t, validator.SkipValidation(zero, nonce(1), maxNonce, false), "no pending deploy account")
	assert.False(t, validator.SkipValidation(zero, nonce(0), maxNonce, true), "the deploy account itself")
	assert.False(t, validator.SkipValidation(nonce(1), nonce(1), maxNonce, true), "account already deployed")
}

func TestDeployAccountIsExecuted(t *testing.T) {
	v, engine := newValidator(t)
	require.NoError(t, v.Setup(newReader(t, 0, 0), blockInfo))

	tx := deployAccount()
	wantFlags := blockifier.ExecutionFlags{ChargeFee: true, Validate: true, LimitStepsByResourceBounds: true}

	t.Run("success", func(t *testing.T) {
		// no Validate expectation, the account validation entry point is never called directly
		engine.EXPECT().Execute(gomock.Any(), tx, gomock.Any(), gomock.Any(), wantFlags).
			Return(&blockifier.ExecutionInfo{StateDiff: state.NewStateDiff()}, nil)
		require.NoError(t, v.PerformValidations(context.Background(), tx, nil))
	})

	t.Run("revert", func(t *testing.T) {
		engine.EXPECT().Execute(gomock.Any(), tx, gomock.Any(), gomock.Any(), wantFlags).
			Return(&blockifier.ExecutionInfo{RevertError: "constructor failed"}, nil)

		var programErr *blockifier.ValidationProgramError
		require.ErrorAs(t, v.PerformValidations(context.Background(), tx, nil), &programErr)
		assert.Equal(t, "constructor failed", programErr.Reason)
	})

	t.Run("engine failure", func(t *testing.T) {
		engineErr := errors.New("vm crashed")
		engine.EXPECT().Execute(gomock.Any(), tx, gomock.Any(), gomock.Any(), wantFlags).Return(nil, engineErr)
		require.ErrorIs(t, v.PerformValidations(context.Background(), tx, nil), engineErr)
	})
}

func TestPreValidationRunsWhenValidationIsSkipped(t *testing.T) {
	v, _ := newValidator(t)
	require.NoError(t, v.Setup(newReader(t, 0, 0), blockInfo))

	var skipped []bool
	v.WithListener(&validator.SelectiveListener{
		OnValidationCb: func(_ core.TransactionType, skip bool, _ error, _ time.Duration) {
			skipped = append(skipped, skip)
		},
	})

	// no engine expectations: validation must not reach the engine
	require.NoError(t, v.PerformValidations(context.Background(), invoke(1), hint))

	// the nonce was charged: 0 is now too old
	var nonceErr *blockifier.NonceError
	require.ErrorAs(t, v.PerformValidations(context.Background(), invoke(0), nil), &nonceErr)
	assert.Equal(t, &felt.One, nonceErr.AccountNonce)
	assert.Equal(t, []bool{true, false}, skipped)
}

func TestValidateCall(t *testing.T) {
	v, engine := newValidator(t)
	require.NoError(t, v.Setup(newReader(t, 0, 1_000_000), blockInfo))

	t.Run("nonce above skip threshold is validated", func(t *testing.T) {
		tx := invoke(2)
		engine.EXPECT().Validate(gomock.Any(), tx, gomock.Any(), gomock.Any(), uint64(10_000_000_000)).
			Return(&blockifier.ValidateInfo{CallInfo: &blockifier.CallInfo{}}, nil)
		require.NoError(t, v.PerformValidations(context.Background(), tx, hint))
	})

	t.Run("within bounds", func(t *testing.T) {
		tx := invokeV3(3, 1000)
		engine.EXPECT().Validate(gomock.Any(), tx, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&blockifier.ValidateInfo{
				CallInfo:   &blockifier.CallInfo{},
				ActualCost: blockifier.ActualCost{Gas: blockifier.GasVector{L1Gas: 1000}},
			}, nil)
		require.NoError(t, v.PerformValidations(context.Background(), tx, nil))
	})

	t.Run("post validation rejects overruns", func(t *testing.T) {
		tx := invokeV3(4, 1000)
		engine.EXPECT().Validate(gomock.Any(), tx, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&blockifier.ValidateInfo{
				CallInfo:   &blockifier.CallInfo{},
				ActualCost: blockifier.ActualCost{Gas: blockifier.GasVector{L1Gas: 1001}},
			}, nil)

		var boundsErr *blockifier.ResourceBoundsExceededError
		require.ErrorAs(t, v.PerformValidations(context.Background(), tx, nil), &boundsErr)
		assert.Equal(t, new(felt.Felt).SetUint64(1001), boundsErr.Actual)
	})

	t.Run("failed validate call", func(t *testing.T) {
		tx := invoke(5)
		engine.EXPECT().Validate(gomock.Any(), tx, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&blockifier.ValidateInfo{CallInfo: &blockifier.CallInfo{Failed: true}}, nil)
		require.ErrorAs(t, v.PerformValidations(context.Background(), tx, nil), new(*blockifier.ValidationProgramError))
	})

	t.Run("fee check failure stops before validation", func(t *testing.T) {
		// 100 L1 gas is below the minimal gas of an invoke
		require.ErrorAs(t, v.PerformValidations(context.Background(), invokeV3(6, 100), nil),
			new(*blockifier.FeeCheckError))
	})
}

func TestListener(t *testing.T) {
	v, _ := newValidator(t)

	var setups, teardowns []uint64
	var errs []error
	v.WithListener(&validator.SelectiveListener{
		OnSetupCb:    func(height uint64) { setups = append(setups, height) },
		OnTeardownCb: func(height uint64) { teardowns = append(teardowns, height) },
		OnValidationCb: func(txType core.TransactionType, _ bool, err error, _ time.Duration) {
			assert.Equal(t, core.TxnInvoke, txType)
			errs = append(errs, err)
		},
	})

	require.NoError(t, v.Setup(newReader(t, 5, 0), blockInfo))
	require.Error(t, v.PerformValidations(context.Background(), invoke(1), nil))
	v.Close()
	v.Close()

	assert.Equal(t, []uint64{blockInfo.Number}, setups)
	assert.Equal(t, []uint64{blockInfo.Number}, teardowns)
	require.Len(t, errs, 1)
	assert.ErrorAs(t, errs[0], new(*blockifier.NonceError))
}
