package vm_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/NethermindEth/starknet-validator/blockifier"
	"github.com/NethermindEth/starknet-validator/component"
	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/NethermindEth/starknet-validator/core/state"
	"github.com/NethermindEth/starknet-validator/db/memory"
	"github.com/NethermindEth/starknet-validator/utils"
	"github.com/NethermindEth/starknet-validator/vm"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sender  = felt.NewUnsafeFromString("0xacc0")
	storage = felt.NewUnsafeFromString("0x5")
)

func newBlockContext(t *testing.T) *blockifier.BlockContext {
	t.Helper()

	blockCtx, err := blockifier.NewBlockContext(blockifier.BlockInfo{
		Number:          3,
		ProtocolVersion: "0.13.1",
		GasPrices: blockifier.GasPrices{
			L1GasPrice: blockifier.GasPrice{PriceInWei: &felt.One, PriceInFri: &felt.One},
		},
	}, blockifier.ChainInfo{ChainID: "SN_SEPOLIA"}, 0)
	require.NoError(t, err)
	return blockCtx
}

// fakeEngine bumps the nonce of the sender and reports a fixed cost
func fakeEngine(t *testing.T) component.Handler[vm.Request, vm.Response] {
	return component.HandlerFunc[vm.Request, vm.Response](func(_ context.Context, req vm.Request) vm.Response {
		tx, err := req.Transaction.Transaction()
		if err != nil {
			return vm.Response{Err: err.Error()}
		}

		assert.Equal(t, uint64(3), req.BlockInfo.Number)
		assert.Equal(t, "SN_SEPOLIA", req.ChainInfo.ChainID)
		assert.Equal(t, uint64(612), req.VersionedConstants.MinimalL1Gas[core.TxnInvoke])

		diff := state.NewStateDiff()
		nonce := new(felt.Felt).SetUint64(1)
		if pending, ok := req.PendingDiff.Nonces[*sender]; ok {
			nonce.Add(pending, &felt.One)
		}
		diff.Nonces[*sender] = nonce
		diff.StorageDiffs[*sender] = map[felt.Felt]*felt.Felt{*storage: tx.Hash()}

		cost := blockifier.ActualCost{
			Fee:     new(felt.Felt).SetUint64(77),
			FeeType: core.FeeTypeETH,
			Gas:     blockifier.GasVector{L1Gas: 100, L2Gas: 5},
			Resources: blockifier.ExecutionResources{
				Steps:    250,
				Builtins: map[string]uint64{"range_check": 4},
			},
		}
		switch req.Kind {
		case vm.Execute:
			if !req.Flags.LimitStepsByResourceBounds {
				return vm.Response{Err: "steps must be limited"}
			}
			return vm.Response{Execution: &blockifier.ExecutionInfo{ActualCost: cost, StateDiff: diff}}
		case vm.Validate:
			if req.RemainingGas == 0 {
				return vm.Response{}
			}
			return vm.Response{Validation: &blockifier.ValidateInfo{
				CallInfo:   &blockifier.CallInfo{ContractAddress: sender, GasConsumed: req.RemainingGas / 2},
				ActualCost: cost,
				StateDiff:  diff,
			}}
		default:
			return vm.Response{Err: "unknown request"}
		}
	})
}

func testEngine(t *testing.T, engine *vm.RemoteEngine) {
	t.Helper()
	ctx := context.Background()

	executor := blockifier.NewTransactionExecutor(state.NewSnapshotReader(memory.New()), newBlockContext(t), engine,
		utils.NewNopZapLogger())
	tx := &core.InvokeV1{
		TransactionHash: felt.NewUnsafeFromString("0x17"),
		SenderAddress:   sender,
		AccountParams:   core.AccountParams{Nonce: &felt.Zero, MaxFee: &felt.One},
	}

	info, err := executor.Validate(ctx, tx, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), info.CallInfo.GasConsumed)
	assert.Equal(t, new(felt.Felt).SetUint64(77), info.ActualCost.Fee)

	flags := blockifier.DefaultExecutionFlags()
	_, err = executor.Execute(ctx, tx, flags)
	require.NoError(t, err)

	// the second call saw the writes of the first
	nonce, err := executor.State().ContractNonce(sender)
	require.NoError(t, err)
	assert.Equal(t, *new(felt.Felt).SetUint64(2), nonce)

	value, err := executor.State().ContractStorage(sender, storage)
	require.NoError(t, err)
	assert.Equal(t, *tx.TransactionHash, value)

	usage := executor.Usage()
	assert.Equal(t, blockifier.GasVector{L1Gas: 200, L2Gas: 10}, usage.Gas)
	assert.Equal(t, uint64(8), usage.Resources.Builtins["range_check"])

	flags.LimitStepsByResourceBounds = false
	_, err = executor.Execute(ctx, tx, flags)
	var engineErr *vm.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, vm.Execute, engineErr.Kind)

	_, err = executor.Validate(ctx, tx, 0)
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, vm.Validate, engineErr.Kind)
}

func TestRemoteEngineLocal(t *testing.T) {
	client, server := component.NewLocalChannel(fakeEngine(t), 0)

	ctx, cancel := context.WithCancel(context.Background())
	var wg conc.WaitGroup
	wg.Go(func() {
		assert.NoError(t, server.Run(ctx))
	})
	defer wg.Wait()
	defer cancel()

	testEngine(t, vm.NewRemoteEngine(client, utils.NewNopZapLogger()))
}

func TestRemoteEngineOverHTTP(t *testing.T) {
	log := utils.NewNopZapLogger()
	srv := httptest.NewServer(component.NewRemoteServer(fakeEngine(t), log))
	defer srv.Close()

	testEngine(t, vm.NewRemoteEngine(component.NewRemoteClient[vm.Request, vm.Response](srv.URL, log), log))
}

func TestRemoteEngineTransportFailure(t *testing.T) {
	client, _ := component.NewLocalChannel(fakeEngine(t), 0)
	engine := vm.NewRemoteEngine(client, utils.NewNopZapLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Execute(ctx, &core.InvokeV1{SenderAddress: sender}, state.NewCachedState(nil),
		newBlockContext(t), blockifier.DefaultExecutionFlags())
	require.ErrorAs(t, err, new(*component.ClientError))
	require.ErrorIs(t, err, context.Canceled)
}
