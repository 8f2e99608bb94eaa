package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/NethermindEth/starknet-validator/blockifier"
	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/NethermindEth/starknet-validator/core/state"
	"github.com/NethermindEth/starknet-validator/utils"
)

const testingMaxRecursionDepth = 50

// Validator decides whether transactions may enter block building. It validates against
// one block height at a time: Setup binds it to the state of a height, Teardown releases it.
//
// Validator is not safe for concurrent use, Server serialises access to it.
type Validator struct {
	cfg    Config
	engine blockifier.Engine
	// nil while no height is set up
	executor *blockifier.TransactionExecutor
	listener EventListener
	log      utils.SimpleLogger
}

func New(cfg Config, engine blockifier.Engine, log utils.SimpleLogger) (*Validator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid validator config: %w", err)
	}
	cfg.MaxNonceForValidationSkip = new(felt.Felt).Set(cfg.MaxNonceForValidationSkip)
	return &Validator{
		cfg:      cfg,
		engine:   engine,
		listener: &SelectiveListener{},
		log:      log,
	}, nil
}

// NewForTesting returns a Validator with a recursion depth of 50 that skips the account
// validation of a single transaction after a pending deploy-account transaction.
func NewForTesting(chainInfo blockifier.ChainInfo, engine blockifier.Engine, log utils.SimpleLogger) *Validator {
	return &Validator{
		cfg: Config{
			MaxRecursionDepth:         testingMaxRecursionDepth,
			MaxNonceForValidationSkip: new(felt.Felt).SetUint64(1),
			ChainInfo:                 chainInfo,
		},
		engine:   engine,
		listener: &SelectiveListener{},
		log:      log,
	}
}

func (v *Validator) WithListener(listener EventListener) *Validator {
	v.listener = listener
	return v
}

func (v *Validator) Config() Config {
	return v.cfg
}

// Setup binds the validator to the block described by blockInfo, reading state through
// reader. The reader is owned by the validator until Teardown.
func (v *Validator) Setup(reader state.Reader, blockInfo blockifier.BlockInfo) error {
	if v.executor != nil {
		return fmt.Errorf("%w: set up height %d while height %d is live", ErrLifecycleViolation,
			blockInfo.Number, v.executor.BlockContext().BlockInfo.Number)
	}

	blockCtx, err := blockifier.NewBlockContext(blockInfo, v.cfg.ChainInfo, v.cfg.MaxRecursionDepth)
	if err != nil {
		return err
	}
	v.executor = blockifier.NewTransactionExecutor(reader, blockCtx, v.engine, v.log)

	v.log.Debugw("Set up validation context", "height", blockInfo.Number)
	v.listener.OnSetup(blockInfo.Number)
	return nil
}

// Height returns the height being validated, if any
func (v *Validator) Height() (uint64, bool) {
	if v.executor == nil {
		return 0, false
	}
	return v.executor.BlockContext().BlockInfo.Number, true
}

// Teardown drops the live height along with every state change made while validating it.
// It is a no-op when no height is live.
func (v *Validator) Teardown() {
	if v.executor == nil {
		return
	}

	height := v.executor.BlockContext().BlockInfo.Number
	v.executor = nil
	v.log.Debugw("Tore down validation context", "height", height)
	v.listener.OnTeardown(height)
}

func (v *Validator) Close() {
	v.log.Debugw("Closing validator.")
	v.Teardown()
}

// PerformValidations runs the admission checks of tx against the live height. A non-nil
// deployAccountTxHash tells that a deploy-account transaction of the sender is pending.
//
// Checks may change the state of the live height even when they fail, the sender's nonce
// in particular is charged before account validation runs.
func (v *Validator) PerformValidations(ctx context.Context, tx core.AccountTransaction,
	deployAccountTxHash *felt.Felt,
) error {
	executor := v.executor
	if executor == nil {
		return fmt.Errorf("%w: validate transaction %s with no height set up", ErrLifecycleViolation, tx.Hash())
	}

	if tx.Hash() == nil || tx.ContractAddress() == nil {
		return fmt.Errorf("%w: transaction without a hash or sender", ErrInvalidTransaction)
	}

	start := time.Now()
	skipped, err := v.performValidations(ctx, executor, tx, deployAccountTxHash)
	v.listener.OnValidation(tx.Type(), skipped, err, time.Since(start))
	return err
}

func (v *Validator) performValidations(ctx context.Context, executor *blockifier.TransactionExecutor,
	tx core.AccountTransaction, deployAccountTxHash *felt.Felt,
) (bool, error) {
	txInfo := core.NewTxInfo(tx)
	if err := blockifier.CheckFeeRange(txInfo); err != nil {
		return false, err
	}

	// The constructor has to run before the account can validate anything, and executing a
	// deploy-account transaction validates it along the way.
	if tx.Type() == core.TxnDeployAccount {
		return false, executeDeployAccount(ctx, executor, tx)
	}

	// decided before pre-validation, which charges the nonce
	skip, err := v.skipValidation(executor, txInfo, deployAccountTxHash)
	if err != nil {
		return false, err
	}

	strictNonceCheck, chargeFee := false, true
	if err = executor.ChargeNonceAndCheckFee(txInfo, chargeFee, strictNonceCheck); err != nil {
		return false, err
	}
	if skip {
		v.log.Debugw("Skipped account validation of transaction following a pending deploy account",
			"hash", txInfo.TransactionHash, "sender", txInfo.SenderAddress, "nonce", txInfo.Nonce)
		return true, nil
	}

	initialGas := executor.BlockContext().VersionedConstants.DefaultInitialGas
	info, err := executor.Validate(ctx, tx, initialGas)
	if err != nil {
		return false, err
	}
	return false, blockifier.NewPostValidationReport(txInfo, &info.ActualCost).Verify()
}

func executeDeployAccount(ctx context.Context, executor *blockifier.TransactionExecutor,
	tx core.AccountTransaction,
) error {
	flags := blockifier.DefaultExecutionFlags()
	flags.LimitStepsByResourceBounds = true

	info, err := executor.Execute(ctx, tx, flags)
	if err != nil {
		return err
	}
	if info.Reverted() {
		return &blockifier.ValidationProgramError{TransactionHash: tx.Hash(), Reason: info.RevertError}
	}
	return nil
}

func (v *Validator) skipValidation(executor *blockifier.TransactionExecutor, txInfo *core.TxInfo,
	deployAccountTxHash *felt.Felt,
) (bool, error) {
	onchainNonce, err := executor.State().ContractNonce(txInfo.SenderAddress)
	if err != nil {
		return false, &blockifier.StateReadError{Entry: "nonce", Address: txInfo.SenderAddress, Err: err}
	}
	return SkipValidation(&onchainNonce, txInfo.Nonce, v.cfg.MaxNonceForValidationSkip, deployAccountTxHash != nil), nil
}

// SkipValidation reports whether the account validation of a transaction may be skipped
// because the deploy-account transaction of its sender is still pending. Validation would
// fail only because the account does not exist yet. At most the transactions with nonces
// 1 through maxNonce get this treatment.
func SkipValidation(onchainNonce, txNonce, maxNonce *felt.Felt, deployAccountPending bool) bool {
	deployAccountNotProcessed := deployAccountPending && onchainNonce.IsZero()
	isPostDeployNonce := txNonce.Cmp(&felt.One) >= 0
	nonceSmallEnough := txNonce.Cmp(maxNonce) <= 0

	return deployAccountNotProcessed && isPostDeployNonce && nonceSmallEnough
}
