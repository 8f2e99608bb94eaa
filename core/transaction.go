package core

import (
	"errors"
	"fmt"

	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/holiman/uint256"
)

var ErrNotAccountTransaction = errors.New("not an account transaction")

type TransactionType uint8

const (
	TxnDeclare TransactionType = iota
	TxnDeploy
	TxnDeployAccount
	TxnInvoke
	TxnL1Handler
)

func (t TransactionType) String() string {
	switch t {
	case TxnDeclare:
		return "DECLARE"
	case TxnDeploy:
		return "DEPLOY"
	case TxnDeployAccount:
		return "DEPLOY_ACCOUNT"
	case TxnInvoke:
		return "INVOKE"
	case TxnL1Handler:
		return "L1_HANDLER"
	default:
		return fmt.Sprintf("TransactionType(%d)", uint8(t))
	}
}

type DataAvailabilityMode uint32

const (
	DAModeL1 DataAvailabilityMode = iota
	DAModeL2
)

func (m DataAvailabilityMode) String() string {
	if m == DAModeL2 {
		return "L2"
	}
	return "L1"
}

type Resource uint32

const (
	ResourceL1Gas Resource = iota + 1
	ResourceL2Gas
	ResourceL1DataGas
)

func (r Resource) String() string {
	switch r {
	case ResourceL1Gas:
		return "l1_gas"
	case ResourceL2Gas:
		return "l2_gas"
	case ResourceL1DataGas:
		return "l1_data_gas"
	default:
		return fmt.Sprintf("Resource(%d)", uint32(r))
	}
}

type ResourceBounds struct {
	MaxAmount       uint64
	MaxPricePerUnit *felt.Felt
}

// MaxFee is the most the sender can be charged for this resource
func (rb ResourceBounds) MaxFee() *uint256.Int {
	return Fee(rb.MaxAmount, rb.MaxPricePerUnit)
}

// Transaction is implemented by every supported transaction variant and only by them.
// Adding a variant means implementing every accessor below, otherwise the package
// does not build.
type Transaction interface {
	Hash() *felt.Felt
	Type() TransactionType
	Version() *felt.Felt
	// Nonce is nil for variants without an account nonce
	Nonce() *felt.Felt
	// MaxFee is nil for variants that commit to resource bounds or pay no fee
	MaxFee() *felt.Felt
	// ResourceBounds is nil unless the variant is a V3 transaction
	ResourceBounds() map[Resource]ResourceBounds
	Signature() []*felt.Felt
	// ContractAddress is the sender for account transactions and the target contract otherwise
	ContractAddress() *felt.Felt

	isTransaction()
}

// AccountTransaction is a transaction whose sender runs an account `__validate__` entry point.
type AccountTransaction interface {
	Transaction
	isAccountTransaction()
}

var (
	_ AccountTransaction = (*DeclareV0)(nil)
	_ AccountTransaction = (*DeclareV1)(nil)
	_ AccountTransaction = (*DeclareV2)(nil)
	_ AccountTransaction = (*DeclareV3)(nil)
	_ AccountTransaction = (*DeployAccountV1)(nil)
	_ AccountTransaction = (*DeployAccountV3)(nil)
	_ AccountTransaction = (*InvokeV0)(nil)
	_ AccountTransaction = (*InvokeV1)(nil)
	_ AccountTransaction = (*InvokeV3)(nil)
	_ Transaction        = (*Deploy)(nil)
	_ Transaction        = (*L1Handler)(nil)
)

// AsAccountTransaction narrows tx, rejecting Deploy and L1Handler transactions.
func AsAccountTransaction(tx Transaction) (AccountTransaction, error) {
	accountTx, ok := tx.(AccountTransaction)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAccountTransaction, tx.Type())
	}
	return accountTx, nil
}

var (
	version0 = felt.Zero
	version1 = *new(felt.Felt).SetUint64(1)
	version2 = *new(felt.Felt).SetUint64(2)
	version3 = *new(felt.Felt).SetUint64(3)
)

func versionOf(v felt.Felt) *felt.Felt {
	return &v
}

// AccountParams groups the fields every pre-V3 account transaction carries.
type AccountParams struct {
	// The maximum fee that the sender is willing to pay for the transaction.
	MaxFee *felt.Felt
	// Additional information given by the sender, used to validate the transaction.
	Signature []*felt.Felt
	// The transaction nonce.
	Nonce *felt.Felt
}

// TransactionParamsV3 groups the fields every V3 transaction carries.
type TransactionParamsV3 struct {
	Signature      []*felt.Felt
	Nonce          *felt.Felt
	NonceDAMode    DataAvailabilityMode
	FeeDAMode      DataAvailabilityMode
	ResourceBounds map[Resource]ResourceBounds
	Tip            uint64
	PaymasterData  []*felt.Felt
}

// DeclareV0V1Fields is shared by declare versions 0 and 1.
type DeclareV0V1Fields struct {
	TransactionHash *felt.Felt
	// The class hash
	ClassHash *felt.Felt
	// The address of the account initiating the transaction.
	SenderAddress *felt.Felt
	AccountParams
}

type DeclareV0 struct {
	DeclareV0V1Fields
}

func (d *DeclareV0) Hash() *felt.Felt { return d.TransactionHash }
func (d *DeclareV0) Type() TransactionType { return TxnDeclare }
func (d *DeclareV0) Version() *felt.Felt { return versionOf(version0) }
func (d *DeclareV0) Nonce() *felt.Felt { return d.AccountParams.Nonce }
func (d *DeclareV0) MaxFee() *felt.Felt { return d.AccountParams.MaxFee }
func (d *DeclareV0) ResourceBounds() map[Resource]ResourceBounds { return nil }
func (d *DeclareV0) Signature() []*felt.Felt { return d.AccountParams.Signature }
func (d *DeclareV0) ContractAddress() *felt.Felt { return d.SenderAddress }
func (d *DeclareV0) isTransaction() {}
func (d *DeclareV0) isAccountTransaction() {}

type DeclareV1 struct {
	DeclareV0V1Fields
}

func (d *DeclareV1) Hash() *felt.Felt { return d.TransactionHash }
func (d *DeclareV1) Type() TransactionType { return TxnDeclare }
func (d *DeclareV1) Version() *felt.Felt { return versionOf(version1) }
func (d *DeclareV1) Nonce() *felt.Felt { return d.AccountParams.Nonce }
func (d *DeclareV1) MaxFee() *felt.Felt { return d.AccountParams.MaxFee }
func (d *DeclareV1) ResourceBounds() map[Resource]ResourceBounds { return nil }
func (d *DeclareV1) Signature() []*felt.Felt { return d.AccountParams.Signature }
func (d *DeclareV1) ContractAddress() *felt.Felt { return d.SenderAddress }
func (d *DeclareV1) isTransaction() {}
func (d *DeclareV1) isAccountTransaction() {}

type DeclareV2 struct {
	TransactionHash   *felt.Felt
	ClassHash         *felt.Felt
	CompiledClassHash *felt.Felt
	SenderAddress     *felt.Felt
	AccountParams
}

func (d *DeclareV2) Hash() *felt.Felt { return d.TransactionHash }
func (d *DeclareV2) Type() TransactionType { return TxnDeclare }
func (d *DeclareV2) Version() *felt.Felt { return versionOf(version2) }
func (d *DeclareV2) Nonce() *felt.Felt { return d.AccountParams.Nonce }
func (d *DeclareV2) MaxFee() *felt.Felt { return d.AccountParams.MaxFee }
func (d *DeclareV2) ResourceBounds() map[Resource]ResourceBounds { return nil }
func (d *DeclareV2) Signature() []*felt.Felt { return d.AccountParams.Signature }
func (d *DeclareV2) ContractAddress() *felt.Felt { return d.SenderAddress }
func (d *DeclareV2) isTransaction() {}
func (d *DeclareV2) isAccountTransaction() {}

type DeclareV3 struct {
	TransactionHash       *felt.Felt
	ClassHash             *felt.Felt
	CompiledClassHash     *felt.Felt
	SenderAddress         *felt.Felt
	AccountDeploymentData []*felt.Felt
	TransactionParamsV3
}

func (d *DeclareV3) Hash() *felt.Felt { return d.TransactionHash }
func (d *DeclareV3) Type() TransactionType { return TxnDeclare }
func (d *DeclareV3) Version() *felt.Felt { return versionOf(version3) }
func (d *DeclareV3) Nonce() *felt.Felt { return d.TransactionParamsV3.Nonce }
func (d *DeclareV3) MaxFee() *felt.Felt { return nil }
func (d *DeclareV3) ResourceBounds() map[Resource]ResourceBounds {
	return d.TransactionParamsV3.ResourceBounds
}
func (d *DeclareV3) Signature() []*felt.Felt { return d.TransactionParamsV3.Signature }
func (d *DeclareV3) ContractAddress() *felt.Felt { return d.SenderAddress }
func (d *DeclareV3) isTransaction() {}
func (d *DeclareV3) isAccountTransaction() {}

// Deploy is the deprecated, fee-less deployment transaction.
type Deploy struct {
	TransactionHash *felt.Felt
	// A random number used to distinguish between different instances of the contract.
	ContractAddressSalt *felt.Felt
	// The address of the contract.
	DeployedAddress *felt.Felt
	// The hash of the class which defines the contract's functionality.
	ClassHash *felt.Felt
	// The arguments passed to the constructor during deployment.
	ConstructorCalldata []*felt.Felt
	// Deploy transactions were versioned in place, so the version is part of the payload.
	TxVersion *felt.Felt
}

func (d *Deploy) Hash() *felt.Felt { return d.TransactionHash }
func (d *Deploy) Type() TransactionType { return TxnDeploy }
func (d *Deploy) Version() *felt.Felt {
	if d.TxVersion == nil {
		return versionOf(version0)
	}
	return d.TxVersion
}
func (d *Deploy) Nonce() *felt.Felt { return nil }
func (d *Deploy) MaxFee() *felt.Felt { return nil }
func (d *Deploy) ResourceBounds() map[Resource]ResourceBounds { return nil }
func (d *Deploy) Signature() []*felt.Felt { return []*felt.Felt{} }
func (d *Deploy) ContractAddress() *felt.Felt { return d.DeployedAddress }
func (d *Deploy) isTransaction() {}

type DeployAccountV1 struct {
	TransactionHash     *felt.Felt
	ClassHash           *felt.Felt
	ContractAddressSalt *felt.Felt
	ConstructorCalldata []*felt.Felt
	// The address the account will be deployed at, which is also the sender.
	DeployedAddress *felt.Felt
	AccountParams
}

func (d *DeployAccountV1) Hash() *felt.Felt { return d.TransactionHash }
func (d *DeployAccountV1) Type() TransactionType { return TxnDeployAccount }
func (d *DeployAccountV1) Version() *felt.Felt { return versionOf(version1) }
func (d *DeployAccountV1) Nonce() *felt.Felt { return d.AccountParams.Nonce }
func (d *DeployAccountV1) MaxFee() *felt.Felt { return d.AccountParams.MaxFee }
func (d *DeployAccountV1) ResourceBounds() map[Resource]ResourceBounds { return nil }
func (d *DeployAccountV1) Signature() []*felt.Felt { return d.AccountParams.Signature }
func (d *DeployAccountV1) ContractAddress() *felt.Felt { return d.DeployedAddress }
func (d *DeployAccountV1) isTransaction() {}
func (d *DeployAccountV1) isAccountTransaction() {}

type DeployAccountV3 struct {
	TransactionHash     *felt.Felt
	ClassHash           *felt.Felt
	ContractAddressSalt *felt.Felt
	ConstructorCalldata []*felt.Felt
	DeployedAddress     *felt.Felt
	TransactionParamsV3
}

func (d *DeployAccountV3) Hash() *felt.Felt { return d.TransactionHash }
func (d *DeployAccountV3) Type() TransactionType { return TxnDeployAccount }
func (d *DeployAccountV3) Version() *felt.Felt { return versionOf(version3) }
func (d *DeployAccountV3) Nonce() *felt.Felt { return d.TransactionParamsV3.Nonce }
func (d *DeployAccountV3) MaxFee() *felt.Felt { return nil }
func (d *DeployAccountV3) ResourceBounds() map[Resource]ResourceBounds {
	return d.TransactionParamsV3.ResourceBounds
}
func (d *DeployAccountV3) Signature() []*felt.Felt { return d.TransactionParamsV3.Signature }
func (d *DeployAccountV3) ContractAddress() *felt.Felt { return d.DeployedAddress }
func (d *DeployAccountV3) isTransaction() {}
func (d *DeployAccountV3) isAccountTransaction() {}

// InvokeV0 calls an entry point of the account directly and carries no nonce.
type InvokeV0 struct {
	TransactionHash *felt.Felt
	// The maximum fee that the sender is willing to pay for the transaction
	MaxFeeAmount *felt.Felt
	TxSignature  []*felt.Felt
	// The address of the contract invoked by this transaction.
	TargetAddress *felt.Felt
	// The encoding of the selector for the function invoked (the entry point in the contract)
	EntryPointSelector *felt.Felt
	// The arguments that are passed to the validated and execute functions.
	Calldata []*felt.Felt
}

func (i *InvokeV0) Hash() *felt.Felt { return i.TransactionHash }
func (i *InvokeV0) Type() TransactionType { return TxnInvoke }
func (i *InvokeV0) Version() *felt.Felt { return versionOf(version0) }
func (i *InvokeV0) Nonce() *felt.Felt { return nil }
func (i *InvokeV0) MaxFee() *felt.Felt { return i.MaxFeeAmount }
func (i *InvokeV0) ResourceBounds() map[Resource]ResourceBounds { return nil }
func (i *InvokeV0) Signature() []*felt.Felt { return i.TxSignature }
func (i *InvokeV0) ContractAddress() *felt.Felt { return i.TargetAddress }
func (i *InvokeV0) isTransaction() {}
func (i *InvokeV0) isAccountTransaction() {}

type InvokeV1 struct {
	TransactionHash *felt.Felt
	SenderAddress   *felt.Felt
	Calldata        []*felt.Felt
	AccountParams
}

func (i *InvokeV1) Hash() *felt.Felt { return i.TransactionHash }
func (i *InvokeV1) Type() TransactionType { return TxnInvoke }
func (i *InvokeV1) Version() *felt.Felt { return versionOf(version1) }
func (i *InvokeV1) Nonce() *felt.Felt { return i.AccountParams.Nonce }
func (i *InvokeV1) MaxFee() *felt.Felt { return i.AccountParams.MaxFee }
func (i *InvokeV1) ResourceBounds() map[Resource]ResourceBounds { return nil }
func (i *InvokeV1) Signature() []*felt.Felt { return i.AccountParams.Signature }
func (i *InvokeV1) ContractAddress() *felt.Felt { return i.SenderAddress }
func (i *InvokeV1) isTransaction() {}
func (i *InvokeV1) isAccountTransaction() {}

type InvokeV3 struct {
	TransactionHash       *felt.Felt
	SenderAddress         *felt.Felt
	Calldata              []*felt.Felt
	AccountDeploymentData []*felt.Felt
	TransactionParamsV3
}

func (i *InvokeV3) Hash() *felt.Felt { return i.TransactionHash }
func (i *InvokeV3) Type() TransactionType { return TxnInvoke }
func (i *InvokeV3) Version() *felt.Felt { return versionOf(version3) }
func (i *InvokeV3) Nonce() *felt.Felt { return i.TransactionParamsV3.Nonce }
func (i *InvokeV3) MaxFee() *felt.Felt { return nil }
func (i *InvokeV3) ResourceBounds() map[Resource]ResourceBounds {
	return i.TransactionParamsV3.ResourceBounds
}
func (i *InvokeV3) Signature() []*felt.Felt { return i.TransactionParamsV3.Signature }
func (i *InvokeV3) ContractAddress() *felt.Felt { return i.SenderAddress }
func (i *InvokeV3) isTransaction() {}
func (i *InvokeV3) isAccountTransaction() {}

// L1Handler is sent by the core contract on behalf of an L1 message. Its message nonce is
// not an account nonce.
type L1Handler struct {
	TransactionHash *felt.Felt
	// The address of the contract.
	TargetAddress *felt.Felt
	// The encoding of the selector for the function invoked (the entry point in the contract)
	EntryPointSelector *felt.Felt
	// The L1 to L2 message nonce.
	MessageNonce *felt.Felt
	// The arguments that are passed to the validated and execute functions.
	Calldata  []*felt.Felt
	TxVersion *felt.Felt
}

func (l *L1Handler) Hash() *felt.Felt { return l.TransactionHash }
func (l *L1Handler) Type() TransactionType { return TxnL1Handler }
func (l *L1Handler) Version() *felt.Felt {
	if l.TxVersion == nil {
		return versionOf(version0)
	}
	return l.TxVersion
}
func (l *L1Handler) Nonce() *felt.Felt { return nil }
func (l *L1Handler) MaxFee() *felt.Felt { return nil }
func (l *L1Handler) ResourceBounds() map[Resource]ResourceBounds { return nil }
func (l *L1Handler) Signature() []*felt.Felt { return []*felt.Felt{} }
func (l *L1Handler) ContractAddress() *felt.Felt { return l.TargetAddress }
func (l *L1Handler) isTransaction() {}

// ClassHash returns the class a transaction declares or deploys, nil when it has none.
func ClassHash(tx Transaction) *felt.Felt {
	switch t := tx.(type) {
	case *DeclareV0:
		return t.ClassHash
	case *DeclareV1:
		return t.ClassHash
	case *DeclareV2:
		return t.ClassHash
	case *DeclareV3:
		return t.ClassHash
	case *Deploy:
		return t.ClassHash
	case *DeployAccountV1:
		return t.ClassHash
	case *DeployAccountV3:
		return t.ClassHash
	default:
		return nil
	}
}
