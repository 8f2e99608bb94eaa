package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/NethermindEth/starknet-validator/blockifier"
	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/NethermindEth/starknet-validator/core/state"
	"gopkg.in/yaml.v3"
)

// Config lists the accounts a fresh store is seeded with before the first height.
type Config struct {
	Accounts []Account `json:"accounts" yaml:"accounts"`
}

type Account struct {
	Address     *felt.Felt `json:"address" yaml:"address"`
	ClassHash   *felt.Felt `json:"class_hash" yaml:"class_hash"`
	Nonce       *felt.Felt `json:"nonce,omitempty" yaml:"nonce,omitempty"`
	ETHBalance  *felt.Felt `json:"eth_balance,omitempty" yaml:"eth_balance,omitempty"`
	STRKBalance *felt.Felt `json:"strk_balance,omitempty" yaml:"strk_balance,omitempty"`
}

// Read loads a genesis file. Files ending in .json are parsed as JSON, anything else as YAML.
func Read(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(file, &config)
	} else {
		err = yaml.Unmarshal(file, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("decode genesis file %s: %w", path, err)
	}
	return &config, config.Validate()
}

func (c *Config) Validate() error {
	seen := make(map[felt.Felt]struct{}, len(c.Accounts))
	for i, account := range c.Accounts {
		if account.Address == nil {
			return fmt.Errorf("account %d: missing address", i)
		}
		if account.ClassHash == nil {
			return fmt.Errorf("account %s: missing class hash", account.Address)
		}
		if _, ok := seen[*account.Address]; ok {
			return fmt.Errorf("account %s: listed more than once", account.Address)
		}
		seen[*account.Address] = struct{}{}
	}
	return nil
}

// StateDiff turns the accounts into writes: the class hash and nonce of every account and
// its balances in both fee token contracts.
func StateDiff(c *Config, feeTokens blockifier.FeeTokenAddresses) (*state.StateDiff, error) {
	if feeTokens.ETH == nil || feeTokens.STRK == nil {
		return nil, errors.New("fee token addresses are required")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	diff := state.NewStateDiff()
	for _, account := range c.Accounts {
		addr := *account.Address
		diff.DeployedContracts[addr] = account.ClassHash
		if account.Nonce != nil {
			diff.Nonces[addr] = account.Nonce
		}
		setBalance(diff, feeTokens.ETH, account.Address, account.ETHBalance)
		setBalance(diff, feeTokens.STRK, account.Address, account.STRKBalance)
	}
	return diff, nil
}

var u128Mask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

func setBalance(diff *state.StateDiff, token, account, balance *felt.Felt) {
	if balance == nil || balance.IsZero() {
		return
	}

	value := balance.BigInt(new(big.Int))
	low := new(big.Int).And(value, u128Mask)
	high := new(big.Int).Rsh(value, 128)

	lowKey, highKey := blockifier.BalanceKeys(account)
	storage, ok := diff.StorageDiffs[*token]
	if !ok {
		storage = make(map[felt.Felt]*felt.Felt)
		diff.StorageDiffs[*token] = storage
	}
	storage[*lowKey] = new(felt.Felt).SetBigInt(low)
	if high.Sign() != 0 {
		storage[*highKey] = new(felt.Felt).SetBigInt(high)
	}
}
