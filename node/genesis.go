package node

import (
	"errors"

	"github.com/NethermindEth/starknet-validator/blockifier"
	"github.com/NethermindEth/starknet-validator/core/state"
	"github.com/NethermindEth/starknet-validator/db"
	"github.com/NethermindEth/starknet-validator/genesis"
	"github.com/NethermindEth/starknet-validator/utils"
)

// seedGenesis writes the genesis accounts into a store that has never been seeded. A
// store that already carries a chain height is left untouched.
func seedGenesis(database db.KeyValueStore, path string, feeTokens blockifier.FeeTokenAddresses,
	log utils.SimpleLogger,
) (err error) {
	if height, err := state.ChainHeight(database); !errors.Is(err, db.ErrKeyNotFound) {
		if err == nil {
			log.Debugw("Store already seeded, skipping genesis", "height", height)
		}
		return err
	}

	cfg, err := genesis.Read(path)
	if err != nil {
		return err
	}
	diff, err := genesis.StateDiff(cfg, feeTokens)
	if err != nil {
		return err
	}

	batch := database.NewBatch()
	defer func() {
		err = utils.RunAndWrapOnError(batch.Close, err)
	}()
	writer := state.NewWriter(batch)
	if err = writer.Apply(diff); err != nil {
		return err
	}
	if err = writer.SetChainHeight(0); err != nil {
		return err
	}
	if err = batch.Write(); err != nil {
		return err
	}
	log.Infow("Seeded genesis state", "accounts", len(cfg.Accounts))
	return nil
}
