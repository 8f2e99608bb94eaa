package main

import (
	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/NethermindEth/starknet-validator/genesis"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func GenesisCmd() *cobra.Command {
	genesisCmd := &cobra.Command{
		Use:   "genesis",
		Short: "Genesis file related operations",
	}
	genesisCmd.AddCommand(GenesisInspectCmd())
	return genesisCmd
}

func GenesisInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Validate a genesis file and list its accounts",
		Long:  `This subcommand reads a genesis file, checks it and prints the accounts it seeds.`,
		RunE:  genesisInspect,
	}
	cmd.Flags().String(genesisFileF, defaultGenesisFile, genesisFileUsage)
	return cmd
}

func genesisInspect(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString(genesisFileF)
	if err != nil {
		return err
	}

	cfg, err := genesis.Read(path)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Address", "Class hash", "Nonce", "ETH balance", "STRK balance"})
	for _, account := range cfg.Accounts {
		table.Append([]string{
			account.Address.String(),
			account.ClassHash.String(),
			orZero(account.Nonce),
			orZero(account.ETHBalance),
			orZero(account.STRKBalance),
		})
	}
	table.Render()
	return nil
}

func orZero(f *felt.Felt) string {
	if f == nil {
		return felt.Zero.String()
	}
	return f.String()
}
