package main

import (
	"fmt"
	"reflect"

	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/NethermindEth/starknet-validator/node"
	"github.com/NethermindEth/starknet-validator/utils"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Version string

const greeting = `
Starknet sequencer transaction validator %s.
Admits account transactions into block building at the height set up by the sequencer.

`

const (
	configF            = "config"
	logLevelF          = "log-level"
	colourF            = "colour"
	dbPathF            = "db-path"
	dbCacheSizeF       = "db-cache-size"
	dbMaxHandlesF      = "db-max-handles"
	httpHostF          = "http-host"
	httpPortF          = "http-port"
	maxQueuedRequestsF = "max-queued-requests"
	metricsF           = "metrics"
	metricsHostF       = "metrics-host"
	metricsPortF       = "metrics-port"
	engineURLF         = "engine-url"
	genesisFileF       = "genesis-file"
	maxRecursionDepthF = "max-recursion-depth"
	maxNonceSkipF      = "max-nonce-for-validation-skip"
	chainIDF           = "chain-id"
	ethFeeTokenF       = "eth-fee-token"
	strkFeeTokenF      = "strk-fee-token"

	defaultConfig            = ""
	defaultColour            = true
	defaultDBPath            = "validator-db"
	defaultDBCacheSize       = uint(1024)
	defaultDBMaxHandles      = 1024
	defaultHTTPHost          = "localhost"
	defaultHTTPPort          = uint16(6070)
	defaultMaxQueuedRequests = int32(256)
	defaultMetrics           = false
	defaultMetricsHost       = "localhost"
	defaultMetricsPort       = uint16(9090)
	defaultEngineURL         = "http://localhost:6071"
	defaultGenesisFile       = ""
	defaultMaxRecursionDepth = uint64(0)
	defaultMaxNonceSkip      = "0x1"
	defaultChainID           = "SN_MAIN"
	defaultETHFeeToken       = "0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"
	defaultSTRKFeeToken      = "0x4718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d"

	configFlagUsage   = "The YAML configuration file."
	logLevelFlagUsage = "Options: debug, info, warn, error."
	colourUsage       = "Use `--colour=false` command to disable colourized outputs (ANSI Escape Codes)."
	dbPathUsage       = "Location of the database files."
	dbCacheSizeUsage  = "Determines the amount of memory (in megabytes) allocated for caching data in the database."
	dbMaxHandlesUsage = "A soft limit on the number of open files that can be used by the DB"
	httpHostUsage     = "The interface on which the validator server will listen for requests."
	httpPortUsage     = "The port on which the validator server will listen for requests."
	maxQueuedUsage    = "Maximum number of requests waiting on the validator before new ones are turned away."
	metricsUsage      = "Enables the Prometheus metrics endpoint on the default port."
	metricsHostUsage  = "The interface on which the Prometheus endpoint will listen for requests."
	metricsPortUsage  = "The port on which the Prometheus endpoint will listen for requests."
	engineURLUsage    = "The execution engine endpoint transactions are run against."
	genesisFileUsage  = "Path to the genesis file (YAML or JSON) seeding a fresh database with accounts."
	maxRecursionUsage = "Overrides the call recursion depth of the protocol version when non-zero."
	maxNonceSkipUsage = "Highest nonce whose account validation is skipped while the sender's " +
		"deploy account transaction is still pending."
	chainIDUsage      = "The chain id transactions are validated for."
	ethFeeTokenUsage  = "Address of the ETH fee token contract."
	strkFeeTokenUsage = "Address of the STRK fee token contract."
)

func NewCmd(newNodeFn node.NewValidatorNodeFn) *cobra.Command {
	var cfgFile string
	defaultLogLevel := utils.INFO

	validatorCmd := &cobra.Command{
		Use:     "validator [flags]",
		Short:   "Starknet sequencer transaction validator.",
		Version: Version,
		Args:    cobra.NoArgs,
	}

	validatorCmd.Flags().StringVar(&cfgFile, configF, defaultConfig, configFlagUsage)
	validatorCmd.Flags().Var(&defaultLogLevel, logLevelF, logLevelFlagUsage)
	validatorCmd.Flags().Bool(colourF, defaultColour, colourUsage)
	validatorCmd.Flags().String(dbPathF, defaultDBPath, dbPathUsage)
	validatorCmd.Flags().Uint(dbCacheSizeF, defaultDBCacheSize, dbCacheSizeUsage)
	validatorCmd.Flags().Int(dbMaxHandlesF, defaultDBMaxHandles, dbMaxHandlesUsage)
	validatorCmd.Flags().String(httpHostF, defaultHTTPHost, httpHostUsage)
	validatorCmd.Flags().Uint16(httpPortF, defaultHTTPPort, httpPortUsage)
	validatorCmd.Flags().Int32(maxQueuedRequestsF, defaultMaxQueuedRequests, maxQueuedUsage)
	validatorCmd.Flags().Bool(metricsF, defaultMetrics, metricsUsage)
	validatorCmd.Flags().String(metricsHostF, defaultMetricsHost, metricsHostUsage)
	validatorCmd.Flags().Uint16(metricsPortF, defaultMetricsPort, metricsPortUsage)
	validatorCmd.Flags().String(engineURLF, defaultEngineURL, engineURLUsage)
	validatorCmd.Flags().String(genesisFileF, defaultGenesisFile, genesisFileUsage)
	validatorCmd.Flags().Uint64(maxRecursionDepthF, defaultMaxRecursionDepth, maxRecursionUsage)
	validatorCmd.Flags().String(maxNonceSkipF, defaultMaxNonceSkip, maxNonceSkipUsage)
	validatorCmd.Flags().String(chainIDF, defaultChainID, chainIDUsage)
	validatorCmd.Flags().String(ethFeeTokenF, defaultETHFeeToken, ethFeeTokenUsage)
	validatorCmd.Flags().String(strkFeeTokenF, defaultSTRKFeeToken, strkFeeTokenUsage)

	validatorCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		v := viper.New()
		if cfgFile != "" {
			v.SetConfigType("yaml")
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return err
			}
		}

		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		cfg := new(node.Config)
		if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook())); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), greeting, Version); err != nil {
			return err
		}

		n, err := newNodeFn(cfg, Version)
		if err != nil {
			return err
		}

		n.Run(cmd.Context())
		return nil
	}

	validatorCmd.AddCommand(GenesisCmd())
	return validatorCmd
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		numberToFelt,
	)
}

// numberToFelt lets YAML configs give felts as plain numbers
func numberToFelt(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(felt.Felt{}) {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(felt.Felt).SetString(fmt.Sprint(data))
	default:
		return data, nil
	}
}
