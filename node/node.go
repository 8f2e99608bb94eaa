package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"reflect"
	"strconv"

	"github.com/NethermindEth/starknet-validator/component"
	"github.com/NethermindEth/starknet-validator/core/state"
	"github.com/NethermindEth/starknet-validator/db"
	"github.com/NethermindEth/starknet-validator/db/pebble"
	"github.com/NethermindEth/starknet-validator/service"
	"github.com/NethermindEth/starknet-validator/utils"
	"github.com/NethermindEth/starknet-validator/validator"
	"github.com/NethermindEth/starknet-validator/vm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc"
)

// Config is the top-level validator node configuration.
type Config struct {
	LogLevel utils.LogLevel `mapstructure:"log-level"`
	Colour   bool           `mapstructure:"colour"`

	DatabasePath string `mapstructure:"db-path"`
	DBCacheSize  uint   `mapstructure:"db-cache-size"`
	DBMaxHandles int    `mapstructure:"db-max-handles"`

	HTTPHost string `mapstructure:"http-host"`
	HTTPPort uint16 `mapstructure:"http-port"`
	// Requests waiting on the validator beyond this many are rejected
	MaxQueuedRequests int32 `mapstructure:"max-queued-requests"`

	Metrics     bool   `mapstructure:"metrics"`
	MetricsHost string `mapstructure:"metrics-host"`
	MetricsPort uint16 `mapstructure:"metrics-port"`

	EngineURL   string `mapstructure:"engine-url"`
	GenesisFile string `mapstructure:"genesis-file"`

	Validator validator.Config `mapstructure:",squash"`
}

type Node struct {
	cfg      *Config
	db       db.KeyValueStore
	server   *validator.Server
	services []service.Service
	log      utils.Logger

	version string
}

// New opens the database, seeds it from the genesis file if it is fresh and builds the
// validator server along with the services exposing it.
func New(cfg *Config, version string) (*Node, error) { //nolint:funlen
	if cfg.DatabasePath == "" {
		return nil, errors.New("database path is required")
	}
	engineURL, err := url.Parse(cfg.EngineURL)
	if err != nil {
		return nil, fmt.Errorf("parse engine URL: %w", err)
	}
	if engineURL.Scheme != "http" && engineURL.Scheme != "https" {
		return nil, errors.New("non-http engine URL (need http://... or https://...): " + cfg.EngineURL)
	}

	log, err := utils.NewZapLogger(cfg.LogLevel, cfg.Colour)
	if err != nil {
		return nil, err
	}

	dbLog, err := utils.NewZapLogger(utils.ERROR, cfg.Colour)
	if err != nil {
		return nil, fmt.Errorf("create DB logger: %w", err)
	}

	pebbleDB, err := pebble.New(cfg.DatabasePath, cfg.DBCacheSize, cfg.DBMaxHandles, dbLog)
	if err != nil {
		return nil, fmt.Errorf("open DB: %w", err)
	}
	var database db.KeyValueStore = pebbleDB

	closeOnErr := func(err error) error {
		return utils.RunAndWrapOnError(database.Close, err)
	}

	if cfg.Metrics {
		database = database.WithListener(makeDBMetrics(prometheus.DefaultRegisterer))
		makePebbleMetrics(prometheus.DefaultRegisterer, pebbleDB)
		makeBuildInfoMetrics(prometheus.DefaultRegisterer, version)
	}

	if cfg.GenesisFile != "" {
		if err = seedGenesis(database, cfg.GenesisFile, cfg.Validator.ChainInfo.FeeTokenAddresses, log); err != nil {
			return nil, closeOnErr(fmt.Errorf("seed genesis: %w", err))
		}
	}

	engineClient := component.NewRemoteClient[vm.Request, vm.Response](cfg.EngineURL, log)
	v, err := validator.New(cfg.Validator, vm.NewRemoteEngine(engineClient, log), log)
	if err != nil {
		return nil, closeOnErr(err)
	}
	if cfg.Metrics {
		v.WithListener(makeValidatorMetrics(prometheus.DefaultRegisterer))
	}

	server := validator.NewServer(v, snapshotOpener(database), log)
	handler := newThrottledHandler(server, cfg.MaxQueuedRequests)

	services := make([]service.Service, 0, 2)
	listener, err := net.Listen("tcp", net.JoinHostPort(cfg.HTTPHost, strconv.Itoa(int(cfg.HTTPPort))))
	if err != nil {
		return nil, closeOnErr(fmt.Errorf("listen on http port: %w", err))
	}
	services = append(services, makeValidatorOverHTTP(listener, handler, server, log))

	if cfg.Metrics {
		makeThrottlerMetrics(prometheus.DefaultRegisterer, handler)
		var metricsListener net.Listener
		metricsListener, err = net.Listen("tcp", net.JoinHostPort(cfg.MetricsHost, strconv.Itoa(int(cfg.MetricsPort))))
		if err != nil {
			return nil, closeOnErr(utils.RunAndWrapOnError(listener.Close,
				fmt.Errorf("listen on metrics port: %w", err)))
		}
		services = append(services, makeMetrics(metricsListener))
	}

	return &Node{
		cfg:      cfg,
		db:       database,
		server:   server,
		services: services,
		log:      log,
		version:  version,
	}, nil
}

// snapshotOpener validates every height against a point-in-time view of the store, so
// writes landing while a height is live do not leak into its validations.
func snapshotOpener(database db.KeyValueStore) validator.StateOpener {
	return func(uint64) (state.Reader, io.Closer, error) {
		snapshot := database.NewSnapshot()
		return state.NewSnapshotReader(snapshot), snapshot, nil
	}
}

// Run starts the services and blocks until ctx is cancelled or one of them fails.
// Run will wait for all services to return before exiting.
func (n *Node) Run(ctx context.Context) {
	defer func() {
		if closeErr := n.db.Close(); closeErr != nil {
			n.log.Errorw("Error while closing the DB", "err", closeErr)
		}
	}()
	defer func() {
		if closeErr := n.server.Close(); closeErr != nil {
			n.log.Errorw("Error while closing the validator", "err", closeErr)
		}
	}()

	n.log.Infow("Starting validator node", "version", n.version, "engine", n.cfg.EngineURL)

	ctx, cancel := context.WithCancel(ctx)
	wg := conc.NewWaitGroup()
	for _, s := range n.services {
		wg.Go(func() {
			if err := s.Run(ctx); err != nil {
				n.log.Errorw("Service error", "name", reflect.TypeOf(s), "err", err)
				cancel()
			}
		})
	}
	defer wg.Wait()

	<-ctx.Done()
	cancel()
	n.log.Infow("Shutting down validator node...")
}

func (n *Node) Config() Config {
	return *n.cfg
}

// ValidatorNode is what the command line runs, Node in production.
type ValidatorNode interface {
	Run(ctx context.Context)
	Config() Config
}

type NewValidatorNodeFn func(cfg *Config, version string) (ValidatorNode, error)
