// vestingd serves the token distribution engine over HTTP, backed by an
// embedded BadgerDB store. It exists for development and standalone
// deployments; the chaincode host in the repository root is the production
// entry point.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"github.com/Anya-org/Anya-core-sub010/ledger"
	"github.com/Anya-org/Anya-core-sub010/store/badgerstore"
	"github.com/Anya-org/Anya-core-sub010/store/memory"
	"github.com/Anya-org/Anya-core-sub010/vesting"
)

func main() {
	configPath := pflag.String("config", "", "path to the YAML config file")
	listenAddr := pflag.String("listen", "", "listen address, overrides config")
	dataDir := pflag.String("data-dir", "", "database directory, overrides config")
	inMemory := pflag.Bool("in-memory", false, "keep state in memory, no persistence")
	verbose := pflag.Bool("verbose", false, "enable debug logging")
	pflag.Parse()

	// Missing .env is fine; explicit env still applies.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(log)

	if err := run(*configPath, *listenAddr, *dataDir, *inMemory, log); err != nil {
		log.Error("vestingd failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, listenAddr, dataDir string, inMemory bool, log *slog.Logger) error {
	if configPath == "" {
		configPath = os.Getenv("VESTINGD_CONFIG")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	applyOverrides(cfg, listenAddr, dataDir, inMemory)

	var store txRunner
	if cfg.InMemory {
		store = memory.New()
		log.Warn("running with in-memory state, nothing is persisted")
	} else {
		badgerStore, err := badgerstore.Open(badgerstore.Config{
			Path:       cfg.DataDir,
			SyncWrites: true,
			Logger:     log.With("component", "badger"),
		})
		if err != nil {
			return err
		}
		defer badgerStore.Close()
		store = badgerStore
	}

	stateLedger := ledger.NewStateLedger(log)
	err = store.RunTx("", 0, func(ctx vesting.TransactionContextInterface) error {
		return stateLedger.Bootstrap(ctx, cfg.TotalSupply, vesting.CustodyAccount)
	})
	if err != nil {
		return err
	}

	admins := make([]string, 0, len(cfg.Admins))
	for _, admin := range cfg.Admins {
		admins = append(admins, admin.ID)
	}
	engine, err := vesting.NewEngine(stateLedger, vesting.NewAdminList(admins...), vesting.Config{
		TicksPerMonth: cfg.TicksPerMonth,
	}, log)
	if err != nil {
		return err
	}

	server := NewServer(cfg.ListenAddr, store, engine, clockwork.NewRealClock(), cfg.Admins, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func applyOverrides(cfg *Config, listenAddr, dataDir string, inMemory bool) {
	if addr := os.Getenv("VESTINGD_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if dir := os.Getenv("VESTINGD_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if inMemory {
		cfg.InMemory = true
	}
}
