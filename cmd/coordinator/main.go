// coordinator is the multisig transaction coordinator's server entrypoint:
// it loads configuration, opens the persistence store, starts the engine,
// and serves the HTTP façade.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/miden-multisig/coordinator"
	"github.com/miden-multisig/coordinator/build"
	"github.com/miden-multisig/coordinator/clientruntime"
	"github.com/miden-multisig/coordinator/coordinatorcfg"
	"github.com/miden-multisig/coordinator/coordinatormonitor"
	"github.com/miden-multisig/coordinator/coordinatorrpc"
	"github.com/miden-multisig/coordinator/engine"
	"github.com/miden-multisig/coordinator/store"

	"github.com/jackc/pgx/v4/pgxpool"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "[coordinator] %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("configfile", "", "path to a base configuration file")
	logFile := flag.String("logfile", "coordinator.log", "path to the rotating log file")
	flag.Parse()

	cfg, err := coordinatorcfg.Load(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	root := build.NewRotatingLogWriter()
	if err := root.InitLogRotator(*logFile, 10*1024, 3); err != nil {
		return fmt.Errorf("init log rotator: %w", err)
	}
	coordinator.SetupLoggers(root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := store.RunMigrations(cfg.DB.DBURL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DBURL)
	if err != nil {
		return fmt.Errorf("parse db url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.DB.MaxConn)

	pool, err := pgxpool.ConnectConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	pgStore := store.NewPostgresStore(pool)
	metrics := coordinatormonitor.New()

	eng := engine.New(engine.Config{
		NetworkID: cfg.App.NetworkIDHRP,
		Store:     pgStore,
		Metrics:   metrics,
		NewWallet: func() (clientruntime.WalletClient, error) {
			// Constructing a real wallet SDK client from
			// cfg.Miden.{NodeURL,StorePath,KeystorePath,Timeout} is
			// outside this coordinator's scope: the wallet SDK's own
			// on-disk store and keystore layout are opaque. Wire the
			// actual Miden SDK bindings in here for a real deployment.
			return nil, errors.New("coordinator: no wallet client configured")
		},
	})
	if err := eng.Start(); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	defer eng.Stop()

	server := coordinatorrpc.NewServer(coordinatorrpc.Config{
		NetworkID:      cfg.App.NetworkIDHRP,
		Engine:         eng,
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
		Metrics:        metrics,
	})

	httpServer := &http.Server{
		Addr:    cfg.App.Listen,
		Handler: server.Handler(),
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
	case <-sigCh:
		return httpServer.Shutdown(context.Background())
	}
	return nil
}
