// Package server parses server command flags and starts the combat API.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/stardrift-sim/stardrift/internal/api/httpapi"
	"github.com/stardrift-sim/stardrift/internal/platform/config"
	"github.com/stardrift-sim/stardrift/internal/platform/timeouts"
	"github.com/stardrift-sim/stardrift/internal/service"
	"github.com/stardrift-sim/stardrift/internal/storage/sqlite"
)

// Config holds server command configuration.
type Config struct {
	Port   int    `env:"STARDRIFT_PORT" envDefault:"8080"`
	Addr   string `env:"STARDRIFT_ADDR"`
	DBPath string `env:"STARDRIFT_DB_PATH" envDefault:"stardrift.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The server listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database file")
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run opens the store, wires the combat service, and serves the HTTP
// API until the context ends.
func Run(ctx context.Context, cfg Config) error {
	openCtx, cancel := context.WithTimeout(ctx, timeouts.StoreOpen)
	store, err := sqlite.Open(openCtx, cfg.DBPath)
	cancel()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	svc := service.New(store)
	handler := httpapi.New(svc, log.New(os.Stderr, "", log.LstdFlags))

	addr := cfg.Addr
	if addr == "" {
		addr = fmt.Sprintf(":%d", cfg.Port)
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Printf("combat server listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	return group.Wait()
}
