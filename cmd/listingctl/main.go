// Command listingctl administers the cards collection from a terminal. It
// talks to the configured store directly, so it works while the HTTP
// server is down.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	listingapp "github.com/estate/listings/internal/application/listing"
	"github.com/estate/listings/internal/infrastructure/config"
	"github.com/estate/listings/internal/infrastructure/event"
	"github.com/estate/listings/internal/infrastructure/logger"
	"github.com/estate/listings/internal/infrastructure/store"
)

// app holds what the commands share. Tests fill cfg and service up front
// so nothing is loaded from disk.
type app struct {
	configFile string
	logLevel   string

	cfg     *config.Config
	log     *zap.Logger
	service *listingapp.Service
	closers []func()
}

func main() {
	a := &app{}
	root := newRootCmd(a)
	err := root.Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "listingctl",
		Short: "Administer real-estate listings",
		Long: `listingctl browses and edits the cards collection of the listings service.

It reads the same config.toml and LISTINGS_* environment variables as the
server and opens the configured store directly.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Config file (default: ./config.toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newCommentCmd(a),
		newSeedCmd(a),
		newDeleteCmd(a),
		newPurgeCmd(a),
		newTokenCmd(a),
		newHashPasswordCmd(a),
	)
	return root
}

func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.LoadFile(a.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg
	return cfg, nil
}

func (a *app) logger() *zap.Logger {
	if a.log != nil {
		return a.log
	}
	l, err := logger.New(&logger.Config{
		Level:      a.logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "15:04:05",
	})
	if err != nil {
		l = zap.NewNop()
	}
	a.log = l
	return l
}

// listings opens the store on first use and builds the service over it
func (a *app) listings(ctx context.Context) (*listingapp.Service, error) {
	if a.service != nil {
		return a.service, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	log := a.logger()

	repo, closeStore, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	svc := listingapp.NewService(repo, listingapp.NewView(0), log)
	svc.SetGenerator(listingapp.NewGenerator(cfg.App.SeedRandom))
	svc.SetEventPublisher(event.NewLogPublisher(log))
	a.service = svc
	return svc, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
