// Package cli implements the herdctl command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"herdcore/internal/blob"
	"herdcore/internal/config"
	"herdcore/internal/core"
	"herdcore/internal/infra/persistence/memory"
	"herdcore/internal/infra/persistence/postgres"
	"herdcore/internal/infra/persistence/sqlite"
	"herdcore/internal/logger"
	"herdcore/internal/reminder"
	"herdcore/pkg/domain"
)

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "herdctl",
		Short:         "herdctl manages the breeding-suitability engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a herdcore config file")

	cmd.AddCommand(
		newSeedCmd(&configPath),
		newAnimalsCmd(&configPath),
		newRecommendCmd(&configPath),
		newEventCmd(&configPath),
		newBirthCmd(&configPath),
		newDryOffCmd(&configPath),
		newRunsCmd(&configPath),
	)
	return cmd
}

// env bundles the wired collaborators behind one lifecycle.
type env struct {
	cfg     config.Config
	log     *zap.Logger
	service *core.Service
	blobs   blob.Store

	dispatcher *reminder.AsyncDispatcher
	closers    []func() error
}

func (e *env) close() {
	if e.dispatcher != nil {
		e.dispatcher.Wait()
	}
	for _, fn := range e.closers {
		_ = fn()
	}
	_ = e.log.Sync()
}

// withEnv loads configuration, opens the configured store, and hands a ready
// service to fn, tearing everything down afterwards.
func withEnv(configPath string, fn func(ctx context.Context, e *env) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return err
	}

	e := &env{cfg: cfg, log: log}
	engine := core.NewDefaultRulesEngine()

	var store domain.PersistentStore
	switch cfg.Storage.Driver {
	case "memory":
		store = memory.NewStore(engine)
	case "sqlite":
		s, err := sqlite.NewStore(cfg.Storage.Path, engine)
		if err != nil {
			return err
		}
		e.closers = append(e.closers, s.Close)
		store = s
	case "postgres":
		s, err := postgres.NewStore(cfg.Storage.DSN, engine)
		if err != nil {
			return err
		}
		e.closers = append(e.closers, s.Close)
		store = s
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	switch cfg.Blob.Driver {
	case "memory":
		e.blobs = blob.NewMemory()
	case "fs":
		fsStore, err := blob.NewFilesystem(cfg.Blob.Root)
		if err != nil {
			return err
		}
		e.blobs = fsStore
	case "s3":
		s3Store, err := blob.OpenS3FromEnv(context.Background())
		if err != nil {
			return err
		}
		e.blobs = s3Store
	default:
		return fmt.Errorf("unknown blob driver %q", cfg.Blob.Driver)
	}

	e.dispatcher = reminder.NewAsyncDispatcher(reminder.SinkFunc(func(_ context.Context, femaleID, cycleID string, remindAt time.Time) error {
		log.Info("dry-off reminder scheduled",
			zap.String(logger.FieldFemale, femaleID),
			zap.String(logger.FieldCycle, cycleID),
			zap.Time("remind_at", remindAt),
		)
		return nil
	}), log)

	e.service = core.NewService(store,
		core.WithLogger(log),
		core.WithReminderScheduler(e.dispatcher),
	)

	defer e.close()
	return fn(context.Background(), e)
}
