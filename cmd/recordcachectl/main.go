// Command recordcachectl opens and operates a recordcache Main Environment:
// reporting stats, running garbage collection and compaction, and taking or
// restoring backups. Built with cobra/viper, the way the wider example pack
// fronts its own services, rather than the teacher's bare flag/log CLI
// (cmd/service/main.go).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kurocache/recordcache/pkg/config"
	"github.com/kurocache/recordcache/pkg/logging"
	"github.com/kurocache/recordcache/pkg/storage"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "recordcachectl",
		Short: "Operate a recordcache Main Environment",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(newServeCommand())
	root.AddCommand(newStatsCommand())
	root.AddCommand(newGCCommand())
	root.AddCommand(newCompactCommand())
	root.AddCommand(newBackupCommand())
	root.AddCommand(newRestoreCommand())
	root.AddCommand(newVerifyCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openEnvironment() (*badger.DB, *storage.MainEnvironment, *zap.Logger, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, config.Config{}, err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, config.Config{}, err
	}

	opts := badger.DefaultOptions(cfg.DataDir)
	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, nil, config.Config{}, fmt.Errorf("opening badger: %w", err)
	}

	env, err := storage.Open(db, true, logger)
	if err != nil {
		db.Close()
		return nil, nil, nil, config.Config{}, err
	}

	return db, env, logger, cfg, nil
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Open the environment and run its maintenance loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, logger, cfg, err := openEnvironment()
			if err != nil {
				return err
			}
			defer db.Close()

			mm := storage.NewMaintenanceManager(db, cfg.DataDir, logger)
			mc := storage.MaintenanceConfig{
				EnableAutoGC:         cfg.Maintenance.EnableAutoGC,
				GCInterval:           cfg.Maintenance.GCInterval(),
				GCDiscardRatio:       cfg.Maintenance.GCDiscardRatio,
				EnableAutoCompaction: cfg.Maintenance.EnableAutoCompact,
				CompactionInterval:   cfg.Maintenance.CompactionInterval(),
			}
			if err := mm.StartAutoMaintenance(mc); err != nil {
				return err
			}
			defer mm.StopAutoMaintenance()

			logger.Info("recordcache environment open", zap.String("data_dir", cfg.DataDir), zap.Bool("in_memory", cfg.InMemory))

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			logger.Info("shutting down")
			return nil
		},
	}
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print environment statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, env, logger, cfg, err := openEnvironment()
			if err != nil {
				return err
			}
			defer db.Close()

			mm := storage.NewMaintenanceManager(db, cfg.DataDir, logger)
			stats, err := mm.GetStats(env)
			if err != nil {
				return err
			}
			fmt.Printf("log entries:      %d\n", stats.LogEntryCount)
			fmt.Printf("metadata entries: %d\n", stats.MetadataEntryCount)
			fmt.Printf("present entries:  %d\n", stats.PresentEntryCount)
			fmt.Printf("next operation id: %d\n", stats.NextOperationID)
			fmt.Printf("disk usage bytes: %d\n", stats.DiskUsageBytes)
			return nil
		},
	}
}

func newGCCommand() *cobra.Command {
	var discardRatio float64
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Run one value-log garbage collection pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, logger, cfg, err := openEnvironment()
			if err != nil {
				return err
			}
			defer db.Close()
			mm := storage.NewMaintenanceManager(db, cfg.DataDir, logger)
			return mm.RunGC(discardRatio)
		},
	}
	cmd.Flags().Float64Var(&discardRatio, "discard-ratio", 0.5, "value log discard ratio")
	return cmd
}

func newCompactCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Flatten the LSM tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, logger, cfg, err := openEnvironment()
			if err != nil {
				return err
			}
			defer db.Close()
			mm := storage.NewMaintenanceManager(db, cfg.DataDir, logger)
			return mm.RunCompaction()
		},
	}
}

func newBackupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [path]",
		Short: "Write a full backup to path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, logger, cfg, err := openEnvironment()
			if err != nil {
				return err
			}
			defer db.Close()
			mm := storage.NewMaintenanceManager(db, cfg.DataDir, logger)
			return mm.Backup(args[0])
		},
	}
}

func newRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [path]",
		Short: "Load a backup previously produced by backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, logger, cfg, err := openEnvironment()
			if err != nil {
				return err
			}
			defer db.Close()
			mm := storage.NewMaintenanceManager(db, cfg.DataDir, logger)
			return mm.Restore(args[0])
		},
	}
}

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify every stored value is readable and non-empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, logger, cfg, err := openEnvironment()
			if err != nil {
				return err
			}
			defer db.Close()
			mm := storage.NewMaintenanceManager(db, cfg.DataDir, logger)
			if err := mm.VerifyIntegrity(); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
}
