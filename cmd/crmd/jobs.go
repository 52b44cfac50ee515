package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flemzord/crmd/internal/config"
	"github.com/flemzord/crmd/internal/core"
	"github.com/flemzord/crmd/internal/jobs"
	"github.com/flemzord/crmd/internal/store/sqlite"
)

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and run background jobs",
	}
	cmd.AddCommand(jobsListCmd(), jobsRunCmd())
	return cmd
}

func jobsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs and their cron schedules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")

			jobsCfg, _, err := loadJobsConfig(cfgPath)
			if err != nil {
				return err
			}

			appCtx := core.NewAppContext(quietLogger(), defaultDataDir())
			for _, j := range jobs.Build(jobsCfg, nil, appCtx) {
				fmt.Printf("%-18s %s\n", j.Name(), j.Schedule())
			}
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func jobsRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a single job once and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")

			jobsCfg, storeCfg, err := loadJobsConfig(cfgPath)
			if err != nil {
				return err
			}

			dbPath := storeCfg.Path
			if dbPath == "" {
				dbPath = filepath.Join(defaultDataDir(), "crm.db")
			}
			st, err := sqlite.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))
			appCtx := core.NewAppContext(logger, defaultDataDir())

			for _, j := range jobs.Build(jobsCfg, st, appCtx) {
				if j.Name() == args[0] {
					return j.Run(context.Background())
				}
			}
			return fmt.Errorf("unknown job: %s", args[0])
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

// loadJobsConfig reads the jobs.cron and store.sqlite sections from the
// config file. A missing config file is not an error here: defaults apply,
// so `jobs list` and `jobs run` work on a fresh install.
func loadJobsConfig(cfgPath string) (jobs.Config, sqlite.Config, error) {
	var jobsCfg jobs.Config
	var storeCfg sqlite.Config

	if cfgPath == "" {
		resolved, err := resolveConfigPath()
		if err != nil {
			return jobsCfg, storeCfg, nil
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return jobsCfg, storeCfg, err
	}

	if node, ok := cfg.Modules["jobs.cron"]; ok {
		if err := node.Decode(&jobsCfg); err != nil {
			return jobsCfg, storeCfg, fmt.Errorf("decoding jobs.cron config: %w", err)
		}
	}
	if node, ok := cfg.Modules["store.sqlite"]; ok {
		if err := node.Decode(&storeCfg); err != nil {
			return jobsCfg, storeCfg, fmt.Errorf("decoding store.sqlite config: %w", err)
		}
	}
	return jobsCfg, storeCfg, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}
