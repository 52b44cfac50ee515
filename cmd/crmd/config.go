package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/flemzord/crmd/internal/config"
	"github.com/flemzord/crmd/internal/core"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Validate a configuration file without starting modules",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			// Decode and validate each module's section on a throwaway
			// instance. Provision is deliberately skipped: a check must not
			// open or create the database.
			ids := config.Resolve(cfg)
			for _, id := range ids {
				info, ok := core.GetModule(id)
				if !ok {
					continue
				}
				mod := info.New()
				if c, ok := mod.(core.Configurable); ok {
					node := cfg.Modules[id]
					if err := c.Configure(&node); err != nil {
						return err
					}
				}
				if v, ok := mod.(core.Validator); ok {
					if err := v.Validate(); err != nil {
						return err
					}
				}
			}

			fmt.Printf("Configuration OK (%d modules)\n", len(ids))
			for _, id := range ids {
				fmt.Printf("  %s\n", id)
			}
			return nil
		},
	}
}

const configTemplate = `version: "1"

modules:
  store.sqlite:
    path: %q

  gateway.http:
    bind: %q

  jobs.cron:
    graphql_url: %q
    log_dir: %q
`

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a configuration file interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, _ := cmd.Flags().GetString("output")

			dbPath := filepath.Join(defaultDataDir(), "crm.db")
			bind := "127.0.0.1:8000"
			logDir := "/tmp"

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("SQLite database path").
						Value(&dbPath),
					huh.NewInput().
						Title("HTTP bind address").
						Value(&bind),
					huh.NewInput().
						Title("Job log directory").
						Value(&logDir),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}

			graphqlURL := fmt.Sprintf("http://%s/graphql", bind)
			rendered := fmt.Sprintf(configTemplate, dbPath, bind, graphqlURL, logDir)

			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(out, []byte(rendered), 0o644); err != nil {
				return err
			}

			fmt.Printf("Configuration written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "crmd.yaml", "Output path for the generated config")
	return cmd
}
