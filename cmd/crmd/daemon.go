package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flemzord/crmd/internal/config"
	"github.com/flemzord/crmd/internal/core"

	// Compiled modules register themselves via init().
	_ "github.com/flemzord/crmd/internal/gateway"
	_ "github.com/flemzord/crmd/internal/jobs"
	_ "github.com/flemzord/crmd/internal/store/sqlite"
)

// daemon bundles the loaded configuration and module app so the same code
// path serves `crmd start` and the system service runner.
type daemon struct {
	cfgPath string
	cfg     *config.Config
	app     *core.App
	logger  *slog.Logger
}

// newDaemon loads and validates the configuration at cfgPath (resolving the
// default search path when empty) and loads all configured modules.
func newDaemon(cfgPath string) (*daemon, error) {
	if cfgPath == "" {
		resolved, err := resolveConfigPath()
		if err != nil {
			return nil, err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = defaultDataDir()
	}

	appCtx := core.NewAppContext(logger, dataDir)
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)

	app := core.NewApp(appCtx)
	if err := app.LoadModules(config.Resolve(cfg)); err != nil {
		return nil, err
	}

	return &daemon{cfgPath: cfgPath, cfg: cfg, app: app, logger: logger}, nil
}

// run starts all modules and blocks until a shutdown signal arrives or stop
// is closed.
func (d *daemon) run(stop <-chan struct{}) error {
	return d.app.Run(stop)
}

// resolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/crmd/crmd.yaml → ~/.config/crmd/crmd.yaml → ./crmd.yaml
func resolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "crmd", "crmd.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "crmd", "crmd.yaml"))
	}

	candidates = append(candidates, "crmd.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}

// defaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/crmd if set, otherwise ~/.local/share/crmd per the XDG spec.
func defaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "crmd")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "crmd")
}
