package sqlite

import (
	"context"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/crmd/internal/core"
)

func init() {
	core.RegisterModule(&Module{})
}

// ServiceName is the key under which the store is registered for other
// modules to resolve.
const ServiceName = "store.crm"

// Config is the YAML configuration for the store module.
type Config struct {
	// Path to the SQLite database file. Defaults to <data_dir>/crm.db.
	Path string `yaml:"path"`
}

// Module exposes the SQLite store as the "store.sqlite" module. It opens the
// database during Provision so dependent modules can resolve the store
// service before Start.
type Module struct {
	cfg   Config
	store *SQLStore
}

var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "store.sqlite",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.cfg); err != nil {
		return fmt.Errorf("sqlite: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner. It opens the database and registers
// the store service.
func (m *Module) Provision(ctx *core.AppContext) error {
	if m.cfg.Path == "" {
		m.cfg.Path = filepath.Join(ctx.DataDir, "crm.db")
	}

	st, err := Open(m.cfg.Path)
	if err != nil {
		return err
	}
	m.store = st

	ctx.Logger.Info("database opened", "path", m.cfg.Path)
	return ctx.RegisterService(ServiceName, st)
}

// Stop implements core.Stopper.
func (m *Module) Stop(_ context.Context) error {
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}
