// Package gateway exposes the CRM over HTTP: the GraphQL endpoint, health
// and status probes, and Prometheus metrics.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/crmd/internal/core"
	"github.com/flemzord/crmd/internal/graphql"
	"github.com/flemzord/crmd/internal/store"
	"github.com/flemzord/crmd/internal/store/sqlite"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// Gateway is the HTTP gateway module. It is a leaf module — nothing imports it.
type Gateway struct {
	config    Config
	appCtx    *core.AppContext
	logger    *slog.Logger
	server    *http.Server
	metrics   *Metrics
	startedAt time.Time

	// Resolved lazily at Start() via service registry.
	store store.Store
}

var (
	_ core.Module       = (*Gateway)(nil)
	_ core.Configurable = (*Gateway)(nil)
	_ core.Provisioner  = (*Gateway)(nil)
	_ core.Validator    = (*Gateway)(nil)
	_ core.Starter      = (*Gateway)(nil)
	_ core.Stopper      = (*Gateway)(nil)
)

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.config.defaults()
	g.appCtx = ctx
	g.logger = ctx.Logger
	g.metrics = &Metrics{}
	return nil
}

// Validate implements core.Validator. It checks a defaulted copy of the
// config so it also works standalone, before Provision (`crmd config check`).
func (g *Gateway) Validate() error {
	cfg := g.config
	cfg.defaults()
	if _, err := net.ResolveTCPAddr("tcp", cfg.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + cfg.Bind)
	}
	return nil
}

// Start implements core.Starter. It resolves the store from the service
// registry (lazy binding) and starts the HTTP server.
func (g *Gateway) Start() error {
	svc, err := g.appCtx.Service(sqlite.ServiceName)
	if err != nil {
		return fmt.Errorf("gateway: resolve store: %w", err)
	}
	st, ok := svc.(store.Store)
	if !ok {
		return fmt.Errorf("gateway: service %q is not a store", sqlite.ServiceName)
	}
	g.store = st

	schema, err := graphql.NewSchema(g.store)
	if err != nil {
		return fmt.Errorf("gateway: build schema: %w", err)
	}

	g.startedAt = time.Now()

	mux := g.buildRouter(graphql.Handler(schema))

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      mux,
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Bind)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
