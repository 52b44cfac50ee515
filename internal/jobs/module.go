package jobs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/crmd/internal/auditlog"
	"github.com/flemzord/crmd/internal/core"
	"github.com/flemzord/crmd/internal/store"
	"github.com/flemzord/crmd/internal/store/sqlite"
)

func init() {
	core.RegisterModule(&Module{})
}

// Log file names, one per job, created under Config.LogDir.
const (
	cleanupLogFile   = "customer_cleanup_log.txt"
	remindersLogFile = "order_reminders_log.txt"
	heartbeatLogFile = "crm_heartbeat_log.txt"
	lowStockLogFile  = "low_stock_updates_log.txt"
	reportLogFile    = "crm_report_log.txt"
)

// jobNames are the valid keys for Config.Schedules, one per job Build returns.
var jobNames = map[string]struct{}{
	"customer_cleanup": {},
	"order_reminders":  {},
	"heartbeat":        {},
	"stock_replenish":  {},
	"weekly_report":    {},
}

// Config is the YAML configuration for the jobs module.
type Config struct {
	// GraphQLURL is the endpoint the heartbeat probes.
	// Defaults to http://localhost:8000/graphql.
	GraphQLURL string `yaml:"graphql_url"`

	// LogDir holds the per-job audit log files. Defaults to /tmp.
	LogDir string `yaml:"log_dir"`

	// Schedules overrides the default cron expression per job name.
	Schedules map[string]string `yaml:"schedules"`
}

func (c Config) withDefaults() Config {
	if c.GraphQLURL == "" {
		c.GraphQLURL = "http://localhost:8000/graphql"
	}
	if c.LogDir == "" {
		c.LogDir = "/tmp"
	}
	return c
}

// Build constructs all CRM jobs against the given store. Shared between the
// daemon's scheduler and the one-shot `crmd jobs run` command.
func Build(cfg Config, st store.Store, ctx *core.AppContext) []Job {
	cfg = cfg.withDefaults()
	sink := func(file string) auditlog.Sink {
		return auditlog.NewFileSink(filepath.Join(cfg.LogDir, file))
	}

	return []Job{
		&CustomerCleanupJob{
			Store:        st,
			Sink:         sink(cleanupLogFile),
			Logger:       ctx.Logger,
			ScheduleExpr: cfg.Schedules["customer_cleanup"],
		},
		&OrderReminderJob{
			Store:        st,
			Sink:         sink(remindersLogFile),
			Logger:       ctx.Logger,
			ScheduleExpr: cfg.Schedules["order_reminders"],
		},
		&HeartbeatJob{
			GraphQLURL:   cfg.GraphQLURL,
			Sink:         sink(heartbeatLogFile),
			Logger:       ctx.Logger,
			ScheduleExpr: cfg.Schedules["heartbeat"],
		},
		&StockReplenishJob{
			Store:        st,
			Sink:         sink(lowStockLogFile),
			Logger:       ctx.Logger,
			ScheduleExpr: cfg.Schedules["stock_replenish"],
		},
		&WeeklyReportJob{
			Store:        st,
			Sink:         sink(reportLogFile),
			Logger:       ctx.Logger,
			ScheduleExpr: cfg.Schedules["weekly_report"],
		},
	}
}

// Module runs the CRM jobs on their cron schedules as the "jobs.cron" module.
type Module struct {
	cfg       Config
	appCtx    *core.AppContext
	scheduler *Scheduler
}

var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "jobs.cron",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.cfg); err != nil {
		return fmt.Errorf("jobs: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.cfg = m.cfg.withDefaults()
	m.appCtx = ctx
	m.scheduler = NewScheduler(ctx.Logger)
	return nil
}

// Validate implements core.Validator. Every schedule override must name a
// known job and parse as a 5-field cron expression, so a typo fails
// `crmd config check` and daemon load instead of the scheduler at Start.
func (m *Module) Validate() error {
	var errs []error
	for name, expr := range m.cfg.Schedules {
		if _, ok := jobNames[name]; !ok {
			errs = append(errs, fmt.Errorf("jobs: schedule for unknown job %q", name))
			continue
		}
		if _, err := scheduleParser.Parse(expr); err != nil {
			errs = append(errs, fmt.Errorf("jobs: invalid schedule %q for job %q: %w", expr, name, err))
		}
	}
	return errors.Join(errs...)
}

// Start implements core.Starter. The store service is resolved here, after
// every module has provisioned.
func (m *Module) Start() error {
	svc, err := m.appCtx.Service(sqlite.ServiceName)
	if err != nil {
		return fmt.Errorf("jobs: resolve store: %w", err)
	}
	st, ok := svc.(store.Store)
	if !ok {
		return fmt.Errorf("jobs: service %q is not a store", sqlite.ServiceName)
	}

	for _, j := range Build(m.cfg, st, m.appCtx) {
		if err := m.scheduler.RegisterJob(j); err != nil {
			return err
		}
	}
	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	if m.scheduler == nil {
		return nil
	}
	return m.scheduler.Stop(ctx)
}
