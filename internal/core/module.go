package core

// ModuleID uniquely identifies a module, namespaced with dots
// (e.g. "store.sqlite", "gateway.http", "jobs.cron").
type ModuleID string

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	// ID is the unique, namespaced module identifier.
	ID ModuleID

	// New returns a fresh, unconfigured instance of the module.
	New func() Module
}

// Module is the minimal interface every module implements. Modules opt in to
// lifecycle phases by additionally implementing Configurable, Provisioner,
// Validator, Starter, or Stopper.
type Module interface {
	ModuleInfo() ModuleInfo
}
