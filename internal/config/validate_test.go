package config

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	// Register the real modules so validation runs against the same registry
	// the daemon uses.
	_ "github.com/flemzord/crmd/internal/gateway"
	_ "github.com/flemzord/crmd/internal/jobs"
	_ "github.com/flemzord/crmd/internal/store/sqlite"
)

// fullModules returns config entries for every module crmd ships.
func fullModules() map[string]yaml.Node {
	return map[string]yaml.Node{
		"store.sqlite": {},
		"gateway.http": {},
		"jobs.cron":    {},
	}
}

func TestValidate_FullConfig(t *testing.T) {
	t.Parallel()

	cfg := &Config{Version: "1", Modules: fullModules()}
	if err := Validate(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidate_MissingVersion(t *testing.T) {
	t.Parallel()

	cfg := &Config{Modules: fullModules()}
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Fatalf("err = %v, want version complaint", err)
	}
}

func TestValidate_UnsupportedVersion(t *testing.T) {
	t.Parallel()

	cfg := &Config{Version: "2", Modules: fullModules()}
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("err = %v, want unsupported version", err)
	}
}

func TestValidate_NoModules(t *testing.T) {
	t.Parallel()

	cfg := &Config{Version: "1", Modules: map[string]yaml.Node{}}
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "at least one") {
		t.Fatalf("err = %v, want at-least-one-module complaint", err)
	}
}

func TestValidate_UnknownModule(t *testing.T) {
	t.Parallel()

	modules := fullModules()
	modules["store.postgres"] = yaml.Node{}
	cfg := &Config{Version: "1", Modules: modules}

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), `unknown module "store.postgres"`) {
		t.Fatalf("err = %v, want unknown module store.postgres", err)
	}
}

func TestValidate_ModuleWithoutEntry(t *testing.T) {
	t.Parallel()

	modules := fullModules()
	delete(modules, "jobs.cron")
	cfg := &Config{Version: "1", Modules: modules}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error: jobs.cron takes configuration but has no entry")
	}
	if !strings.Contains(err.Error(), "jobs.cron") || !strings.Contains(err.Error(), "requires configuration") {
		t.Errorf("err = %v", err)
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	t.Parallel()

	modules := fullModules()
	modules["cache.redis"] = yaml.Node{}
	cfg := &Config{Version: "99", Modules: modules}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"unsupported", "cache.redis"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("err = %v, want mention of %q", err, want)
		}
	}
}
