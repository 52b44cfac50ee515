package config

import (
	"slices"
	"strings"
)

// Resolve returns the configured module IDs in start order: storage modules
// first, so the store service is registered before gateway and jobs provision,
// then everything else alphabetically.
func Resolve(cfg *Config) []string {
	ids := make([]string, 0, len(cfg.Modules))
	for id := range cfg.Modules {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		if ra, rb := startRank(a), startRank(b); ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	})
	return ids
}

// startRank places the store namespace ahead of all other modules.
func startRank(id string) int {
	if strings.HasPrefix(id, "store.") {
		return 0
	}
	return 1
}
