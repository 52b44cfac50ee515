package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envPattern matches ${VAR} and ${VAR:-default} expressions.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// Load reads a YAML configuration file, expands environment variables, and
// parses it into a Config. Unknown top-level keys are rejected so a typo like
// "module:" does not silently produce an empty daemon.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(expanded))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: %s is empty", path)
		}
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}

// expandEnv substitutes ${VAR} and ${VAR:-default} in raw YAML bytes. The
// environment wins over the default. Variables with neither are collected and
// reported together in a single error.
func expandEnv(raw []byte) ([]byte, error) {
	matches := envPattern.FindAllSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return raw, nil
	}

	var out bytes.Buffer
	var missing []string
	seen := make(map[string]bool)
	last := 0

	for _, m := range matches {
		out.Write(raw[last:m[0]])
		last = m[1]

		name := string(raw[m[2]:m[3]])
		if value, ok := os.LookupEnv(name); ok {
			out.WriteString(value)
			continue
		}
		if m[4] >= 0 {
			out.Write(raw[m[4]:m[5]])
			continue
		}

		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		out.Write(raw[m[0]:m[1]])
	}
	out.Write(raw[last:])

	if len(missing) > 0 {
		return nil, fmt.Errorf("unresolved variables: %s", strings.Join(missing, ", "))
	}
	return out.Bytes(), nil
}
