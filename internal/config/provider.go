// Package config assembles a merged configuration tree from providers.
// Providers load in registration order; later providers win. Sections of the
// merged tree bind to typed structs through a YAML round trip so that struct
// defaults and tags behave identically for every source format.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"loom/internal/errs"
	"loom/internal/value"
)

// Provider yields one layer of the configuration tree.
type Provider interface {
	// Load returns the provider's tree. A null value means "nothing to add".
	Load() (value.Value, error)
	// Name identifies the provider in error messages.
	Name() string
}

// FileProvider reads a config file, choosing the codec by extension:
// .yaml/.yml, .json, or .toml.
type FileProvider struct {
	Path     string
	Optional bool
}

func (p FileProvider) Name() string { return "file:" + p.Path }

func (p FileProvider) Load() (value.Value, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			if p.Optional {
				return value.Null(), nil
			}
			return value.Null(), errs.Wrap(errs.NotFound, err, "config file %s", p.Path)
		}
		return value.Null(), errs.Wrap(errs.Internal, err, "read config file %s", p.Path)
	}

	var tree map[string]any
	switch strings.ToLower(filepath.Ext(p.Path)) {
	case ".json":
		err = json.Unmarshal(data, &tree)
	case ".toml":
		err = toml.Unmarshal(data, &tree)
	default:
		err = yaml.Unmarshal(data, &tree)
	}
	if err != nil {
		return value.Null(), errs.Wrap(errs.Parse, err, "parse config file %s", p.Path)
	}
	return value.FromAny(tree), nil
}

// EnvProvider overlays environment variables onto the tree.
//
// Keys map as: prefix is stripped, a double underscore becomes a literal
// underscore, a single underscore becomes a hierarchy dot, and the result is
// lowercased. LOOM_LAYERS_SCORE_THRESHOLD=0.8 -> layers.score.threshold.
type EnvProvider struct {
	Prefix string
}

func (p EnvProvider) Name() string { return "env:" + p.Prefix }

func (p EnvProvider) Load() (value.Value, error) {
	prefix := strings.ToUpper(p.Prefix)
	if prefix != "" && !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}

	tree := value.Null()
	for _, kv := range os.Environ() {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			continue
		}
		key, raw := kv[:eq], kv[eq+1:]
		dotted, ok := envKey(key, prefix)
		if !ok {
			continue
		}
		path, err := value.ParsePath(dotted)
		if err != nil {
			continue
		}
		tree = tree.SetPath(path, envValue(raw))
	}
	return tree, nil
}

// envKey strips the prefix and converts an env var name to a dotted path.
func envKey(key, prefix string) (string, bool) {
	if prefix != "" {
		if !strings.HasPrefix(key, prefix) {
			return "", false
		}
		key = key[len(prefix):]
	}
	if key == "" {
		return "", false
	}
	dotted := strings.ReplaceAll(key, "__", "\x00")
	dotted = strings.ReplaceAll(dotted, "_", ".")
	dotted = strings.ReplaceAll(dotted, "\x00", "_")
	dotted = strings.ToLower(dotted)
	if dotted == "" || strings.HasPrefix(dotted, ".") || strings.HasSuffix(dotted, ".") {
		return "", false
	}
	return dotted, true
}

// envValue guesses the scalar type of an env var value.
func envValue(s string) value.Value {
	switch {
	case strings.EqualFold(s, "true"):
		return value.Bool(true)
	case strings.EqualFold(s, "false"):
		return value.Bool(false)
	case strings.EqualFold(s, "null"):
		return value.Null()
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return value.Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.Float(f)
	}
	return value.String(s)
}

// MemoryProvider serves a fixed tree; used by tests.
type MemoryProvider struct {
	Tree value.Value
}

func (p MemoryProvider) Name() string { return "memory" }

func (p MemoryProvider) Load() (value.Value, error) { return p.Tree, nil }
