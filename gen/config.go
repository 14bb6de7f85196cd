package gen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jnigen/jnigen/internal/directive"
)

// ConfigFile is the optional project configuration file name.
const ConfigFile = "jnigen.toml"

// Config holds project-level generation settings. Every field is
// optional; directive options always win over config defaults.
type Config struct {
	// Namespace and Class fill in mangle directives that omit the
	// corresponding option.
	Namespace string `toml:"namespace"`
	Class     string `toml:"class"`

	// Tag is the build tag marking template files.
	// Default: "jnigen".
	Tag string `toml:"tag"`

	// Suffix replaces the template file's ".go" on generated files.
	// Default: "_jni.go".
	Suffix string `toml:"suffix"`
}

// LoadConfig reads jnigen.toml from dir. A missing file is not an error
// and yields the defaults; unknown keys are rejected so typos do not
// silently disable settings.
func LoadConfig(dir string) (*Config, error) {
	cfg := &Config{}

	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return applyConfigDefaults(cfg), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
	}

	return applyConfigDefaults(cfg), nil
}

// applyConfigDefaults applies default values to Config.
func applyConfigDefaults(cfg *Config) *Config {
	// Make a copy to avoid mutating the input
	result := Config{}
	if cfg != nil {
		result = *cfg
	}

	if result.Tag == "" {
		result.Tag = directive.DefaultTag
	}
	if result.Suffix == "" {
		result.Suffix = "_jni.go"
	}

	return &result
}

// OutputName derives the generated file name for a template file:
// "bindings.go" becomes "bindings_jni.go" under the default suffix.
func (c *Config) OutputName(templatePath string) string {
	base := filepath.Base(templatePath)
	return strings.TrimSuffix(base, ".go") + c.Suffix
}
