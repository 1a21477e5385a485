package cli

import (
	"errors"
	"fmt"
	"io/fs"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/toejough/impmock/report"
)

// ConfigFilename is the config file read from the working directory when
// --config is not given.
const ConfigFilename = ".impdiag.toml"

// Config is the optional TOML configuration. Flags override it.
type Config struct {
	// FailOnUnusedSetups makes summarize fail when any setup was never invoked.
	FailOnUnusedSetups bool `toml:"fail_on_unused_setups"`
	// FailOnUnmatchedCalls makes summarize fail when any call matched no setup.
	FailOnUnmatchedCalls bool `toml:"fail_on_unmatched_calls"`
	// Format is the output format: text, json, or yaml.
	Format string `toml:"format"`
}

// LoadConfig reads the config at path. A missing file yields the zero Config
// unless required is set.
func LoadConfig(fsys afero.Fs, path string, required bool) (Config, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return Config{}, nil
		}

		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cfg.Format != "" {
		if _, err := report.ParseFormat(cfg.Format); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	return cfg, nil
}
