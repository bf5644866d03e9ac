package codebase

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/codedom/format"
)

// ConfigFiles are the names looked for by FindConfig, in order of
// preference within one directory.
var ConfigFiles = []string{"codedom.toml", ".codedom.yaml", ".codedom.yml"}

type Config struct {
	// Path is the file the configuration was read from, empty for the
	// defaults.
	Path   string       `toml:"-" yaml:"-"`
	Format FormatConfig `toml:"format" yaml:"format"`
	Check  CheckConfig  `toml:"check" yaml:"check"`
}

type FormatConfig struct {
	// Indent is the number of spaces per level, or 0 for a tab.
	Indent     int  `toml:"indent" yaml:"indent"`
	AlignEnums bool `toml:"align_enums" yaml:"align_enums"`
}

type CheckConfig struct {
	Jobs int `toml:"jobs" yaml:"jobs"`
	// Exclude holds gitignore-style patterns of files to skip.
	Exclude []string `toml:"exclude" yaml:"exclude"`
	// Cache enables the diagnostics cache.
	Cache bool `toml:"cache" yaml:"cache"`
}

func DefaultConfig() Config {
	return Config{Format: FormatConfig{Indent: 4}}
}

// Root returns the directory holding the configuration file, or dir when
// the defaults are in use.
func (c Config) Root(dir string) string {
	if c.Path == "" {
		return dir
	}
	return filepath.Dir(c.Path)
}

// FormatOptions returns the printer options the configuration asks for.
func (c Config) FormatOptions() []format.Option {
	indent := "\t"
	if c.Format.Indent > 0 {
		indent = strings.Repeat(" ", c.Format.Indent)
	}
	return []format.Option{format.WithIndent(indent), format.WithAlignedEnums(c.Format.AlignEnums)}
}

// FindConfig walks up from startDir looking for a configuration file. ok
// is false when none exists.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range ConfigFiles {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadConfig finds and reads the configuration for startDir. Without a
// configuration file it returns the defaults.
func LoadConfig(startDir string) (Config, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil || !ok {
		return DefaultConfig(), err
	}
	return ReadConfig(path)
}

// ReadConfig reads one configuration file, TOML or YAML by extension.
// Keys missing from the file keep their default values.
func ReadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	switch filepath.Ext(path) {
	case ".toml":
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			log.Warningf("%s: unknown keys %v", path, undecoded)
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return Config{}, err
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("%s: unknown configuration format", path)
	}
	if cfg.Format.Indent < 0 {
		return Config{}, fmt.Errorf("%s: [format].indent must not be negative", path)
	}
	cfg.Path = path
	log.Debugf("read configuration from %s", path)
	return cfg, nil
}
