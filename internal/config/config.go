package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"icalcodec/internal/contentline"
	"icalcodec/internal/tz"
	"icalcodec/internal/value"
)

// Config is the codec configuration.
type Config struct {
	// FoldWidth is the maximum physical line length in octets.
	FoldWidth int `yaml:"fold_width" json:"fold_width"`

	// SortProperties orders the properties after a component's canonical
	// prefix by name. When false they keep insertion order.
	SortProperties bool `yaml:"sort_properties" json:"sort_properties"`

	// Validate runs the structural validator on every parsed component.
	Validate bool `yaml:"validate" json:"validate"`

	// TolerantComponents and StrictComponents override the built-in
	// tolerance of component kinds. A name listed in both is strict.
	TolerantComponents []string `yaml:"tolerant_components" json:"tolerant_components"`
	StrictComponents   []string `yaml:"strict_components" json:"strict_components"`

	// InferValue lists the VALUE names for which a VALUE parameter is
	// written when a value's kind differs from the property default.
	InferValue []string `yaml:"infer_value" json:"infer_value"`

	// RRuleCutoffYear bounds the expansion of open-ended timezone rules.
	RRuleCutoffYear int `yaml:"rrule_cutoff_year" json:"rrule_cutoff_year"`

	// SynthFirstYear and SynthLastYear bound timezone synthesis from the
	// system zone database.
	SynthFirstYear int `yaml:"synth_first_year" json:"synth_first_year"`
	SynthLastYear  int `yaml:"synth_last_year" json:"synth_last_year"`

	// LogLevel is DEBUG, INFO or ERROR.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		FoldWidth:          contentline.DefaultWidth,
		SortProperties:     true,
		Validate:           true,
		TolerantComponents: []string{},
		StrictComponents:   []string{},
		InferValue:         []string{"DATE", "DATE-TIME", "TIME", "PERIOD", "DURATION"},
		RRuleCutoffYear:    tz.DefaultCutoffYear,
		SynthFirstYear:     1970,
		SynthLastYear:      tz.DefaultCutoffYear,
		LogLevel:           "INFO",
	}
}

// Normalize fills in missing or out of range values so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	switch {
	case c.FoldWidth <= 0, c.FoldWidth > contentline.DefaultWidth:
		c.FoldWidth = contentline.DefaultWidth
	case c.FoldWidth < contentline.MinWidth:
		c.FoldWidth = contentline.MinWidth
	}
	c.TolerantComponents = upper(c.TolerantComponents)
	c.StrictComponents = upper(c.StrictComponents)
	if c.InferValue == nil {
		c.InferValue = DefaultConfig().InferValue
	}
	c.InferValue = upper(c.InferValue)
	if c.RRuleCutoffYear <= 0 {
		c.RRuleCutoffYear = tz.DefaultCutoffYear
	}
	if c.SynthFirstYear <= 0 {
		c.SynthFirstYear = 1970
	}
	if c.SynthLastYear <= c.SynthFirstYear {
		c.SynthLastYear = c.SynthFirstYear + 1
		if c.SynthFirstYear < tz.DefaultCutoffYear {
			c.SynthLastYear = tz.DefaultCutoffYear
		}
	}
	switch strings.ToUpper(strings.TrimSpace(c.LogLevel)) {
	case "DEBUG", "INFO", "ERROR":
		c.LogLevel = strings.ToUpper(strings.TrimSpace(c.LogLevel))
	default:
		c.LogLevel = "INFO"
	}
}

func upper(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// InferKinds converts InferValue into the inference table used by the
// value codec.
func (c *Config) InferKinds() (map[value.Kind]bool, error) {
	out := make(map[value.Kind]bool, len(c.InferValue))
	for _, name := range c.InferValue {
		k, ok := value.KindFromValueParam(name)
		if !ok {
			return nil, fmt.Errorf("infer_value: unknown value type %q", name)
		}
		out[k] = true
	}
	return out, nil
}

// Tolerance returns the per-component tolerance overrides.
func (c *Config) Tolerance() map[string]bool {
	out := make(map[string]bool, len(c.TolerantComponents)+len(c.StrictComponents))
	for _, name := range c.TolerantComponents {
		out[name] = true
	}
	for _, name := range c.StrictComponents {
		out[name] = false
	}
	return out
}

// Parse reads YAML on top of the defaults and normalizes the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if _, err := cfg.InferKinds(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML over the defaults
//   - normalize
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}
	return Parse(data)
}

// Save writes cfg to path atomically via a temp file and rename, with 0600
// permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".icalcodec-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
