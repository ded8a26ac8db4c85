// Package config loads the table store's runtime configuration from an
// optional YAML file, overridable by CLI flags composed from cobra
// persistent flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/cuemby/tablestore/pkg/types"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Store holds the settings a running tablestore process needs: where to
// keep its data, how often to snapshot, the default query page size,
// the default service-properties record seeded for a brand-new account,
// and logging verbosity.
type Store struct {
	DataDir          string        `yaml:"data_dir"`
	AutosaveInterval time.Duration `yaml:"autosave_interval"`
	QueryPageSize    int           `yaml:"query_page_size"`
	LogLevel         string        `yaml:"log_level"`
	LogJSON          bool          `yaml:"log_json"`

	// DefaultServiceProperties is the record GetServiceProperties returns
	// (with AccountName set to the requested account) for an account that
	// has no stored record yet, instead of the all-zero-value record it
	// otherwise returns. It is not written to the store by itself.
	DefaultServiceProperties *types.ServiceProperties `yaml:"default_service_properties"`
}

// Default returns the configuration a fresh install starts from: a
// "./data" data directory, a 5s autosave interval matching the
// durable-collection store's own snapshot ticker, a 1000-row default
// query page, and info-level console logging.
func Default() *Store {
	return &Store{
		DataDir:          "./data",
		AutosaveInterval: 5 * time.Second,
		QueryPageSize:    1000,
		LogLevel:         "info",
	}
}

// Load reads a YAML config file into a Store seeded with Default()'s
// values, so fields the file omits keep their defaults. A missing file
// is not an error — it's the expected first-run state — and Load
// returns Default() unchanged in that case.
func Load(path string) (*Store, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyFlags overrides cfg's fields with any flags the caller explicitly
// set on flags (a cobra Command's Flags()/PersistentFlags(), both of
// which return a *pflag.FlagSet). Flags left at their zero value (never
// set by the user) leave cfg untouched.
func (c *Store) ApplyFlags(flags *pflag.FlagSet) error {
	if flags.Changed("data-dir") {
		v, err := flags.GetString("data-dir")
		if err != nil {
			return err
		}
		c.DataDir = v
	}
	if flags.Changed("autosave-interval") {
		v, err := flags.GetDuration("autosave-interval")
		if err != nil {
			return err
		}
		c.AutosaveInterval = v
	}
	if flags.Changed("query-page-size") {
		v, err := flags.GetInt("query-page-size")
		if err != nil {
			return err
		}
		c.QueryPageSize = v
	}
	if flags.Changed("log-level") {
		v, err := flags.GetString("log-level")
		if err != nil {
			return err
		}
		c.LogLevel = v
	}
	if flags.Changed("log-json") {
		v, err := flags.GetBool("log-json")
		if err != nil {
			return err
		}
		c.LogJSON = v
	}
	return nil
}
