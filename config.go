package smartrade

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration, one YAML file per installation.
type Config struct {
	// DataDir is the store folder; defaults to ~/.smartrade next to the
	// config file's folder when empty.
	DataDir string `yaml:"data_dir"`
	// Account is the default brokerage account number; only its last four
	// digits are kept and matched.
	Account string `yaml:"account"`
	// PolygonAPIKey authorizes market data requests; quotes are skipped
	// without it.
	PolygonAPIKey string `yaml:"polygon_api_key"`
	// CacheDir holds cached market data responses.
	CacheDir string `yaml:"cache_dir"`
}

// DefaultConfigPath is where LoadConfig looks when no path is given.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "smartrade.yaml"
	}
	return filepath.Join(home, ".smartrade", "config.yaml")
}

// LoadConfig reads and validates a YAML config file. A missing file yields
// a usable default configuration.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	c := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to defaults
	case err != nil:
		return nil, fmt.Errorf("cannot read config %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("cannot parse config %q: %w", path, err)
		}
	}
	if c.DataDir == "" {
		c.DataDir = filepath.Join(filepath.Dir(path), "data")
	}
	if c.CacheDir == "" {
		c.CacheDir = filepath.Join(filepath.Dir(path), "cache")
	}
	c.Account = AccountSuffix(c.Account)
	return c, nil
}

// AccountSuffix normalizes an account number to its last four characters,
// the form stored on every transaction.
func AccountSuffix(account string) string {
	if len(account) <= 4 {
		return account
	}
	return account[len(account)-4:]
}
