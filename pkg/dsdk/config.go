package dsdk

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config selects the BaaS deployment this client talks to.
type Config struct {
	SupabaseURL string `mapstructure:"supabaseUrl"`
	SupabaseKey string `mapstructure:"supabaseKey"`
	RedirectURL string `mapstructure:"redirectUrl"`
	DevMode     bool   `mapstructure:"devMode"`

	v *viper.Viper // instance-specific viper
}

const (
	EnvPrefix  = "DRAWBALL"
	ConfigRoot = ".drawball"

	SupabaseURLKey = "supabaseUrl"
	SupabaseKeyKey = "supabaseKey"
	RedirectURLKey = "redirectUrl"
	DevModeKey     = "devMode"
)

// LoadConfig creates a new Config instance with its own viper; there is no
// global config state. A .env file in the working directory is loaded first
// so DRAWBALL_* variables can live there during development.
func LoadConfig(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	} else {
		// Project config (tracked) - drawball.yaml in the current directory
		for _, name := range []string{"drawball.yaml", "drawball.yml", ".drawball.yaml"} {
			if _, err := os.Stat(name); err == nil {
				v.SetConfigFile(name)
				if err := v.ReadInConfig(); err == nil {
					break
				}
			}
		}

		// Local overrides (untracked) - .drawball/config.yaml
		localConfigPath := filepath.Join(ConfigRoot, "config.yaml")
		if _, err := os.Stat(localConfigPath); err == nil {
			v.SetConfigFile(localConfigPath)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("merging local config: %w", err)
			}
		}
	}

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.v = v
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	if !v.IsSet(SupabaseURLKey) {
		v.SetDefault(SupabaseURLKey, "http://localhost:54321")
	} else {
		normalized := strings.TrimRight(v.GetString(SupabaseURLKey), "/")
		v.Set(SupabaseURLKey, normalized)
	}

	if !v.IsSet(RedirectURLKey) {
		v.SetDefault(RedirectURLKey, "http://localhost:5173/#/reset-password")
	}

	// Email-confirmation enforcement is relaxed against local deployments
	// unless devMode is set explicitly.
	if !v.IsSet(DevModeKey) {
		v.SetDefault(DevModeKey, isLocalURL(v.GetString(SupabaseURLKey)))
	}
}

func isLocalURL(u string) bool {
	return strings.Contains(u, "localhost") || strings.Contains(u, "127.0.0.1")
}

// AuthURL returns the base URL of the identity-provider API.
func (c *Config) AuthURL() string {
	return c.SupabaseURL + "/auth/v1"
}

// RestURL returns the base URL of the data REST API.
func (c *Config) RestURL() string {
	return c.SupabaseURL + "/rest/v1"
}

// Get returns a value from the underlying viper instance. Useful for CLI
// flag binding and dynamic config access.
func (c *Config) Get(key string) interface{} {
	if c.v == nil {
		return nil
	}
	return c.v.Get(key)
}

// GetString returns a string value from the underlying viper instance.
func (c *Config) GetString(key string) string {
	if c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

// Viper returns the underlying viper instance.
func (c *Config) Viper() *viper.Viper {
	return c.v
}

// ConfigFileUsed returns the config file that was used (if any).
func (c *Config) ConfigFileUsed() string {
	if c.v == nil {
		return ""
	}
	return c.v.ConfigFileUsed()
}
