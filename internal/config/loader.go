package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/viper"
)

// Load reads a YAML config file over the defaults and expands environment
// references in path and credential fields.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper decodes an already populated viper instance.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.expandEnv()
	return cfg, nil
}

// LoadDefaults is used when no config file exists.
func LoadDefaults() *Config {
	cfg := DefaultConfig()
	cfg.expandEnv()
	return cfg
}

// envRef matches ${NAME} and $NAME.
var envRef = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

func (c *Config) expandEnv() {
	for _, field := range []*string{
		&c.Loader.BaseDir,
		&c.Loader.SupplementaryDir,
		&c.Sink.OutputDir,
		&c.Sink.MySQL.Host,
		&c.Sink.MySQL.User,
		&c.Sink.MySQL.Password,
		&c.Sink.MySQL.Database,
		&c.Logging.Output,
	} {
		*field = expandEnvVar(*field)
	}
}

// expandEnvVar leaves references to unset variables untouched.
func expandEnvVar(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		m := envRef.FindStringSubmatch(ref)
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return ref
	})
}
