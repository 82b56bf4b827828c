package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Backend struct {
		BaseURL        string `mapstructure:"base_url"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
		// APIKeyEnv names the environment variable holding the bearer
		// token. The variable is read on every outbound request, not here.
		APIKeyEnv string `mapstructure:"api_key_env"`
	} `mapstructure:"backend"`
	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`
	Cache struct {
		SearchTTLSeconds int `mapstructure:"search_ttl_seconds"`
	} `mapstructure:"cache"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// BackendTimeout returns the per-call gateway timeout.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// SearchTTL returns how long cached search results stay fresh.
func (c *Config) SearchTTL() time.Duration {
	return time.Duration(c.Cache.SearchTTLSeconds) * time.Second
}

// LoadConfig loads the configuration from a file and the environment. An
// empty path falls back to config.yaml in the working directory or ./config.
// A missing file is not an error: env-only deployments are a supported
// configuration source, matching the request-time credential model.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("R2RMCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend.base_url", "http://localhost:7272")
	v.SetDefault("backend.timeout_seconds", 30)
	v.SetDefault("backend.api_key_env", "R2R_API_KEY")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("cache.search_ttl_seconds", 300)
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(config.Backend.BaseURL), "/")

	return &config, nil
}
