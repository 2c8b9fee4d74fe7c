// Package config loads application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envFile = "config/.env"

// Load loads configuration from the environment using viper with typed defaults and validation.
// Values in config/.env are used only for variables that are not already set.
func Load() (*Config, error) {
	return load(envFile)
}

func load(dotenv string) (*Config, error) {
	v := viper.New()
	if envMap, err := godotenv.Read(dotenv); err == nil {
		for k, val := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, val)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("http.request_timeout", 10*time.Second)

	v.SetDefault("github.url", "https://api.github.com/graphql")
	v.SetDefault("github.token", "")

	v.SetDefault("gitlab.url", "https://gitlab.com")
	v.SetDefault("gitlab.token", "")

	v.SetDefault("aggregation.targets_file", "config/targets.yaml")
}

func bindEnvs(v *viper.Viper) {
	keys := []string{
		"logging.level",
		"server.host",
		"server.port",
		"server.shutdown_timeout",
		"http.request_timeout",
		"github.url",
		"github.token",
		"gitlab.url",
		"gitlab.token",
		"aggregation.targets_file",
	}

	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}
