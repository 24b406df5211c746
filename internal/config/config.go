// Package config loads backend configuration from file, environment and
// defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vega-desktop/analytics-backend/pkg/types"
)

// Config is the root configuration for the analytics backend.
type Config struct {
	Server    types.ServerConfig    `mapstructure:"server"`
	Data      types.DataConfig      `mapstructure:"data"`
	Optimizer types.OptimizerConfig `mapstructure:"optimizer"`
}

// Load reads configuration from the given YAML file (optional), with
// VEGA_-prefixed environment variables overriding file values and
// defaults filling the rest.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.websocket_path", "/ws")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.enable_metrics", true)
	v.SetDefault("server.metrics_port", 9090)

	v.SetDefault("data.data_dir", "./data")
	v.SetDefault("data.sample_seed", 42)

	v.SetDefault("optimizer.max_iterations", 200)
	v.SetDefault("optimizer.workers", 4)
	v.SetDefault("optimizer.weights.win_rate", 0.6)
	v.SetDefault("optimizer.weights.cagr", 0.4)
	v.SetDefault("optimizer.weights.drawdown", 0.3)

	v.SetEnvPrefix("VEGA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
