package server

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the standalone scoreboard server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Match  MatchConfig  `yaml:"match"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type MatchConfig struct {
	DataFile       string `yaml:"data_file"`
	StartingPoints int    `yaml:"starting_points"`
}

// DefaultConfig returns the configuration used when no file is provided.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:         "localhost:8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Match: MatchConfig{
			DataFile: "data/match_state.json",
		},
	}
}

// LoadConfig reads a YAML config file. Missing fields keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "localhost:8080"
	}
	if cfg.Match.DataFile == "" {
		cfg.Match.DataFile = "data/match_state.json"
	}
	return cfg, nil
}
