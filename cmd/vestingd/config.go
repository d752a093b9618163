package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Anya-org/Anya-core-sub010/vesting"
)

// AdminConfig maps an API key onto an administrator identity.
type AdminConfig struct {
	ID     string `yaml:"id"`
	APIKey string `yaml:"api_key"`
}

type Config struct {
	ListenAddr    string        `yaml:"listen_addr"`
	DataDir       string        `yaml:"data_dir"`
	InMemory      bool          `yaml:"in_memory"`
	TotalSupply   uint64        `yaml:"total_supply"`
	TicksPerMonth uint64        `yaml:"ticks_per_month"`
	Admins        []AdminConfig `yaml:"admins"`
}

func defaultConfig() *Config {
	return &Config{
		ListenAddr:    ":8080",
		DataDir:       "./data",
		TotalSupply:   vesting.DefaultTotalSupply,
		TicksPerMonth: vesting.DefaultTicksPerMonth,
	}
}

func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	for _, admin := range cfg.Admins {
		if admin.ID == "" || admin.APIKey == "" {
			return nil, fmt.Errorf("config %s: admins require both id and api_key", path)
		}
	}

	return cfg, nil
}
