package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Anya-org/Anya-core-sub010/vesting"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, vesting.DefaultTotalSupply, cfg.TotalSupply)
	require.Equal(t, vesting.DefaultTicksPerMonth, cfg.TicksPerMonth)
	require.Empty(t, cfg.Admins)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
listen_addr: ":9090"
data_dir: /var/lib/vestingd
total_supply: 1000000
ticks_per_month: 100
admins:
  - id: foundation
    api_key: secret
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0600))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ListenAddr)
	require.Equal(t, "/var/lib/vestingd", cfg.DataDir)
	require.Equal(t, uint64(1_000_000), cfg.TotalSupply)
	require.Equal(t, uint64(100), cfg.TicksPerMonth)
	require.Equal(t, []AdminConfig{{ID: "foundation", APIKey: "secret"}}, cfg.Admins)
}

func TestLoadConfigRejectsIncompleteAdmins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
admins:
  - id: foundation
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0600))

	_, err := loadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig("/does/not/exist.yaml")
	require.Error(t, err)
}
