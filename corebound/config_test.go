package corebound

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const configTOML = `
ReplayBufDir = "/var/lib/txcore/replay"

[Round]
RecordCacheCapacity = 50000
RecordCacheBlobBytes = 1048576
RecordCacheTTLSeconds = 120
ConsensusTickNanos = 1

[Round.Config]
MaxPrecedingRecords = 5
MaxFollowingRecords = 15
`

func TestLoadConfigParsesNestedStruct(t *testing.T) {
	path := filepath.Join(t.TempDir(), "txcore.toml")
	require.NoError(t, os.WriteFile(path, []byte(configTOML), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/txcore/replay", cfg.ReplayBufDir)
	require.Equal(t, 50000, cfg.Round.RecordCacheCapacity)
	require.Equal(t, 5, cfg.Round.MaxPrecedingRecords)
	require.Equal(t, 15, cfg.Round.MaxFollowingRecords)
}

func TestLoadConfigRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("NotARealField = 1\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
