package c3

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/c3kit/c3/address"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "cipher", cfg.Mode)
	assert.Equal(t, address.DefaultMaxRetries, cfg.MaxSliceRetries)
	assert.Nil(t, cfg.Seed)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad mode", func(c *Config) { c.Mode = "lazy" }, "Mode"},
		{"bad cipher", func(c *Config) { c.Cipher = "aes" }, "Cipher"},
		{"bad allocator", func(c *Config) { c.Allocator = "slab" }, "Allocator"},
		{"wide pointer key", func(c *Config) { c.PointerKey = 1 << 24 }, "PointerKey"},
		{"wide data key", func(c *Config) { c.DataKey = 1 << 24 }, "DataKey"},
		{"empty window", func(c *Config) { c.AddressLow = 4096; c.AddressHigh = 4096 }, "AddressHigh"},
		{"negative budget", func(c *Config) { c.MaxTrackedBytes = -1 }, "MaxTrackedBytes"},
		{"window above 2^47", func(c *Config) { c.AddressHigh = 1 << 48 }, "address_high"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c3.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: random
cipher: feistel
pointer_key: 1193046
data_key: 42
address_low: 65536
address_high: 1048576
allocator: bump
strict_free: true
seed: 99
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "random", cfg.Mode)
	assert.Equal(t, CipherFeistel, cfg.Cipher)
	assert.Equal(t, uint32(0x123456), cfg.PointerKey)
	assert.Equal(t, uint32(42), cfg.DataKey)
	assert.Equal(t, uint64(0x10000), cfg.AddressLow)
	assert.Equal(t, uint64(0x100000), cfg.AddressHigh)
	assert.Equal(t, "bump", cfg.Allocator)
	assert.True(t, cfg.StrictFree)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(99), *cfg.Seed)
	// untouched fields keep their defaults
	assert.Equal(t, DefaultMaxTrackedBytes, cfg.MaxTrackedBytes)

	m, err := New(cfg)
	require.NoError(t, err)
	defer m.Close()
	assert.Equal(t, address.ModeRandom, m.Mode())

	ca, err := m.Allocate(10)
	require.NoError(t, err)
	require.NoError(t, m.Store(ca, []byte("hello")))
	got, err := m.Read(ca, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("mode: [unterminated"), 0o600))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("mode: sometimes\n"), 0o600))
	_, err = LoadConfig(invalid)
	assert.ErrorContains(t, err, "Mode")
}

func TestNew_RandomKeys(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)
	defer a.Close()
	b, err := New(DefaultConfig())
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.SpaceID(), b.SpaceID())

	ca, err := a.Allocate(10)
	require.NoError(t, err)
	require.NoError(t, a.Store(ca, []byte("x")))
	got, err := a.Read(ca, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
}
