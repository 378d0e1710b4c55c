package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and XDG_CONFIG_HOME at fresh temp directories.
func isolate(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPath, cfg.DefaultPath)
	assert.Equal(t, DefaultMinSize, cfg.MinSize)
	assert.Equal(t, DefaultHash, cfg.Hash)
	assert.Equal(t, DefaultExclusions, cfg.Exclude)
	assert.Empty(t, cfg.Include)
	assert.False(t, cfg.Strict)
	assert.False(t, cfg.Absolute)
	assert.Zero(t, cfg.Workers.Dir)
	assert.Zero(t, cfg.Workers.Hash)

	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.Path)
	assert.Equal(t, "10MB", cfg.Logging.Rotation.MaxSize)
	assert.Equal(t, 30, cfg.Logging.Rotation.MaxAge)
	assert.Equal(t, 5, cfg.Logging.Rotation.MaxBackups)
	assert.True(t, cfg.Logging.Rotation.Daily)
	assert.Equal(t, "info", cfg.Logging.Components["scanner"])
}

func TestLoad_FromFile(t *testing.T) {
	home := isolate(t)

	configDir := filepath.Join(home, ".config", "dupsweep")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	content := `
default_path: ~/photos
min_size: 1KiB
exclude:
  - "*.tmp"
  - node_modules
hash: blake3
strict: true
workers:
  dir: 2
  hash: 6
logging:
  level: debug
  components:
    resolve: warn
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "photos"), cfg.DefaultPath)
	assert.Equal(t, "1KiB", cfg.MinSize)
	assert.Equal(t, []string{"*.tmp", "node_modules"}, cfg.Exclude)
	assert.Equal(t, "blake3", cfg.Hash)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 2, cfg.Workers.Dir)
	assert.Equal(t, 6, cfg.Workers.Hash)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "warn", cfg.Logging.Components["resolve"])
}

func TestLoad_XDGConfigHome(t *testing.T) {
	isolate(t)

	xdgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdgHome)

	configDir := filepath.Join(xdgHome, "dupsweep")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("hash: sha256\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sha256", cfg.Hash)
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("DUPSWEEP_MIN_SIZE", "10M")
	t.Setenv("DUPSWEEP_WORKERS_HASH", "3")
	t.Setenv("DUPSWEEP_STRICT", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "10M", cfg.MinSize)
	assert.Equal(t, 3, cfg.Workers.Hash)
	assert.True(t, cfg.Strict)
}

func TestLoad_InvalidFile(t *testing.T) {
	home := isolate(t)

	configDir := filepath.Join(home, ".config", "dupsweep")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("exclude: [unclosed\n"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestConfigDir(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME", func(t *testing.T) {
		xdgHome := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", xdgHome)

		dir, err := ConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(xdgHome, "dupsweep"), dir)
	})

	t.Run("falls back to home", func(t *testing.T) {
		home := isolate(t)

		dir, err := ConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "dupsweep"), dir)

		file, err := ConfigFile()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "config.yaml"), file)
	})
}

func TestWriteDefault(t *testing.T) {
	isolate(t)

	path, err := WriteDefault()
	require.NoError(t, err)
	assert.FileExists(t, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultPath, cfg.DefaultPath)
	assert.Equal(t, DefaultMinSize, cfg.MinSize)
	assert.Equal(t, DefaultHash, cfg.Hash)
	assert.Equal(t, DefaultExclusions, cfg.Exclude)

	t.Run("does not overwrite", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("hash: xxhash\n"), 0o644))

		again, err := WriteDefault()
		require.NoError(t, err)
		assert.Equal(t, path, again)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hash: xxhash\n", string(data))
	})
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "expands tilde", input: "~/data/dupes", want: filepath.Join(homeDir, "data/dupes")},
		{name: "tilde only", input: "~", want: homeDir},
		{name: "absolute unchanged", input: "/srv/media", want: "/srv/media"},
		{name: "relative unchanged", input: "media", want: "media"},
		{name: "tilde user form unchanged", input: "~other/media", want: "~other/media"},
		{name: "empty unchanged", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	assert.Equal(t, DefaultPath, v.GetString("default_path"))
	assert.Equal(t, DefaultHash, v.GetString("hash"))
	assert.Equal(t, 0, v.GetInt("workers.dir"))
	assert.Equal(t, DefaultExclusions, v.GetStringSlice("exclude"))
}

func TestStateDir(t *testing.T) {
	dir := StateDir()
	assert.True(t, filepath.IsAbs(dir))
	assert.Equal(t, "dupsweep", filepath.Base(dir))
}
