package iofs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/lnsdesign/pkg/config"
	"github.com/gnames/lnsdesign/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEnsureDirs(t *testing.T) {
	home := t.TempDir()

	// repeated calls are fine
	for range 2 {
		require.NoError(t, EnsureDirs(home))
	}

	dirs := []string{
		filepath.Join(home, ".config", "lnsdesign"),
		filepath.Join(home, ".cache", "lnsdesign"),
		filepath.Join(home, ".local", "share", "lnsdesign", "logs"),
	}
	for _, v := range dirs {
		info, err := os.Stat(v)
		require.NoError(t, err)
		assert.True(t, info.IsDir(), v)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	}
}

func TestEnsureConfigFile(t *testing.T) {
	home := t.TempDir()
	path := config.ConfigFilePath(home)

	require.NoError(t, EnsureConfigFile(home))
	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ConfigYAML, string(bs))

	custom := "log:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(custom), 0644))
	require.NoError(t, EnsureConfigFile(home))
	bs, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, custom, string(bs), "existing file is kept")
}

// Embedded config must agree with the defaults of config.New.
func TestConfigYAMLDefaults(t *testing.T) {
	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(ConfigYAML), &cfg))

	def := config.New()
	assert.Equal(t, def.MultiSearch, cfg.MultiSearch)
	assert.Equal(t, def.Database, cfg.Database)
	assert.Equal(t, def.Log, cfg.Log)
	assert.Equal(t, def.Benchmark, cfg.Benchmark)
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "w.sqlite")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	assert.NoError(t, CheckFile(path))

	for _, v := range []string{dir, filepath.Join(dir, "none")} {
		err := CheckFile(v)
		require.Error(t, err)
		gnErr, ok := err.(*gn.Error)
		require.True(t, ok)
		assert.Equal(t, errcode.ReadFileError, gnErr.Code)
	}
}
