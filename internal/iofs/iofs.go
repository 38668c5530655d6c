// Package iofs prepares the file system layout of lnsdesign.
package iofs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/gnames/lnsdesign/pkg/config"
)

//go:embed config.yaml
var ConfigYAML string

// EnsureDirs creates config, cache and log directories.
func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.CacheDir(homeDir),
		config.LogDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

// EnsureConfigFile writes the default config.yaml unless it exists.
func EnsureConfigFile(homeDir string) error {
	configPath := config.ConfigFilePath(homeDir)

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	if err := touchDir(filepath.Dir(configPath)); err != nil {
		return err
	}

	if err := os.WriteFile(configPath, []byte(ConfigYAML), 0644); err != nil {
		return CopyFileError(configPath, err)
	}

	return nil
}

// CheckFile returns ReadFileError if path is missing or a directory.
func CheckFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return ReadFileError(path, err)
	}
	if info.IsDir() {
		return ReadFileError(path, os.ErrInvalid)
	}
	return nil
}
