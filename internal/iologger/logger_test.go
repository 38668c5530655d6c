package iologger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/lnsdesign/internal/iologger"
	"github.com/gnames/lnsdesign/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler(t *testing.T) {
	tests := []struct {
		msg, format, level string
		debugVisible       bool
	}{
		{"json info", "json", "info", false},
		{"json debug", "json", "debug", true},
		{"text", "text", "debug", true},
		{"tint", "tint", "warn", false},
		{"unknown format", "xml", "info", false},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := config.LogConfig{Format: v.format, Level: v.level}
			log := slog.New(iologger.NewHandler(&buf, cfg))

			log.Debug("hidden unless debug")
			assert.Equal(t, v.debugVisible, buf.Len() > 0)

			buf.Reset()
			log.Error("visible", "cost", 42)
			assert.Contains(t, buf.String(), "visible")
		})
	}
}

func TestNewHandlerJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.LogConfig{Format: "json", Level: "info"}
	log := slog.New(iologger.NewHandler(&buf, cfg))
	log.Info("search", "worker", "w1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "search", rec["msg"])
	assert.Equal(t, "w1", rec["worker"])
}

func TestInitFile(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	dir := t.TempDir()
	cfg := config.LogConfig{Format: "text", Level: "info", Destination: "file"}

	require.NoError(t, iologger.Init(dir, cfg, false))
	slog.Info("first")
	require.NoError(t, iologger.Init(dir, cfg, true))
	slog.Info("second")

	bs, err := os.ReadFile(filepath.Join(dir, iologger.LogFile))
	require.NoError(t, err)
	assert.Contains(t, string(bs), "first")
	assert.Contains(t, string(bs), "second")
}

func TestInitFileError(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	cfg := config.LogConfig{Destination: "file"}
	err := iologger.Init(filepath.Join(t.TempDir(), "missing"), cfg, false)
	assert.Error(t, err)
}
