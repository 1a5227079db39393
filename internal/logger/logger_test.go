package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/survival-game/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestBuildWritesRotatedFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.LogConfig{
		Level:  "debug",
		Format: "json",
		Output: "file",
		File: config.LogFileConfig{
			Path:     dir,
			Filename: "test.log",
			MaxSize:  1,
		},
		Modules: map[string]string{"persistence": "debug"},
	}

	root, modules, err := build(cfg)
	require.NoError(t, err)
	require.Contains(t, modules, "persistence")

	root.Info("hello", zap.Int("turn", 3))
	modules["persistence"].Debug("saved")
	require.NoError(t, root.Sync())

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"turn":3`)
}

func TestGetLoggerBeforeInit(t *testing.T) {
	// 未初始化时不能返回nil
	assert.NotNil(t, GetLogger())
	assert.NotNil(t, GetModuleLogger("game"))
}
