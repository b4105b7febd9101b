package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Infow("info", map[string]any{"plants": 3})
	l.Warnf("warn")
	l.Errorf("error")
}

func TestNewWithWriter_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "planner")
	l.Infow("plan computed", map[string]any{"load": 910.0})
	out := buf.String()
	assert.Contains(t, out, `"component":"planner"`)
	assert.Contains(t, out, `"load":910`)
	assert.Contains(t, out, `"message":"plan computed"`)
}

func TestSetup_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	require.NoError(t, Setup(Options{Level: "debug", File: path, MaxSizeMB: 1}))
	defer func() {
		require.NoError(t, Close())
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}()
	New("file-test").Infof("hello %s", "file")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestSetup_BadLevel(t *testing.T) {
	assert.Error(t, Setup(Options{Level: "loud"}))
}
