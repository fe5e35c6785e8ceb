package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloglist/local-app/src/pkg/config"
)

func TestFormatLogEntry(t *testing.T) {
	out := formatLogEntry(LogEntry{
		"time":      "2024-05-01T10:11:12.123456Z",
		"level":     "warn",
		"msg":       "Login failed",
		"username":  "mluukkai",
		"requestID": "abc",
	})

	assert.Contains(t, out, "24-05-01 10:11:12.123456")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "Login failed")
	assert.Less(t, bytes.Index([]byte(out), []byte("requestID")), bytes.Index([]byte(out), []byte("username")))
}

func TestReadLogDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "info.log"), []byte(
		`{"time":"2024-05-01T10:00:02Z","level":"info","msg":"second"}`+"\n"+
			"not json\n"+
			`{"time":"2024-05-01T10:00:01Z","level":"error","msg":"middle"}`+"\n"+
			`{"time":"2024-05-01T10:00:00Z","level":"info","msg":"first"}`+"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "errors.log"), []byte(
		`{"time":"2024-05-01T10:00:01Z","level":"error","msg":"middle"}`+"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	entries, err := readLogDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "first", entries[0]["msg"])
	assert.Equal(t, "middle", entries[1]["msg"])
	assert.Equal(t, "errors.log", entries[1]["file"])
	assert.Equal(t, "second", entries[2]["msg"])

	var buf bytes.Buffer
	require.NoError(t, printLogEntries(&buf, entries, "MIDDLE"))
	assert.Contains(t, buf.String(), "middle")
	assert.NotContains(t, buf.String(), "first")

	_, err = readLogDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestLoadConfig_Overrides(t *testing.T) {
	for _, key := range []string{config.EnvAPIURL, config.EnvStorageDir, config.EnvLogLevel} {
		t.Setenv(key, "")
	}
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := loadConfig(options{configPath: path, apiURL: "http://example.test:8080", verbose: true})
	require.NoError(t, err)
	assert.Equal(t, "http://example.test:8080", cfg.APIBaseURL)
	assert.Equal(t, "DEBUG", cfg.LogLevel)

	_, err = loadConfig(options{configPath: path, apiURL: "not a url"})
	assert.Error(t, err)
}

func TestBootstrap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := config.DefaultConfig()
	cfg.StorageDriver = "sqlite"
	cfg.StorageDir = filepath.Join(dir, "data")
	cfg.LogFolder = filepath.Join(dir, "logs")
	cfg.HistoryFile = filepath.Join(dir, "history")
	require.NoError(t, config.ConfigSave(path, cfg))
	for _, key := range []string{config.EnvAPIURL, config.EnvStorageDir, config.EnvLogLevel} {
		t.Setenv(key, "")
	}

	a, err := bootstrap(options{configPath: path})
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.view)
	assert.Equal(t, "> ", a.adapter.PromptGet())
	assert.FileExists(t, filepath.Join(dir, "logs", "info.log"))
	assert.FileExists(t, filepath.Join(dir, "data", "bloglist.db"))
}
