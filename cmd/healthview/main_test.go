package main

import (
	"bytes"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/openmined/healthview/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with an empty config file and no log file.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{}`), 0o644))

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", cfgPath, "--log-file", ""}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv("HEALTHVIEW_API_URL", "")
	t.Setenv("HEALTHVIEW_CONFIG_PATH", "")
}

func backend(t *testing.T, hits *atomic.Int32, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/api/health", r.URL.Path)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRoot_PrintsStatus(t *testing.T) {
	clearEnv(t)
	var hits atomic.Int32
	srv := backend(t, &hits, `{"status":"ok"}`)

	stdout, _, err := execute(t, "--api-url", srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Health App Frontend\n\nAPI Status:\n{\n  \"status\": \"ok\"\n}\n", stdout)
	assert.EqualValues(t, 1, hits.Load())
}

func TestRoot_EnvOverride(t *testing.T) {
	clearEnv(t)
	var hits atomic.Int32
	srv := backend(t, &hits, `{"status":"ok","version":"1.2.3"}`)
	t.Setenv(config.EnvAPIURL, srv.URL)

	stdout, _, err := execute(t, "--plain")
	require.NoError(t, err)

	assert.Contains(t, stdout, "\"version\": \"1.2.3\"")
	assert.EqualValues(t, 1, hits.Load())
}

func TestRoot_BackendDownIsNotAnError(t *testing.T) {
	clearEnv(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	stdout, stderr, err := execute(t, "--api-url", "http://"+addr)
	require.NoError(t, err)

	assert.Equal(t, "Health App Frontend\n\nAPI Status:\nnull\n", stdout)
	assert.Contains(t, stderr, "API Error")
}

func TestRoot_NonJSONBody(t *testing.T) {
	clearEnv(t)
	var hits atomic.Int32
	srv := backend(t, &hits, `<html>down for maintenance</html>`)

	stdout, stderr, err := execute(t, "--api-url", srv.URL)
	require.NoError(t, err)

	assert.Contains(t, stdout, "API Status:\nnull\n")
	assert.Contains(t, stderr, "API Error")
}

func TestRoot_InvalidBaseAddress(t *testing.T) {
	for _, base := range []string{"localhost:8080", "ftp://example.com"} {
		t.Run(base, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(config.EnvAPIURL, base)

			stdout, stderr, err := execute(t, "--plain")
			require.NoError(t, err)

			assert.Equal(t, "Health App Frontend\n\nAPI Status:\nnull\n", stdout)
			assert.Contains(t, stderr, "API Error")
			assert.NotContains(t, stderr, "Usage:")
		})
	}
}

func TestRoot_ConfigErrorSkipsUsage(t *testing.T) {
	clearEnv(t)

	stdout, stderr, err := execute(t, "--log-level", "loud")
	require.ErrorIs(t, err, config.ErrInvalidLogLevel)
	assert.Empty(t, stdout)
	assert.NotContains(t, stderr, "Usage:")
}

func TestRoot_RejectsArgs(t *testing.T) {
	clearEnv(t)

	_, _, err := execute(t, "extra")
	require.Error(t, err)
}

func TestRoot_WritesLogFile(t *testing.T) {
	clearEnv(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	logPath := filepath.Join(t.TempDir(), "logs", "healthview.log")
	_, _, err = execute(t, "--api-url", "http://"+addr, "--log-file", logPath)
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "line=1")
	assert.Contains(t, string(data), "API Error")
}
