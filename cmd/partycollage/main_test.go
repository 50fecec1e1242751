// ABOUTME: Tests for the partycollage CLI commands
// ABOUTME: Drives run() against a temporary SQLite database and config file

package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/partycollage/internal/config"
	"github.com/2389/partycollage/internal/session"
)

// setupCLI points the CLI at a fresh database and returns its directory.
func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := "database:\n  path: \"" + filepath.Join(dir, "party.db") + "\"\n" +
		"logging:\n  level: \"error\"\n" +
		"metrics:\n  enabled: true\n  path: \"" + filepath.Join(dir, "partycollage.prom") + "\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	t.Setenv(config.EnvConfigPath, cfgPath)
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestCLI_PartyLifecycle(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "create", "--days", "3", "Summer Bash", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Created party Summer Bash")
	assert.Contains(t, out, "summer-bash@party.com")

	out, err = runCLI(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Summer Bash <summer-bash@party.com>")

	out, err = runCLI(t, "countdown")
	require.NoError(t, err)
	assert.Contains(t, out, "Summer Bash expires in 2d 23h")

	_, err = runCLI(t, "create", "summer bash", "other")
	assert.ErrorIs(t, err, session.ErrConflict)

	out, err = runCLI(t, "media", "add", "--type", "video", "--url", "blob:clip", "--tags", "dance, fun", "--mood", "Hype")
	require.NoError(t, err)
	assert.Contains(t, out, "Added video")

	out, err = runCLI(t, "media", "list", "--tag", "hypevibes")
	require.NoError(t, err)
	assert.Contains(t, out, "Summer Bash")

	out, err = runCLI(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	_, err = runCLI(t, "login", "SUMMER BASH", "wrong")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)

	_, err = runCLI(t, "login", "summer bash", "pw")
	require.NoError(t, err)

	out, err = runCLI(t, "delete")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 media items")

	out, err = runCLI(t, "parties")
	require.NoError(t, err)
	assert.Contains(t, out, "No parties")
}

func TestCLI_InitSeedsDemoParty(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, `Demo party "Liz" created with 5 items`)

	out, err = runCLI(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to seed")

	out, err = runCLI(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "parties: 1")
	assert.Contains(t, out, "media:   5 (3 photos, 2 videos)")

	out, err = runCLI(t, "media", "list", "--type", "videos")
	require.NoError(t, err)
	assert.Contains(t, out, "liz-party-video-")
	assert.NotContains(t, out, "photo")
}

func TestCLI_MetricsAccumulateAcrossRuns(t *testing.T) {
	dir := setupCLI(t)

	_, err := runCLI(t, "create", "Liz", "123")
	require.NoError(t, err)
	_, err = runCLI(t, "create", "Bob", "456")
	require.NoError(t, err)
	_, err = runCLI(t, "login", "liz", "123")
	require.NoError(t, err)
	_, err = runCLI(t, "login", "liz", "nope")
	require.Error(t, err)

	out, err := runCLI(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "partycollage_parties_created_total 2")
	assert.Contains(t, out, `partycollage_logins_total{result="success"} 1`)
	assert.Contains(t, out, `partycollage_logins_total{result="invalid_credentials"} 1`)

	data, err := os.ReadFile(filepath.Join(dir, "partycollage.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "partycollage_parties_created_total 2")
}

func TestCLI_MediaAddFromFile(t *testing.T) {
	setupCLI(t)

	path := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(path, solidPNG(t), 0644))

	_, err := runCLI(t, "create", "Liz", "123")
	require.NoError(t, err)

	out, err := runCLI(t, "media", "add", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "(#336699)")
}

func TestCLI_Errors(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "bogus")
	assert.ErrorContains(t, err, "unknown command")

	_, err = runCLI(t, "create", "OnlyName")
	assert.ErrorContains(t, err, "usage")

	_, err = runCLI(t, "create", "--days", "0", "Liz", "123")
	assert.ErrorIs(t, err, session.ErrValidation)

	_, err = runCLI(t, "media", "add", "--type", "photo")
	assert.ErrorContains(t, err, "--url or --file")

	_, err = runCLI(t, "countdown")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSetupLogger_ColorHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)

	logger.Info("hidden")
	logger.With("component", "store").WithGroup("db").Warn("slow query", "ms", 250)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "slow query")
	assert.Contains(t, out, "component=")
	assert.Contains(t, out, "db.ms=")
}

func TestSetupLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)
	logger.Debug("hello", "n", 1)

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.IsType(t, &slog.JSONHandler{}, logger.Handler())
}
