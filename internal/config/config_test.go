package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DASH_BACKEND_SUPABASE_URL", "DASH_BACKEND_SUPABASE_KEY",
		"DASH_SMTP_HOST", "DASH_SMTP_USERNAME", "DASH_SMTP_PASSWORD",
		"DASH_SMTP_RECIPIENT", "DASH_SERVER_PORT", "DASH_ALERTS_PENDING_STATUS",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadMissingRequiredSettings(t *testing.T) {
	clearEnv(t)

	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DASH_BACKEND_SUPABASE_URL")
	assert.Contains(t, err.Error(), "DASH_BACKEND_SUPABASE_KEY")
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DASH_BACKEND_SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("DASH_BACKEND_SUPABASE_KEY", "anon-key")
	t.Setenv("DASH_ALERTS_PENDING_STATUS", "Pending")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://example.supabase.co", cfg.Backend.URL)
	assert.Equal(t, "anon-key", cfg.Backend.Key)
	assert.Equal(t, "Pending", cfg.Alerts.PendingStatus)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Alerts.ExpiryWindowDays)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("DASH_BACKEND_SUPABASE_KEY", "env-key")

	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
backend:
  url: https://file.supabase.co
  key: file-key
smtp:
  host: smtp.example.com
  username: mailer
  password: secret
  recipient: buyer@example.com
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	cfg, err := LoadFrom(file)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://file.supabase.co", cfg.Backend.URL)
	assert.Equal(t, "env-key", cfg.Backend.Key, "environment wins over file")
	assert.True(t, cfg.SMTP.Configured())
}

func TestSMTPConfigured(t *testing.T) {
	var s SMTPConfig
	assert.False(t, s.Configured())

	s = SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", Recipient: "r@example.com"}
	assert.True(t, s.Configured())

	s.Recipient = ""
	assert.False(t, s.Configured(), "missing recipient disables notifications")
}
