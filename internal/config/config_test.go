package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYAML(t *testing.T) {
	data := []byte(`
credentials: /etc/docweave/sa.json
folder: 1AbCdEf
share_with: ops@example.com
share_role: reader
batch_limit: 10
requests_per_minute: 120
retry_delay: 500ms
log:
  enabled: true
  path: /tmp/docweave.log
  verbose: true
`)
	cfg, err := ParseYAML(data)
	require.NoError(t, err)

	assert.Equal(t, "/etc/docweave/sa.json", cfg.CredentialsPath)
	assert.Equal(t, "token.json", cfg.TokenPath)
	assert.Equal(t, "1AbCdEf", cfg.FolderID)
	assert.Equal(t, "ops@example.com", cfg.ShareWith)
	assert.Equal(t, "reader", cfg.ShareRole)
	assert.Equal(t, 10, cfg.BatchLimit)
	assert.Equal(t, 120, cfg.RequestsPerMinute)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryDelay)
	assert.True(t, cfg.LogEnabled)
	assert.Equal(t, "/tmp/docweave.log", cfg.LogPath)
	assert.True(t, cfg.LogVerbose)
}

func TestParseYAML_EmptyYieldsDefaults(t *testing.T) {
	cfg, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseYAML_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{name: "NotYAML", data: "batch_limit: [unclosed"},
		{name: "NegativeBatchLimit", data: "batch_limit: -1"},
		{name: "NegativeRate", data: "requests_per_minute: -5"},
		{name: "BadRole", data: "share_role: admin"},
		{name: "BadDuration", data: "retry_delay: soon"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tc.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docweave.yaml")
	require.NoError(t, os.WriteFile(path, []byte("folder: xyz\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "xyz", cfg.FolderID)
	assert.Equal(t, 30, cfg.BatchLimit)
}
