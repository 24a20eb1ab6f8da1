// ABOUTME: Tests for config loading, env expansion and validation
// ABOUTME: Uses temp TOML files in the teacher-style table form

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kiosk.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

const validConfig = `
[matrix]
homeserver = "https://matrix.example.org"
user_id = "@kiosk:example.org"
access_token = "syt_secret"

[access]
admins = ["@alice:example.org"]
`

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://matrix.example.org", cfg.Matrix.Homeserver)
	assert.Equal(t, []string{"@alice:example.org"}, cfg.Access.Admins)

	// Defaults fill the rest
	assert.Equal(t, 7, cfg.Content.Sections)
	assert.Equal(t, 6, cfg.Access.WorkStart)
	assert.Equal(t, 22, cfg.Access.WorkEnd)
	assert.True(t, cfg.Access.AdminBypass)
	assert.Equal(t, "!", cfg.Matrix.CommandPrefix)
	assert.Equal(t, 5*time.Minute, cfg.Keepalive.PingEvery)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("KIOSK_TOKEN", "expanded-token")
	cfg, err := Load(writeConfig(t, `
[matrix]
homeserver = "https://matrix.example.org"
user_id = "@kiosk:example.org"
access_token = "${KIOSK_TOKEN}"

[access]
admins = ["@alice:example.org"]
`))
	require.NoError(t, err)
	assert.Equal(t, "expanded-token", cfg.Matrix.AccessToken)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing homeserver",
			body: `
[matrix]
user_id = "@kiosk:example.org"
access_token = "x"
[access]
admins = ["@a:b"]
`,
			want: "matrix.homeserver",
		},
		{
			name: "missing admins",
			body: `
[matrix]
homeserver = "https://m.example.org"
user_id = "@kiosk:example.org"
access_token = "x"
`,
			want: "access.admins",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_BadWorkHours(t *testing.T) {
	_, err := Load(writeConfig(t, `
[matrix]
homeserver = "https://m.example.org"
user_id = "@kiosk:example.org"
access_token = "x"

[access]
admins = ["@a:b"]
work_start = 25
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "work_start")
}

func TestLoad_AuditRequiresPath(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+`
[audit]
enabled = true
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit.path")
}

func TestLoad_BadKeepaliveURL(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+`
[keepalive]
ping_url = "ftp://example.org"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keepalive.ping_url")
}

func TestLoad_BadKeepaliveInterval(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+`
[keepalive]
ping_url = "https://example.org/"
every = "soon"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keepalive.every")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
