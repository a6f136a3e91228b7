package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/ytplayer/internal/domain/player"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ytplayer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
player:
  base_url: "https://example.com"
  video_id: "JLVXQn3fqgg"
  parameters:
    playsinline: 1
    autoplay: true
    start: 30
dispatch:
  void_error_codes: [5, 7]
  script_timeout_ms: 1500
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "https://example.com", cfg.Player.BaseURL)
	assert.Equal(t, "JLVXQn3fqgg", cfg.Player.VideoID)
	assert.Equal(t, []int{5, 7}, cfg.Dispatch.VoidErrorCodes)
	assert.Equal(t, 1500*time.Millisecond, cfg.ScriptTimeout())

	// Defaults
	assert.Equal(t, "https://www.youtube.com/oembed", cfg.OEmbed.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.OEmbedTimeout())

	params, err := cfg.PlayerParameters()
	require.NoError(t, err)
	assert.Equal(t, player.Parameters{
		PlaysInline: player.Ptr(player.BoolTrue),
		Autoplay:    player.Ptr(player.BoolTrue),
		Start:       player.Ptr(30),
	}, params)
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "about:blank", cfg.Player.BaseURL)
	assert.Empty(t, cfg.Player.TemplatePath)
	assert.Equal(t, []int{5}, cfg.Dispatch.VoidErrorCodes)
	assert.Equal(t, 5*time.Second, cfg.ScriptTimeout())

	params, err := cfg.PlayerParameters()
	require.NoError(t, err)
	assert.Equal(t, player.DefaultParameters(), params)
}

func TestLoad_PlayerParameters(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    player.Parameters
	}{
		{
			name: "absent parameters use defaults",
			content: `
player:
  video_id: "abc"
`,
			want: player.DefaultParameters(),
		},
		{
			name: "empty parameters block sets nothing",
			content: `
player:
  video_id: "abc"
  parameters: {}
`,
			want: player.Parameters{},
		},
		{
			name: "explicit parameters replace defaults",
			content: `
player:
  playlist_id: "PL123"
  parameters:
    controls: 0
`,
			want: player.Parameters{Controls: player.Ptr(player.BoolFalse)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			require.NoError(t, err)

			params, err := cfg.PlayerParameters()
			require.NoError(t, err)
			assert.Equal(t, tt.want, params)
		})
	}
}

func TestLoad_ScriptTimeout(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    time.Duration
	}{
		{
			name:    "absent takes default",
			content: "dispatch: {}\n",
			want:    5 * time.Second,
		},
		{
			name:    "zero takes default",
			content: "dispatch:\n  script_timeout_ms: 0\n",
			want:    5 * time.Second,
		},
		{
			name:    "disabled",
			content: "dispatch:\n  script_timeout_ms: -1\n",
			want:    0,
		},
		{
			name:    "explicit",
			content: "dispatch:\n  script_timeout_ms: 250\n",
			want:    250 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.ScriptTimeout())
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAddr, ":7000")
	t.Setenv(EnvBaseURL, "https://override.example.com")
	t.Setenv(EnvTemplate, "/srv/player.html")

	path := writeConfig(t, `
server:
  addr: ":9090"
player:
  base_url: "https://example.com"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "https://override.example.com", cfg.Player.BaseURL)
	assert.Equal(t, "/srv/player.html", cfg.Player.TemplatePath)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "malformed yaml",
			content: "server: [",
			errMsg:  "failed to parse config file",
		},
		{
			name: "invalid video url",
			content: `
player:
  video_url: "not a url"
`,
			errMsg: "VideoURL",
		},
		{
			name: "several startup sources",
			content: `
player:
  video_id: "abc"
  playlist_id: "PL123"
`,
			errMsg: "only one of video_id, video_url and playlist_id",
		},
		{
			name: "unknown parameter",
			content: `
player:
  parameters:
    autoplay_now: 1
`,
			errMsg: "invalid player.parameters",
		},
		{
			name: "invalid bool parameter",
			content: `
player:
  parameters:
    controls: 2
`,
			errMsg: "invalid player.parameters",
		},
		{
			name: "script timeout out of range",
			content: `
dispatch:
  script_timeout_ms: 120000
`,
			errMsg: "ScriptTimeoutMs",
		},
		{
			name: "script timeout below disabled",
			content: `
dispatch:
  script_timeout_ms: -2
`,
			errMsg: "ScriptTimeoutMs",
		},
		{
			name: "negative void code",
			content: `
dispatch:
  void_error_codes: [-1]
`,
			errMsg: "VoidErrorCodes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
