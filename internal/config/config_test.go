package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mirrorpad/internal/cursor"
)

func TestParse_FullConfig(t *testing.T) {
	data := []byte(`
relay: ws://relay.example:9000/update-code
profile:
  name: full
cursor:
  policy: ephemeral
  fade_window_ms: 750
editor:
  font_size: 14
archive_path: /tmp/games.db
`)

	cfg, err := Parse("test.yaml", data)
	require.NoError(t, err)
	assert.Equal(t, "ws://relay.example:9000/update-code", cfg.Relay)
	assert.Equal(t, 14, cfg.Editor.FontSize)
	assert.Equal(t, "/tmp/games.db", cfg.ArchivePath)
	assert.Equal(t, 750*time.Millisecond, cfg.FadeWindow())

	policy, err := cfg.CursorPolicy()
	require.NoError(t, err)
	assert.Equal(t, cursor.PolicyEphemeral, policy)
}

func TestParse_DefaultsApplyWhenAbsent(t *testing.T) {
	cfg, err := Parse("test.yaml", []byte(`relay: ws://x/update-code`))
	require.NoError(t, err)
	assert.Equal(t, cursor.DefaultFontSize, cfg.Editor.FontSize)
	assert.Equal(t, time.Second, cfg.FadeWindow())

	p, err := cfg.Protocol()
	require.NoError(t, err)
	assert.Equal(t, "full", p.Name)
	assert.True(t, p.RequireProblemID)
}

func TestParse_RejectsBadPolicy(t *testing.T) {
	_, err := Parse("test.yaml", []byte("cursor:\n  policy: sometimes\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")
}

func TestParse_RejectsFontSizeOutOfRange(t *testing.T) {
	_, err := Parse("test.yaml", []byte("editor:\n  font_size: 96\n"))
	require.Error(t, err)
}

func TestParse_RejectsUnknownField(t *testing.T) {
	_, err := Parse("test.yaml", []byte("relays: ws://typo\n"))
	require.Error(t, err)
}

func TestProtocol_LegacyProfile(t *testing.T) {
	cfg, err := Parse("test.yaml", []byte("profile:\n  name: legacy\n"))
	require.NoError(t, err)

	p, err := cfg.Protocol()
	require.NoError(t, err)
	assert.False(t, p.Bootstrap)
	assert.False(t, p.RequireProblemID)
}

func TestProtocol_CustomProfile(t *testing.T) {
	cfg, err := Parse("test.yaml", []byte(`
profile:
  name: staging
  bootstrap: true
  require_user_id: true
`))
	require.NoError(t, err)

	p, err := cfg.Protocol()
	require.NoError(t, err)
	assert.Equal(t, "staging", p.Name)
	assert.True(t, p.Bootstrap)
	assert.True(t, p.RequireUserID)
	assert.False(t, p.RequireToken)
}
