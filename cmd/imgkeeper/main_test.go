package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/imgkeeper/internal/channel"
)

func TestParseSource(t *testing.T) {
	t.Parallel()

	src, err := parseSource("Group", " C123 ")
	require.NoError(t, err)
	assert.Equal(t, channel.Source{Kind: channel.SourceGroup, GroupID: "C123"}, src)

	src, err = parseSource("room", "R9")
	require.NoError(t, err)
	assert.Equal(t, channel.SourceRoom, src.Kind)

	_, err = parseSource("channel", "X")
	assert.Error(t, err)
	_, err = parseSource("group", " ")
	assert.Error(t, err)
}

func TestLoadConfigRequiresCredentials(t *testing.T) {
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "")
	t.Setenv("LINE_CHANNEL_SECRET", "")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[line]\nchannel_secret = \"s\"\n"), 0o644))

	_, err := loadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ChannelAccessToken")
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "imgkeeper dev")
}

func TestResolveCommandRejectsBadArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"resolve", "group"})

	assert.Error(t, cmd.Execute())
}
