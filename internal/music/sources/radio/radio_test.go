package radio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/jukebox/internal/music/parsers"
)

func TestMatch(t *testing.T) {
	r := New()
	assert.True(t, r.Match("https://radio.example/live.m3u8"))
	assert.True(t, r.Match("http://files.example/Song.MP3?token=1"))
	assert.False(t, r.Match("https://example.com/watch"))
	assert.False(t, r.Match("https://example.com/"))
}

func TestResolve(t *testing.T) {
	tr, err := New().Resolve("https://radio.example/live.pls")
	require.NoError(t, err)
	assert.Equal(t, parsers.FfmpegLink, tr.Parsers[0])

	_, err = New().Resolve("live.pls")
	assert.Error(t, err)
}
