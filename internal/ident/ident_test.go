package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIDFromDirname_Present(t *testing.T) {
	id, ok := ParseIDFromDirname("Artist - Title {id=ilovecarly}")
	assert.True(t, ok)
	assert.Equal(t, "ilovecarly", id)
}

func TestParseIDFromDirname_Absent(t *testing.T) {
	_, ok := ParseIDFromDirname("Artist - Title")
	assert.False(t, ok)
}

func TestParseIDFromFilename_Present(t *testing.T) {
	id, ok := ParseIDFromFilename("01. Track {id=abc-123}.flac")
	assert.True(t, ok)
	assert.Equal(t, "abc-123", id)
}

func TestEmbedIDInDirname_AddsOnce(t *testing.T) {
	out := EmbedIDInDirname("Artist - Title", "new-id")
	assert.Equal(t, "Artist - Title {id=new-id}", out)

	out2 := EmbedIDInDirname(out, "different-id")
	assert.Equal(t, out, out2)
}

func TestEmbedIDInFilename_PreservesExtension(t *testing.T) {
	out := EmbedIDInFilename("01. Track.flac", "tid")
	assert.Equal(t, "01. Track {id=tid}.flac", out)
}

func TestNewID_IsUnique(t *testing.T) {
	a, err := NewID()
	assert.NoError(t, err)
	b, err := NewID()
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}
