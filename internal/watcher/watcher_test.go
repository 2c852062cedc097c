package watcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReleaseDirFor_ResolvesNestedPathToImmediateChild(t *testing.T) {
	w := &Watcher{root: "/music"}

	dir, ok := w.releaseDirFor("/music/Artist - Album {id=1}/01 track.flac")
	assert.True(t, ok)
	assert.Equal(t, "/music/Artist - Album {id=1}", dir)
}

func TestReleaseDirFor_IgnoresStrayRootLevelFile(t *testing.T) {
	w := &Watcher{root: "/music"}

	_, ok := w.releaseDirFor("/music/stray.txt")
	assert.False(t, ok)
}

func TestReleaseDirFor_IgnoresAuxiliaryDirectories(t *testing.T) {
	w := &Watcher{root: "/music"}

	_, ok := w.releaseDirFor("/music/!playlists/favorites.m3u")
	assert.False(t, ok)
}

func TestIsAuxiliaryDir(t *testing.T) {
	assert.True(t, isAuxiliaryDir("!collages"))
	assert.False(t, isAuxiliaryDir("Some Release"))
}
