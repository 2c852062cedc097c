package vname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildReleaseDirname_Basic(t *testing.T) {
	year := 1995
	name := BuildReleaseDirname(ReleaseInput{
		FormattedArtists: "Test Artist",
		Year:             &year,
		Album:            "Test Release 1",
		ReleaseType:      "album",
	})
	assert.Equal(t, "Test Artist - 1995. Test Release 1", name)
}

func TestBuildReleaseDirname_UnknownAlbum(t *testing.T) {
	name := BuildReleaseDirname(ReleaseInput{
		FormattedArtists: "Test Artist",
		ReleaseType:      "unknown",
	})
	assert.Equal(t, "Test Artist - Unknown Release", name)
}

func TestBuildReleaseDirname_NonAlbumTypeTitleCased(t *testing.T) {
	name := BuildReleaseDirname(ReleaseInput{
		FormattedArtists: "Test Artist",
		Album:            "Mix",
		ReleaseType:      "djmix",
		Genres:           []string{"House", "Techno"},
		Labels:           []string{"Label A"},
	})
	assert.Equal(t, "Test Artist - Mix - Djmix [House;Techno] {Label A}", name)
}

func TestBuildTrackFilename_Basic(t *testing.T) {
	name := BuildTrackFilename(TrackInput{
		TrackNumber:           "01",
		Title:                 "Track One",
		DurationSec:           185,
		FormattedTrackArtists: "Test Artist",
		FormattedAlbumArtists: "Test Artist",
	})
	assert.Equal(t, "01. Track One [03：05]", name)
}

func TestBuildTrackFilename_DifferingArtistsAppended(t *testing.T) {
	name := BuildTrackFilename(TrackInput{
		DiscNumber:            "01",
		TrackNumber:           "02",
		Title:                 "Feature Track",
		DurationSec:           65,
		FormattedTrackArtists: "Guest Artist",
		FormattedAlbumArtists: "Test Artist",
	})
	assert.Equal(t, "01-02. Feature Track [01：05] (by Guest Artist)", name)
}

func TestSanitizeFilename_ReplacesReservedCharacters(t *testing.T) {
	out := SanitizeFilename(`a/b\c:d*e?f"g<h>i|j`)
	assert.Equal(t, "a／b＼c：d＊e？f＂g＜h＞i｜j", out)
}

func TestSanitizeFilename_TrimsTrailingDotsAndSpaces(t *testing.T) {
	out := SanitizeFilename("Name.. ")
	assert.Equal(t, "Name", out)
}
