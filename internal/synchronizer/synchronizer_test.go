package synchronizer

import (
	"testing"

	"musicd/internal/models"
	"musicd/internal/tagger"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeReleaseType_FoldsCaseAndFallsBackToUnknown(t *testing.T) {
	assert.Equal(t, models.ReleaseTypeAlbum, normalizeReleaseType("Album"))
	assert.Equal(t, models.ReleaseTypeEP, normalizeReleaseType("  EP  "))
	assert.Equal(t, models.ReleaseTypeUnknown, normalizeReleaseType("bootleg"))
	assert.Equal(t, models.ReleaseTypeUnknown, normalizeReleaseType(""))
}

func TestIsAuxiliaryDir_MatchesBangPrefixOnly(t *testing.T) {
	assert.True(t, isAuxiliaryDir("!collages"))
	assert.True(t, isAuxiliaryDir("!playlists"))
	assert.False(t, isAuxiliaryDir("Aphex Twin - Selected Ambient Works {id=1}"))
}

func TestEmptyToUnknown_FallsBackOnlyWhenBlank(t *testing.T) {
	assert.Equal(t, "Unknown Release", emptyToUnknown("   ", "Unknown Release"))
	assert.Equal(t, "Actual Title", emptyToUnknown("Actual Title", "Unknown Release"))
}

func TestBuildRelease_AssignsTitleAndSourcePath(t *testing.T) {
	tags := &tagger.AudioFile{
		Album:       "Selected Ambient Works 85-92",
		ReleaseType: "Album",
		Genres:      []string{"IDM", "Ambient"},
		AlbumArtists: tagger.ArtistStrings{
			Main: "Aphex Twin",
		},
	}

	release := buildRelease("rel-1", "/music/Aphex Twin - SAW85-92 {id=rel-1}", tags)

	assert.Equal(t, "rel-1", release.ID)
	assert.Equal(t, "/music/Aphex Twin - SAW85-92 {id=rel-1}", release.SourcePath)
	assert.Equal(t, "Selected Ambient Works 85-92", release.Title)
	assert.Equal(t, models.ReleaseTypeAlbum, release.ReleaseType)
	assert.True(t, release.New)
	assert.Len(t, release.Genres, 2)
	assert.Len(t, release.Artists, 1)
	assert.Equal(t, "Aphex Twin", release.Artists[0].Artist)
	assert.Equal(t, models.ArtistRoleMain, release.Artists[0].Role)
}

func TestBuildTrack_FallsBackToUnknownTitle(t *testing.T) {
	tags := &tagger.AudioFile{
		TrackNumber: "01",
		DiscNumber:  "1",
		DurationSec: 125,
	}

	track := buildTrack("trk-1", "/music/release/01 {id=trk-1}.flac", "rel-1", tags)

	assert.Equal(t, "Unknown Title", track.Title)
	assert.Equal(t, "rel-1", track.ReleaseID)
	assert.Equal(t, 125, track.DurationSeconds)
}
