package artiststr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArtistString_Simple(t *testing.T) {
	am := ParseArtistString("Artist", "", "", "", "", "")
	assert.Equal(t, []string{"Artist"}, am.Main)
	assert.Empty(t, am.Guest)
}

func TestParseArtistString_MultipleMainDelimiters(t *testing.T) {
	am := ParseArtistString("Artist A;Artist B", "", "", "", "", "")
	assert.Equal(t, []string{"Artist A", "Artist B"}, am.Main)
}

func TestRoundTrip_PresFeat(t *testing.T) {
	raw := "A pres. B;C feat. D;E"
	am := ParseArtistString(raw, "", "", "", "", "")

	assert.Equal(t, []string{"A"}, am.DJMixer)
	assert.Equal(t, []string{"B", "C"}, am.Main)
	assert.Equal(t, []string{"D", "E"}, am.Guest)
	assert.Equal(t, raw, FormatArtistString(am, nil))
}

func TestRoundTrip_ProducedByAndFeat(t *testing.T) {
	raw := "Artist feat. Guest produced by Producer"
	am := ParseArtistString(raw, "", "", "", "", "")

	assert.Equal(t, []string{"Artist"}, am.Main)
	assert.Equal(t, []string{"Guest"}, am.Guest)
	assert.Equal(t, []string{"Producer"}, am.Producer)
	assert.Equal(t, raw, FormatArtistString(am, nil))
}

func TestRoundTrip_Classical_PerformedBy(t *testing.T) {
	raw := "A performed by C;D"
	am := ParseArtistString(raw, "", "", "", "", "")

	assert.Equal(t, []string{"A"}, am.Composer)
	assert.Equal(t, []string{"C", "D"}, am.Main)
	assert.Equal(t, raw, FormatArtistString(am, []string{"Classical"}))
}

func TestFormatArtistString_PerformedByRequiresClassicalGenre(t *testing.T) {
	am := ParseArtistString("A performed by C;D", "", "", "", "", "")
	// Without a classical genre the composer credit is simply dropped,
	// matching the inverse rule's genre-gated condition.
	assert.Equal(t, "C;D", FormatArtistString(am, []string{"Pop"}))
}

func TestParseArtistString_ConductorMergesIntoMain(t *testing.T) {
	am := ParseArtistString("Orchestra", "", "", "Conductor Name", "", "")

	assert.Equal(t, []string{"Orchestra", "Conductor Name"}, am.Main)
}

func TestParseArtistString_DedupPreservesFirstSeenOrder(t *testing.T) {
	am := ParseArtistString("A;B;A", "", "", "", "", "")
	assert.Equal(t, []string{"A", "B"}, am.Main)
}

func TestParseArtistString_RemixerTagMergesWithEmbedded(t *testing.T) {
	am := ParseArtistString("Artist remixed by Inline Remixer", "Tag Remixer", "", "", "", "")
	assert.Equal(t, []string{"Tag Remixer", "Inline Remixer"}, am.Remixer)
}
