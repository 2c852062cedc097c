package tagger

import (
	"fmt"
	"os"
	"strconv"

	"musicd/internal/artiststr"
	"musicd/internal/utils"

	"github.com/dhowden/tag"
)

// readMP4 reads M4A/MP4 atoms via dhowden/tag's typed accessors for the
// standard fields, falling back to its Raw() freeform-atom map for the
// "----" iTunes atoms this system needs (LABEL, RELEASETYPE, REMIXER,
// PRODUCER, CONDUCTOR, DJMIXER) that have no typed accessor.
func readMP4(path string) (*AudioFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tagger: open %s: %w", path, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, path, err)
	}

	raw := m.Raw()

	af := &AudioFile{
		Title: m.Title(),
		Album: m.Album(),
	}

	if year := m.Year(); year != 0 {
		af.Year = &year
	}

	af.Genres = artiststr.SplitMultiValue(m.Genre())

	label, err := rawString(raw, "LABEL")
	if err != nil {
		return nil, fmt.Errorf("tagger: %s: %w", path, err)
	}
	af.Labels = artiststr.SplitMultiValue(label)

	track, _ := m.Track()
	if track != 0 {
		af.TrackNumber = strconv.Itoa(track)
	}
	disc, _ := m.Disc()
	if disc != 0 {
		af.DiscNumber = strconv.Itoa(disc)
	}

	releaseType, err := rawString(raw, "RELEASETYPE")
	if err != nil {
		return nil, fmt.Errorf("tagger: %s: %w", path, err)
	}
	if releaseType != "" {
		af.ReleaseType = releaseType
	}

	conductor, err := rawString(raw, "CONDUCTOR")
	if err != nil {
		return nil, fmt.Errorf("tagger: %s: %w", path, err)
	}
	remixer, err := rawString(raw, "REMIXER")
	if err != nil {
		return nil, fmt.Errorf("tagger: %s: %w", path, err)
	}
	producer, err := rawString(raw, "PRODUCER")
	if err != nil {
		return nil, fmt.Errorf("tagger: %s: %w", path, err)
	}
	djMixer, err := rawString(raw, "DJMIXER")
	if err != nil {
		return nil, fmt.Errorf("tagger: %s: %w", path, err)
	}

	af.AlbumArtists = ArtistStrings{
		Main:      m.AlbumArtist(),
		Composer:  m.Composer(),
		Conductor: conductor,
		Remixer:   remixer,
		Producer:  producer,
		DJMixer:   djMixer,
	}
	af.TrackArtists = ArtistStrings{
		Main:      m.Artist(),
		Composer:  af.AlbumArtists.Composer,
		Conductor: af.AlbumArtists.Conductor,
		Remixer:   af.AlbumArtists.Remixer,
		Producer:  af.AlbumArtists.Producer,
		DJMixer:   af.AlbumArtists.DJMixer,
	}

	return af, nil
}

// rawString coerces a Raw() map entry to a string, tolerating the
// []string shape dhowden/tag uses for repeated freeform atoms. Freeform
// "----" atoms carry arbitrary bytes with no encoding guarantee, so the
// result is run through CleanUTF8 before use. A shape none of those cases
// cover is surfaced as UnsupportedTagValueTypeError rather than silently
// dropped.
func rawString(raw map[string]interface{}, key string) (string, error) {
	v, ok := raw[key]
	if !ok {
		return "", nil
	}

	var s string
	switch val := v.(type) {
	case string:
		s = val
	case []string:
		if len(val) == 0 {
			return "", nil
		}
		s = val[0]
	case fmt.Stringer:
		s = val.String()
	default:
		return "", &UnsupportedTagValueTypeError{Key: key, Value: v}
	}

	cleaned, _ := utils.CleanUTF8(s)
	return cleaned, nil
}
