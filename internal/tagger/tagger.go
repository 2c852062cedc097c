// Package tagger reads the metadata embedded in an audio file and maps it
// onto a neutral record, regardless of the underlying container format.
package tagger

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnsupportedFormat is returned when the reader cannot open the given
// container at all (unrecognized extension, or corrupt framing).
var ErrUnsupportedFormat = errors.New("tagger: unsupported audio format")

// UnsupportedTagValueTypeError is returned when a raw tag value has a
// shape the reader doesn't know how to coerce to a string.
type UnsupportedTagValueTypeError struct {
	Key   string
	Value any
}

func (e *UnsupportedTagValueTypeError) Error() string {
	return fmt.Sprintf("tagger: unsupported tag value type for %q: %T", e.Key, e.Value)
}

// ArtistStrings bundles the six raw artist-role tag strings that feed
// artiststr.ParseArtistString. It is left unparsed here; parsing is the
// synchronizer's job once it has the release's genre list in hand.
type ArtistStrings struct {
	Main      string
	Remixer   string
	Composer  string
	Conductor string
	Producer  string
	DJMixer   string
}

// AudioFile is the neutral record every container reader produces.
type AudioFile struct {
	Title        string
	Album        string
	Year         *int
	Genres       []string
	Labels       []string
	ReleaseType  string
	TrackNumber  string
	DiscNumber   string
	DurationSec  int
	AlbumArtists ArtistStrings
	TrackArtists ArtistStrings
}

// SupportedExtensions lists the audio container extensions the reader
// recognizes, matching the synchronizer's file filter.
var SupportedExtensions = map[string]struct{}{
	".mp3":  {},
	".m4a":  {},
	".ogg":  {},
	".opus": {},
	".flac": {},
}

// Read opens path and returns its tags as a neutral AudioFile, dispatching
// on file extension to the matching container reader.
func Read(path string) (*AudioFile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return readMP3(path)
	case ".m4a":
		return readMP4(path)
	case ".flac":
		return readFLAC(path)
	case ".ogg":
		return readOggVorbis(path)
	case ".opus":
		return readOggOpus(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// isoYearPrefix matches an ISO date (or date-like prefix) so the leading
// four-digit year can be extracted.
var isoYearPrefix = regexp.MustCompile(`^(\d{4})-\d{2}-\d{2}`)
var bareYear = regexp.MustCompile(`^(\d{4})$`)

// parseYear accepts a bare four-digit year or an ISO date prefix and
// returns the year, or nil if neither pattern matches.
func parseYear(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var match string
	if m := bareYear.FindStringSubmatch(s); m != nil {
		match = m[1]
	} else if m := isoYearPrefix.FindStringSubmatch(s); m != nil {
		match = m[1]
	} else {
		return nil
	}

	year, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &year
}

// firstComponent returns the substring of an "n/total" style number
// before the slash, or the whole string if there is no slash.
func firstComponent(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}

// firstNonEmpty returns the value of the first candidate key present and
// non-empty in values.
func firstNonEmpty(values map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := values[k]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
