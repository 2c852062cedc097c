package tagger

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"musicd/internal/artiststr"
)

// vorbisComments holds a vorbis-comment block's fields as accumulated
// multi-valued lists. dhowden/tag's own FLAC reader folds repeated
// comment keys into a single map[string]string, silently keeping only
// the last value — that loses a release with two GENRE or LABEL
// comments, so the comment block is parsed by hand here instead.
type vorbisComments struct {
	values map[string][]string
}

func newVorbisComments() *vorbisComments {
	return &vorbisComments{values: make(map[string][]string)}
}

func (c *vorbisComments) add(key, value string) {
	key = strings.ToUpper(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return
	}
	c.values[key] = append(c.values[key], value)
}

func (c *vorbisComments) first(keys ...string) string {
	for _, k := range keys {
		if v := c.values[strings.ToUpper(k)]; len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func (c *vorbisComments) all(keys ...string) []string {
	var out []string
	for _, k := range keys {
		out = append(out, c.values[strings.ToUpper(k)]...)
	}
	return out
}

// firstNonEmpty returns every value stored under the first key in keys
// that has at least one value, rather than concatenating every key's
// values the way all does. Used where candidate keys are alternate names
// for the same field (e.g. LABEL vs. ORGANIZATION) instead of repeated
// occurrences of the same field.
func (c *vorbisComments) firstNonEmpty(keys ...string) []string {
	for _, k := range keys {
		if v := c.values[strings.ToUpper(k)]; len(v) > 0 {
			return v
		}
	}
	return nil
}

// parseVorbisCommentBlock parses a raw vorbis-comment payload: a
// length-prefixed vendor string followed by a count and that many
// length-prefixed "KEY=value" comments, all little-endian, as specified
// by https://xiph.org/vorbis/doc/v-comment.html.
func parseVorbisCommentBlock(r io.Reader) (*vorbisComments, error) {
	vendorLen, err := readUint32LE(r)
	if err != nil {
		return nil, err
	}
	if _, err := readExact(r, int(vendorLen)); err != nil {
		return nil, err
	}

	count, err := readUint32LE(r)
	if err != nil {
		return nil, err
	}

	comments := newVorbisComments()
	for i := uint32(0); i < count; i++ {
		l, err := readUint32LE(r)
		if err != nil {
			return nil, err
		}
		raw, err := readExact(r, int(l))
		if err != nil {
			return nil, err
		}
		kv := strings.SplitN(string(raw), "=", 2)
		if len(kv) != 2 {
			continue
		}
		comments.add(kv[0], kv[1])
	}
	return comments, nil
}

func readUint32LE(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readExact(r io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// audioFileFromComments maps a parsed vorbis-comment block onto the
// neutral AudioFile record, used by FLAC, Ogg Vorbis and Ogg Opus alike
// since all three share the same comment vocabulary.
func audioFileFromComments(c *vorbisComments, durationSec int) *AudioFile {
	af := &AudioFile{
		Title:       c.first("TITLE"),
		Album:       c.first("ALBUM"),
		DurationSec: durationSec,
		Genres:      flattenMulti(c.all("GENRE")),
		Labels:      flattenMulti(c.firstNonEmpty("LABEL", "ORGANIZATION")),
		TrackNumber: firstComponent(c.first("TRACKNUMBER")),
		DiscNumber:  firstComponent(c.first("DISCNUMBER")),
	}
	af.Year = parseYear(c.first("DATE", "YEAR"))
	if rt := c.first("RELEASETYPE"); rt != "" {
		af.ReleaseType = rt
	}

	albumArtist := strings.Join(c.all("ALBUMARTIST"), ";")
	artist := strings.Join(c.all("ARTIST"), ";")
	composer := strings.Join(c.all("COMPOSER"), ";")
	conductor := strings.Join(c.all("CONDUCTOR"), ";")
	remixer := strings.Join(c.all("REMIXER"), ";")
	producer := strings.Join(c.all("PRODUCER"), ";")
	dj := strings.Join(c.all("DJMIXER"), ";")

	af.AlbumArtists = ArtistStrings{
		Main: albumArtist, Composer: composer, Conductor: conductor,
		Remixer: remixer, Producer: producer, DJMixer: dj,
	}
	af.TrackArtists = ArtistStrings{
		Main: artist, Composer: composer, Conductor: conductor,
		Remixer: remixer, Producer: producer, DJMixer: dj,
	}
	return af
}

func flattenMulti(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, artiststr.SplitMultiValue(v)...)
	}
	return out
}

// flacBlockType enumerates the FLAC metadata block types this reader
// recognizes; all others are skipped by length.
const (
	flacBlockStreamInfo    = 0
	flacBlockVorbisComment = 4
)

// readFLAC walks a FLAC file's metadata block chain: a 1-byte header
// (top bit marks the last block, the low 7 bits the block type) followed
// by a 3-byte big-endian length and that many bytes of payload.
func readFLAC(path string) (*AudioFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tagger: open %s: %w", path, err)
	}
	defer f.Close()

	magic, err := readExact(f, 4)
	if err != nil || string(magic) != "fLaC" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	comments := newVorbisComments()
	durationSec := 0

	for {
		header, err := readExact(f, 1)
		if err != nil {
			return nil, fmt.Errorf("tagger: %s: %w", path, err)
		}
		last := header[0]&0x80 != 0
		blockType := header[0] &^ 0x80

		lenBuf, err := readExact(f, 3)
		if err != nil {
			return nil, fmt.Errorf("tagger: %s: %w", path, err)
		}
		blockLen := int(lenBuf[0])<<16 | int(lenBuf[1])<<8 | int(lenBuf[2])

		switch blockType {
		case flacBlockVorbisComment:
			payload, err := readExact(f, blockLen)
			if err != nil {
				return nil, fmt.Errorf("tagger: %s: %w", path, err)
			}
			comments, err = parseVorbisCommentBlock(bytes.NewReader(payload))
			if err != nil {
				return nil, fmt.Errorf("tagger: %s: parse vorbis comments: %w", path, err)
			}
		case flacBlockStreamInfo:
			payload, err := readExact(f, blockLen)
			if err != nil {
				return nil, fmt.Errorf("tagger: %s: %w", path, err)
			}
			durationSec = flacStreamInfoDuration(payload)
		default:
			if _, err := f.Seek(int64(blockLen), io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("tagger: %s: %w", path, err)
			}
		}

		if last {
			break
		}
	}

	return audioFileFromComments(comments, durationSec), nil
}

// flacStreamInfoDuration extracts the sample rate and total sample count
// packed into the STREAMINFO block's 8-byte bitfield (offset 10) and
// derives the duration, rounded to the nearest whole second.
func flacStreamInfoDuration(payload []byte) int {
	if len(payload) < 18 {
		return 0
	}
	bits := binary.BigEndian.Uint64(payload[10:18])
	sampleRate := bits >> 44
	totalSamples := bits & 0xFFFFFFFFF
	if sampleRate == 0 {
		return 0
	}
	return int((totalSamples + sampleRate/2) / sampleRate)
}
