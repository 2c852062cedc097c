package tagger

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRead_UnsupportedExtension(t *testing.T) {
	_, err := Read("track.wav")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseYear_BareYear(t *testing.T) {
	year := parseYear("1999")
	assert.NotNil(t, year)
	assert.Equal(t, 1999, *year)
}

func TestParseYear_ISODatePrefix(t *testing.T) {
	year := parseYear("2012-03-14")
	assert.NotNil(t, year)
	assert.Equal(t, 2012, *year)
}

func TestParseYear_Unparseable(t *testing.T) {
	assert.Nil(t, parseYear("unknown"))
	assert.Nil(t, parseYear(""))
}

func TestFirstComponent_SplitsOnSlash(t *testing.T) {
	assert.Equal(t, "3", firstComponent("3/12"))
	assert.Equal(t, "3", firstComponent("3"))
}

func TestFirstNonEmpty_SkipsBlankCandidates(t *testing.T) {
	values := map[string]string{"a": "", "b": "value"}
	assert.Equal(t, "value", firstNonEmpty(values, "a", "b"))
	assert.Equal(t, "", firstNonEmpty(values, "missing"))
}

func TestFlattenMulti_SplitsOnDelimiterRegex(t *testing.T) {
	assert.Equal(t, []string{"House", "Techno"}, flattenMulti([]string{"House / Techno"}))
	assert.Equal(t, []string{"Label A", "Label B"}, flattenMulti([]string{"Label A vs. Label B"}))
	assert.Nil(t, flattenMulti([]string{""}))
}

func TestRawString_MissingKeyReturnsEmpty(t *testing.T) {
	s, err := rawString(map[string]interface{}{}, "LABEL")
	assert.NoError(t, err)
	assert.Equal(t, "", s)
}

func TestRawString_UnsupportedShapeReturnsError(t *testing.T) {
	_, err := rawString(map[string]interface{}{"LABEL": 42}, "LABEL")
	var unsupported *UnsupportedTagValueTypeError
	assert.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "LABEL", unsupported.Key)
}

func writeVorbisCommentBlock(vendor string, comments []string) []byte {
	var buf bytes.Buffer
	writeLenPrefixed := func(s string) {
		var l [4]byte
		binary.LittleEndian.PutUint32(l[:], uint32(len(s)))
		buf.Write(l[:])
		buf.WriteString(s)
	}
	writeLenPrefixed(vendor)
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(comments)))
	buf.Write(count[:])
	for _, c := range comments {
		writeLenPrefixed(c)
	}
	return buf.Bytes()
}

func TestParseVorbisCommentBlock_AccumulatesRepeatedKeys(t *testing.T) {
	raw := writeVorbisCommentBlock("test-vendor", []string{
		"GENRE=House",
		"GENRE=Techno",
		"ARTIST=Test Artist",
		"malformed-no-equals",
	})

	comments, err := parseVorbisCommentBlock(bytes.NewReader(raw))
	assert.NoError(t, err)
	assert.Equal(t, []string{"House", "Techno"}, comments.all("GENRE"))
	assert.Equal(t, "Test Artist", comments.first("ARTIST"))
}

func TestVorbisComments_FirstFallsBackThroughKeys(t *testing.T) {
	c := newVorbisComments()
	c.add("YEAR", "1998")
	assert.Equal(t, "1998", c.first("DATE", "YEAR"))
	assert.Equal(t, "", c.first("DATE", "MISSING"))
}

func TestFlacStreamInfoDuration_ExtractsSampleRateAndSamples(t *testing.T) {
	payload := make([]byte, 34)
	// sample rate 44100 (20 bits), channels-1 (3 bits), bps-1 (5 bits),
	// total samples 44100*10 (36 bits), packed into the 8-byte bitfield
	// starting at offset 10.
	var bits uint64
	bits |= uint64(44100) << 44
	bits |= uint64(1) << 41 // channels-1 = 1 (stereo)
	bits |= uint64(15) << 36 // bits-per-sample-1 = 15 (16-bit)
	bits |= uint64(441000)   // total samples = 10 seconds at 44100Hz
	binary.BigEndian.PutUint64(payload[10:18], bits)

	assert.Equal(t, 10, flacStreamInfoDuration(payload))
}

func TestFlacStreamInfoDuration_ShortPayloadIsZero(t *testing.T) {
	assert.Equal(t, 0, flacStreamInfoDuration([]byte{1, 2, 3}))
}

func TestLastOggGranule_FindsFinalPage(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("junk before ")

	page := make([]byte, 27)
	copy(page[0:4], "OggS")
	binary.LittleEndian.PutUint64(page[6:14], 123456)
	buf.Write(page)
	buf.WriteString("middle")

	page2 := make([]byte, 27)
	copy(page2[0:4], "OggS")
	binary.LittleEndian.PutUint64(page2[6:14], 999999)
	buf.Write(page2)

	granule, ok := lastOggGranule(buf.Bytes())
	assert.True(t, ok)
	assert.Equal(t, uint64(999999), granule)
}

func TestLastOggGranule_NoPageFound(t *testing.T) {
	_, ok := lastOggGranule([]byte("no ogg pages here"))
	assert.False(t, ok)
}
