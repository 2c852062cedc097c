package tagger

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// oggCodec distinguishes the two Vorbis-comment-bearing Ogg payloads
// this reader handles; Speex and other Ogg codecs are out of scope.
type oggCodec int

const (
	oggCodecVorbis oggCodec = iota
	oggCodecOpus
)

// oggPage is one physical "OggS" page: a fixed 27-byte header, a
// segment-length ("lacing") table, and the segments' concatenated
// payload. See https://xiph.org/ogg/doc/framing.html.
type oggPage struct {
	granule  uint64
	lacing   []byte
	segments []byte
}

func readOggPage(r io.Reader) (*oggPage, error) {
	header, err := readExact(r, 27)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(header[0:4], []byte("OggS")) {
		return nil, errors.New("tagger: bad ogg page magic")
	}

	granule := binary.LittleEndian.Uint64(header[6:14])
	segCount := int(header[26])

	lacing, err := readExact(r, segCount)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, l := range lacing {
		total += int(l)
	}
	segments, err := readExact(r, total)
	if err != nil {
		return nil, err
	}

	return &oggPage{granule: granule, lacing: lacing, segments: segments}, nil
}

// oggPacketReader reassembles logical packets from a stream of Ogg
// pages. A packet that fills its last segment to exactly 255 bytes
// continues into the next page; several short packets can also share a
// single page, so completed packets are queued and drained before the
// next page read.
type oggPacketReader struct {
	r       io.Reader
	pending []byte
	queue   [][]byte
}

func (pr *oggPacketReader) next() ([]byte, error) {
	for len(pr.queue) == 0 {
		page, err := readOggPage(pr.r)
		if err != nil {
			return nil, err
		}

		offset := 0
		for _, l := range page.lacing {
			seg := page.segments[offset : offset+int(l)]
			offset += int(l)
			pr.pending = append(pr.pending, seg...)
			if l < 255 {
				pr.queue = append(pr.queue, pr.pending)
				pr.pending = nil
			}
		}
	}

	packet := pr.queue[0]
	pr.queue = pr.queue[1:]
	return packet, nil
}

func readOggVorbis(path string) (*AudioFile, error) {
	return readOggContainer(path, oggCodecVorbis)
}

func readOggOpus(path string) (*AudioFile, error) {
	return readOggContainer(path, oggCodecOpus)
}

func readOggContainer(path string, codec oggCodec) (*AudioFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tagger: open %s: %w", path, err)
	}
	defer f.Close()

	pr := &oggPacketReader{r: f}

	idPacket, err := pr.next()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, path, err)
	}
	commentPacket, err := pr.next()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, path, err)
	}

	var sampleRate uint32
	var preSkip uint16

	switch codec {
	case oggCodecVorbis:
		if len(idPacket) < 16 || string(idPacket[1:7]) != "vorbis" {
			return nil, fmt.Errorf("%w: %s: not a vorbis stream", ErrUnsupportedFormat, path)
		}
		sampleRate = binary.LittleEndian.Uint32(idPacket[12:16])
		commentPacket = trimOggMagic(commentPacket, 7)
	case oggCodecOpus:
		if len(idPacket) < 12 || string(idPacket[0:8]) != "OpusHead" {
			return nil, fmt.Errorf("%w: %s: not an opus stream", ErrUnsupportedFormat, path)
		}
		// Opus always decodes at a fixed 48kHz clock regardless of the
		// input sample rate recorded in the header.
		sampleRate = 48000
		preSkip = binary.LittleEndian.Uint16(idPacket[10:12])
		commentPacket = trimOggMagic(commentPacket, 8)
	}

	comments, err := parseVorbisCommentBlock(bytes.NewReader(commentPacket))
	if err != nil {
		return nil, fmt.Errorf("tagger: %s: parse vorbis comments: %w", path, err)
	}

	durationSec := oggDuration(path, codec, sampleRate, preSkip)
	return audioFileFromComments(comments, durationSec), nil
}

func trimOggMagic(packet []byte, n int) []byte {
	if len(packet) < n {
		return nil
	}
	return packet[n:]
}

// oggDuration estimates playback length, rounded to the nearest whole
// second, from the last page's granule position, found by scanning the trailing portion of the file for the
// last occurring "OggS" page rather than walking every page from the
// start.
func oggDuration(path string, codec oggCodec, sampleRate uint32, preSkip uint16) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0
	}

	const scanWindow = 64 * 1024
	start := int64(0)
	if info.Size() > scanWindow {
		start = info.Size() - scanWindow
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return 0
	}

	buf, err := io.ReadAll(f)
	if err != nil {
		return 0
	}

	granule, ok := lastOggGranule(buf)
	if !ok || sampleRate == 0 {
		return 0
	}

	if codec == oggCodecOpus {
		if granule < uint64(preSkip) {
			return 0
		}
		return int((granule - uint64(preSkip) + uint64(sampleRate)/2) / uint64(sampleRate))
	}
	return int((granule + uint64(sampleRate)/2) / uint64(sampleRate))
}

func lastOggGranule(buf []byte) (uint64, bool) {
	granule, found := uint64(0), false
	for i := 0; i+27 <= len(buf); i++ {
		if buf[i] == 'O' && buf[i+1] == 'g' && buf[i+2] == 'g' && buf[i+3] == 'S' {
			granule = binary.LittleEndian.Uint64(buf[i+6 : i+14])
			found = true
		}
	}
	return granule, found
}
