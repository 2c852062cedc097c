package tagger

import (
	"fmt"
	"os"
	"strings"

	"musicd/internal/artiststr"
	"musicd/internal/utils"

	"github.com/tmthrgd/id3v2"
)

// readMP3 reads ID3v2 frames from an MP3 file. Standard single-valued
// frames are read with Frames.Lookup; TXXX and TIPL/IPLS carry multiple
// logical values packed into one frame (or repeat across several frames),
// so those are walked by hand.
func readMP3(path string) (*AudioFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tagger: open %s: %w", path, err)
	}
	defer f.Close()

	frames, err := id3v2.Scan(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, path, err)
	}

	af := &AudioFile{}

	af.Title = frameText(frames, id3v2.FrameTIT2)
	af.Album = frameText(frames, id3v2.FrameTALB)

	year := frameText(frames, id3v2.FrameTDRC)
	if year == "" {
		year = frameText(frames, id3v2.FrameTYER)
	}
	af.Year = parseYear(year)

	af.TrackNumber = firstComponent(frameText(frames, id3v2.FrameTRCK))
	af.DiscNumber = firstComponent(frameText(frames, id3v2.FrameTPOS))

	af.Genres = artiststr.SplitMultiValue(frameText(frames, id3v2.FrameTCON))
	af.Labels = artiststr.SplitMultiValue(frameText(frames, id3v2.FrameTPUB))

	af.AlbumArtists = ArtistStrings{
		Main:      frameText(frames, id3v2.FrameTPE2),
		Composer:  frameText(frames, id3v2.FrameTCOM),
		Conductor: frameText(frames, id3v2.FrameTPE3),
		Remixer:   frameText(frames, id3v2.FrameTPE4),
	}
	af.TrackArtists = ArtistStrings{
		Main:      frameText(frames, id3v2.FrameTPE1),
		Composer:  af.AlbumArtists.Composer,
		Conductor: af.AlbumArtists.Conductor,
		Remixer:   af.AlbumArtists.Remixer,
	}

	producer, dj := readInvolvedPeople(frames)
	af.AlbumArtists.Producer = producer
	af.AlbumArtists.DJMixer = dj
	af.TrackArtists.Producer = producer
	af.TrackArtists.DJMixer = dj

	if rt := readTXXX(frames, "RELEASETYPE"); rt != "" {
		af.ReleaseType = rt
	}

	return af, nil
}

// frameText looks up id and returns its decoded text, or "" if the frame
// is absent or fails to decode. Legacy ID3v2.2/v1 frames occasionally
// carry invalid UTF-8 or NUL padding left over from fixed-width Latin-1
// fields; CleanUTF8 strips that before the value flows any further.
func frameText(frames id3v2.Frames, id id3v2.FrameID) string {
	frame := frames.Lookup(id)
	if frame == nil {
		return ""
	}

	text, err := frame.Text()
	if err != nil {
		return ""
	}
	text, _ = utils.CleanUTF8(text)
	return strings.TrimSpace(text)
}

// readTXXX scans every TXXX frame by hand (Lookup only returns the last
// match) for one whose description matches desc case-insensitively, and
// returns its value half.
func readTXXX(frames id3v2.Frames, desc string) string {
	for _, frame := range frames {
		if frame.ID != id3v2.FrameTXXX {
			continue
		}

		text, err := frame.Text()
		if err != nil {
			continue
		}

		parts := strings.SplitN(text, "\x00", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), desc) {
			value, _ := utils.CleanUTF8(parts[1])
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// readInvolvedPeople walks TIPL (v2.4) or IPLS (v2.3), whose text is a
// flat sequence of role\x00name\x00role\x00name... pairs, and pulls out
// the producer and DJ-mixer credits.
func readInvolvedPeople(frames id3v2.Frames) (producer, dj string) {
	frame := frames.Lookup(id3v2.FrameTIPL)
	if frame == nil {
		frame = frames.Lookup(id3v2.FrameIPLS)
	}
	if frame == nil {
		return "", ""
	}

	text, err := frame.Text()
	if err != nil {
		return "", ""
	}

	fields := strings.Split(text, "\x00")
	var producers, djs []string
	for i := 0; i+1 < len(fields); i += 2 {
		role := strings.ToLower(strings.TrimSpace(fields[i]))
		name, _ := utils.CleanUTF8(fields[i+1])
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		switch {
		case strings.Contains(role, "producer"):
			producers = append(producers, name)
		case strings.Contains(role, "dj-mix"), strings.Contains(role, "djmix"), strings.Contains(role, "dj mix"):
			djs = append(djs, name)
		}
	}

	return strings.Join(producers, ";"), strings.Join(djs, ";")
}

