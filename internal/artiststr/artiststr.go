// Package artiststr parses and formats the composite artist strings found in
// audio tags (e.g. "Artist feat. Guest produced by Producer") into a
// structured role mapping, and back again.
package artiststr

import (
	"regexp"
	"strings"

	"musicd/internal/genres"
)

// delimiterRegex splits a tag value into individual artist names. It
// recognizes the separators commonly found in the wild: the double
// backslash, a bare slash, a semicolon (optionally followed by a space),
// and " vs. ".
var delimiterRegex = regexp.MustCompile(` \\\\ | / |; ?| vs\. `)

// Each of these matches "<head> <keyword> <tail>" against the residual
// main string. For produced-by/remixed-by/feat. the head keeps flowing as
// the residual main and the tail is consumed into its bucket. For
// pres./performed-by the roles invert: the head is consumed into its
// bucket (djmixer, composer) and the tail becomes the residual main.
var (
	reProducedBy  = regexp.MustCompile(`(?i)^(.*)\s+produced by\s+(.+)$`)
	reRemixedBy   = regexp.MustCompile(`(?i)^(.*)\s+remixed by\s+(.+)$`)
	reFeat        = regexp.MustCompile(`(?i)^(.*)\s+feat\.\s+(.+)$`)
	rePres        = regexp.MustCompile(`(?i)^(.*)\s+pres\.\s+(.+)$`)
	rePerformedBy = regexp.MustCompile(`(?i)^(.*)\s+performed by\s+(.+)$`)
)

// ArtistMapping holds every artist credited on a release or track, bucketed
// by role. Roles mirror the cache schema's artist_relation enum: main,
// guest, remixer, producer, composer, djmixer. Conductor has no bucket of
// its own; conductor names are merged into Main during parsing.
type ArtistMapping struct {
	Main     []string
	Guest    []string
	Remixer  []string
	Producer []string
	Composer []string
	DJMixer  []string
}

// ParseArtistString decomposes the main artist tag (which may carry
// embedded "produced by"/"remixed by"/"feat."/"pres."/"performed by"
// annotations) alongside the explicit role tags read separately from the
// file (remixer, composer, conductor, producer, DJ-mixer) into a single
// ArtistMapping.
//
// The main string is stripped of its suffixes in a fixed order, each
// match consuming its operand into the corresponding bucket:
//  1. "… produced by X"  -> producer, head continues as main
//  2. "… remixed by X"   -> remixer, head continues as main
//  3. "… feat. X"        -> guest, head continues as main
//  4. "X pres. …"        -> djmixer, tail continues as main
//  5. "X performed by …" -> composer, tail continues as main
func ParseArtistString(main, remixer, composer, conductor, producer, dj string) ArtistMapping {
	work := strings.TrimSpace(main)

	var guestOut, producerOut, remixerOut, composerOut, djOut []string

	if m := reProducedBy.FindStringSubmatch(work); m != nil {
		work = strings.TrimSpace(m[1])
		producerOut = splitNames(m[2])
	}
	if m := reRemixedBy.FindStringSubmatch(work); m != nil {
		work = strings.TrimSpace(m[1])
		remixerOut = splitNames(m[2])
	}
	if m := reFeat.FindStringSubmatch(work); m != nil {
		work = strings.TrimSpace(m[1])
		guestOut = splitNames(m[2])
	}
	if m := rePres.FindStringSubmatch(work); m != nil {
		djOut = splitNames(m[1])
		work = strings.TrimSpace(m[2])
	}
	if m := rePerformedBy.FindStringSubmatch(work); m != nil {
		composerOut = splitNames(m[1])
		work = strings.TrimSpace(m[2])
	}

	conductorNames := splitNames(conductor)
	mainFinal := dedup(append(append([]string{}, splitNames(work)...), conductorNames...))

	return ArtistMapping{
		Main:     mainFinal,
		Guest:    dedup(guestOut),
		Remixer:  dedup(append(splitNames(remixer), remixerOut...)),
		Producer: dedup(append(splitNames(producer), producerOut...)),
		Composer: dedup(append(splitNames(composer), composerOut...)),
		DJMixer:  dedup(append(splitNames(dj), djOut...)),
	}
}

// FormatArtistString reconstructs the main artist tag value from an
// ArtistMapping, applying the Classical/"performed by" convention when the
// release's genre set includes a classical genre.
func FormatArtistString(am ArtistMapping, genreNames []string) string {
	result := strings.Join(am.Main, ";")

	if len(am.Composer) > 0 && genres.IsClassical(genreNames) {
		result = strings.Join(am.Composer, ";") + " performed by " + result
	}
	if len(am.DJMixer) > 0 {
		result = strings.Join(am.DJMixer, ";") + " pres. " + result
	}
	if len(am.Guest) > 0 {
		result += " feat. " + strings.Join(am.Guest, ";")
	}
	if len(am.Remixer) > 0 {
		result += " remixed by " + strings.Join(am.Remixer, ";")
	}
	if len(am.Producer) > 0 {
		result += " produced by " + strings.Join(am.Producer, ";")
	}

	return result
}

// SplitMultiValue splits a raw multi-value tag (genre, label, and similar
// fields) on the same delimiter grammar used for artist names.
func SplitMultiValue(s string) []string {
	return splitNames(s)
}

func splitNames(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := delimiterRegex.Split(s, -1)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

func dedup(names []string) []string {
	if len(names) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
