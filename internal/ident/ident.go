// Package ident assigns and recovers the stable identifiers embedded in
// release directory names and track filenames, e.g.
// "Artist - Title {id=0189f...}".
package ident

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// idTagRegex matches an "{id=...}" tag anywhere in a path component.
var idTagRegex = regexp.MustCompile(`\{id=([^}]+)\}`)

// NewID generates a new time-ordered identifier for a release or track.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

// ParseIDFromDirname extracts the "{id=...}" tag from a release directory
// name. It returns ok=false if the directory name carries no identifier,
// which is treated as "absent" rather than an error: the caller is
// responsible for assigning and embedding a fresh one.
func ParseIDFromDirname(dirname string) (id string, ok bool) {
	return parseIDTag(dirname)
}

// ParseIDFromFilename extracts the "{id=...}" tag from a track's filename
// stem (extension stripped before matching).
func ParseIDFromFilename(filename string) (id string, ok bool) {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	return parseIDTag(stem)
}

func parseIDTag(s string) (string, bool) {
	m := idTagRegex.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	id := strings.TrimSpace(m[1])
	if id == "" {
		return "", false
	}
	return id, true
}

// EmbedIDInDirname appends an "{id=...}" tag to a release directory name
// that doesn't already carry one.
func EmbedIDInDirname(dirname, id string) string {
	if _, ok := parseIDTag(dirname); ok {
		return dirname
	}
	return fmt.Sprintf("%s {id=%s}", strings.TrimRight(dirname, " "), id)
}

// EmbedIDInFilename appends an "{id=...}" tag to a track's filename stem,
// preserving its extension, if it doesn't already carry one.
func EmbedIDInFilename(filename, id string) string {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	if _, ok := parseIDTag(stem); ok {
		return filename
	}
	return fmt.Sprintf("%s {id=%s}%s", strings.TrimRight(stem, " "), id, ext)
}
