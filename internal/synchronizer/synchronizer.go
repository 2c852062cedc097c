// Package synchronizer walks release directories on the source tree,
// extracts tags, and reconciles the cache store with what it finds
// (spec §4.5). It is the core the rest of the system feeds: the CLI's
// sweep, the scheduler's periodic sweep job, and the watcher's
// per-release refresh all call into the same Synchronizer.
package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"musicd/internal/artiststr"
	"musicd/internal/database"
	"musicd/internal/ident"
	"musicd/internal/logger"
	"musicd/internal/models"
	"musicd/internal/repositories"
	"musicd/internal/tagger"
	"musicd/internal/vname"
)

// TransactionRunner is the subset of services.TransactionService the
// synchronizer depends on. Declared locally rather than imported to
// avoid a synchronizer<->services import cycle (services.Service wires
// up the Synchronizer itself).
type TransactionRunner interface {
	Execute(ctx context.Context, fn func(context.Context) error) error
}

// Synchronizer reconciles the cache store with the source tree. It holds
// no filesystem state of its own; every call re-scans the directories it
// is given, matching the spec's "rebuilt from the authoritative store"
// design (§1).
type Synchronizer struct {
	repos repositories.Repository
	tx    TransactionRunner
	db    database.DB
	log   logger.Logger
}

func New(repos repositories.Repository, tx TransactionRunner, db database.DB) *Synchronizer {
	return &Synchronizer{
		repos: repos,
		tx:    tx,
		db:    db,
		log:   logger.New("synchronizer"),
	}
}

// SyncRelease runs the per-release pass against one release directory and
// returns its (possibly renamed) path. It is the primary contract spec
// §4.5 describes: on return the release exists in the cache with
// up-to-date fields, unless the directory carries no supported audio file
// or none of its files parses; then no release row is written and any
// existing row is left as it was.
func (s *Synchronizer) SyncRelease(ctx context.Context, dirPath string) (string, error) {
	log := s.log.Function("SyncRelease").With("dirPath", dirPath)

	dirPath, releaseID, err := s.ensureReleaseID(dirPath)
	if err != nil {
		return dirPath, log.Err("failed to assign release id", err)
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return dirPath, log.Err("failed to list release directory", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var audioFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := tagger.SupportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			audioFiles = append(audioFiles, entry.Name())
		}
	}

	if len(audioFiles) == 0 {
		log.Info("no supported audio files in directory, leaving any existing release row untouched")
		return dirPath, nil
	}

	var processedTracks int

	err = s.tx.Execute(ctx, func(ctx context.Context) error {
		var release *models.Release
		keptTrackPaths := make([]string, 0, len(audioFiles))

		for _, name := range audioFiles {
			filePath := filepath.Join(dirPath, name)

			tags, err := tagger.Read(filePath)
			if err != nil {
				if isSkippableTagError(err) {
					log.Warn("skipping file with unreadable tags", "file", filePath, "error", err.Error())
					continue
				}
				return fmt.Errorf("read tags for %s: %w", filePath, err)
			}

			if release == nil {
				release = buildRelease(releaseID, dirPath, tags)
				if err := s.repos.Release.Upsert(ctx, release); err != nil {
					return fmt.Errorf("upsert release: %w", err)
				}
			}

			filePath, trackID, err := s.ensureTrackID(filePath)
			if err != nil {
				return fmt.Errorf("assign track id for %s: %w", filePath, err)
			}

			track := buildTrack(trackID, filePath, release.ID, tags)
			if err := s.repos.Track.Upsert(ctx, track); err != nil {
				return fmt.Errorf("upsert track %s: %w", filePath, err)
			}

			keptTrackPaths = append(keptTrackPaths, filePath)
		}

		if release == nil {
			log.Warn("every audio file in directory failed to parse, leaving any existing release row untouched")
			return nil
		}

		if err := s.repos.Track.DeleteNotInByReleaseID(ctx, release.ID, keptTrackPaths); err != nil {
			return fmt.Errorf("prune stale tracks: %w", err)
		}

		processedTracks = len(keptTrackPaths)
		return nil
	})
	if err != nil {
		return dirPath, log.Err("per-release pass failed", err)
	}

	log.Info("synchronized release", "trackCount", processedTracks)
	return dirPath, nil
}

// isSkippableTagError reports whether err reflects a per-file tag problem
// (unsupported format or an unexpected tag value shape) rather than a
// genuine I/O failure. Spec §7's error taxonomy only aborts the release
// transaction for true I/O failures; these are caught, logged, and the
// file is skipped so the rest of the release still gets processed.
func isSkippableTagError(err error) bool {
	if errors.Is(err, tagger.ErrUnsupportedFormat) {
		return true
	}
	var unsupportedValue *tagger.UnsupportedTagValueTypeError
	return errors.As(err, &unsupportedValue)
}

// SweepAll scans every immediate subdirectory of sourceRoot, runs the
// per-release pass on each, and deletes cache rows for releases whose
// source path no longer appears. A failure on one release is logged and
// skipped rather than aborting the sweep (spec §4.5 failure model).
func (s *Synchronizer) SweepAll(ctx context.Context, sourceRoot string) error {
	log := s.log.Function("SweepAll").With("sourceRoot", sourceRoot)
	log.Info("starting sweep")

	entries, err := os.ReadDir(sourceRoot)
	if err != nil {
		return log.Err("failed to list source root", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	seen := make([]string, 0, len(entries))
	var releaseErrors int

	for _, entry := range entries {
		if !entry.IsDir() || isAuxiliaryDir(entry.Name()) {
			continue
		}

		dirPath := filepath.Join(sourceRoot, entry.Name())
		finalPath, err := s.SyncRelease(ctx, dirPath)
		if err != nil {
			releaseErrors++
			log.Warn("skipping release after sync failure", "dirPath", dirPath, "error", err.Error())
			continue
		}

		if release, err := s.repos.Release.GetBySourcePath(ctx, finalPath); err == nil && release != nil {
			seen = append(seen, finalPath)
		}
	}

	orphaned, err := s.repos.Release.DeleteNotIn(ctx, seen)
	if err != nil {
		return log.Err("failed to prune orphaned releases", err)
	}

	if dup := findDuplicateVirtualDirnames(ctx, s.repos); len(dup) > 0 {
		log.Warn("releases share a virtual directory name after sweep", "virtualDirnames", dup)
	}

	if err := s.db.Checkpoint(ctx); err != nil {
		log.Warn("failed to checkpoint WAL after sweep", "error", err.Error())
	}

	log.Info("sweep complete",
		"releasesSeen", len(seen), "releasesOrphaned", len(orphaned), "releaseErrors", releaseErrors)

	return nil
}

// isAuxiliaryDir reports whether name is one of the `!`-prefixed
// directories (e.g. "!collages", "!playlists") that external
// collaborators own; the core never scans into them (spec §4.6, §9).
func isAuxiliaryDir(name string) bool {
	return strings.HasPrefix(name, "!")
}

func (s *Synchronizer) ensureReleaseID(dirPath string) (newPath string, id string, err error) {
	base := filepath.Base(dirPath)
	if existing, ok := ident.ParseIDFromDirname(base); ok {
		return dirPath, existing, nil
	}

	id, err = ident.NewID()
	if err != nil {
		return dirPath, "", err
	}

	newBase := ident.EmbedIDInDirname(base, id)
	newPath = filepath.Join(filepath.Dir(dirPath), newBase)
	if err := os.Rename(dirPath, newPath); err != nil {
		return dirPath, "", fmt.Errorf("rename release directory: %w", err)
	}

	return newPath, id, nil
}

func (s *Synchronizer) ensureTrackID(filePath string) (newPath string, id string, err error) {
	base := filepath.Base(filePath)
	if existing, ok := ident.ParseIDFromFilename(base); ok {
		return filePath, existing, nil
	}

	id, err = ident.NewID()
	if err != nil {
		return filePath, "", err
	}

	newBase := ident.EmbedIDInFilename(base, id)
	newPath = filepath.Join(filepath.Dir(filePath), newBase)
	if err := os.Rename(filePath, newPath); err != nil {
		return filePath, "", fmt.Errorf("rename track file: %w", err)
	}

	return newPath, id, nil
}

func normalizeReleaseType(raw string) models.ReleaseType {
	rt := models.ReleaseType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := models.SupportedReleaseTypes[rt]; ok {
		return rt
	}
	return models.ReleaseTypeUnknown
}

func buildRelease(id, dirPath string, tags *tagger.AudioFile) *models.Release {
	am := artiststr.ParseArtistString(
		tags.AlbumArtists.Main, tags.AlbumArtists.Remixer, tags.AlbumArtists.Composer,
		tags.AlbumArtists.Conductor, tags.AlbumArtists.Producer, tags.AlbumArtists.DJMixer,
	)
	formattedArtists := artiststr.FormatArtistString(am, tags.Genres)
	releaseType := normalizeReleaseType(tags.ReleaseType)

	dirname := vname.BuildReleaseDirname(vname.ReleaseInput{
		FormattedArtists: formattedArtists,
		Year:             tags.Year,
		Album:            tags.Album,
		ReleaseType:      string(releaseType),
		Genres:           tags.Genres,
		Labels:           tags.Labels,
	})

	release := &models.Release{
		BaseModel:      models.BaseModel{ID: id},
		SourcePath:     dirPath,
		VirtualDirname: dirname,
		Title:          emptyToUnknown(tags.Album, "Unknown Release"),
		ReleaseType:    releaseType,
		ReleaseYear:    tags.Year,
		New:            true,
	}

	for _, genre := range tags.Genres {
		release.Genres = append(release.Genres, models.ReleaseGenre{Genre: genre})
	}
	for _, label := range tags.Labels {
		release.Labels = append(release.Labels, models.ReleaseLabel{Label: label})
	}
	release.Artists = artistMappingToReleaseArtists(am)

	return release
}

func buildTrack(id, sourcePath, releaseID string, tags *tagger.AudioFile) *models.Track {
	trackAM := artiststr.ParseArtistString(
		tags.TrackArtists.Main, tags.TrackArtists.Remixer, tags.TrackArtists.Composer,
		tags.TrackArtists.Conductor, tags.TrackArtists.Producer, tags.TrackArtists.DJMixer,
	)
	albumAM := artiststr.ParseArtistString(
		tags.AlbumArtists.Main, tags.AlbumArtists.Remixer, tags.AlbumArtists.Composer,
		tags.AlbumArtists.Conductor, tags.AlbumArtists.Producer, tags.AlbumArtists.DJMixer,
	)
	formattedTrackArtists := artiststr.FormatArtistString(trackAM, tags.Genres)
	formattedAlbumArtists := artiststr.FormatArtistString(albumAM, tags.Genres)

	filename := vname.BuildTrackFilename(vname.TrackInput{
		DiscNumber:            tags.DiscNumber,
		TrackNumber:           tags.TrackNumber,
		Title:                 tags.Title,
		DurationSec:           tags.DurationSec,
		FormattedTrackArtists: formattedTrackArtists,
		FormattedAlbumArtists: formattedAlbumArtists,
	})

	track := &models.Track{
		BaseModel:       models.BaseModel{ID: id},
		SourcePath:      sourcePath,
		VirtualFilename: filename,
		Title:           emptyToUnknown(tags.Title, "Unknown Title"),
		ReleaseID:       releaseID,
		TrackNumber:     tags.TrackNumber,
		DiscNumber:      tags.DiscNumber,
		DurationSeconds: tags.DurationSec,
		Artists:         artistMappingToTrackArtists(trackAM),
	}

	return track
}

func artistMappingToReleaseArtists(am artiststr.ArtistMapping) []models.ReleaseArtist {
	var out []models.ReleaseArtist
	for role, names := range roleBuckets(am) {
		for _, name := range names {
			out = append(out, models.ReleaseArtist{Artist: name, Role: role})
		}
	}
	return out
}

func artistMappingToTrackArtists(am artiststr.ArtistMapping) []models.TrackArtist {
	var out []models.TrackArtist
	for role, names := range roleBuckets(am) {
		for _, name := range names {
			out = append(out, models.TrackArtist{Artist: name, Role: role})
		}
	}
	return out
}

func roleBuckets(am artiststr.ArtistMapping) map[models.ArtistRole][]string {
	return map[models.ArtistRole][]string{
		models.ArtistRoleMain:     am.Main,
		models.ArtistRoleGuest:    am.Guest,
		models.ArtistRoleRemixer:  am.Remixer,
		models.ArtistRoleProducer: am.Producer,
		models.ArtistRoleComposer: am.Composer,
		models.ArtistRoleDJMixer:  am.DJMixer,
	}
}

func emptyToUnknown(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// findDuplicateVirtualDirnames reports any virtual_dirname value shared by
// more than one release. Spec §3 treats this collision as a design-noted
// gap the core does not resolve. The schema's unique index on
// virtual_dirname already makes the upsert of a second release with the
// same name fail, so SyncRelease returns an error and the sweep logs and
// skips that release; this check warns about any shared name that is
// still present after the sweep.
func findDuplicateVirtualDirnames(
	ctx context.Context,
	repos repositories.Repository,
) []string {
	releases, err := repos.Release.ListFiltered(ctx, repositories.ReleaseFilter{})
	if err != nil {
		return nil
	}

	counts := make(map[string]int, len(releases))
	for _, r := range releases {
		counts[r.VirtualDirname]++
	}

	var dup []string
	for name, count := range counts {
		if count > 1 {
			dup = append(dup, name)
		}
	}
	sort.Strings(dup)
	return dup
}
