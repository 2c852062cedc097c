// Package readapi exposes the read-only queries the virtual filesystem
// drives off of: listing releases/tracks/taxonomy values and checking
// existence by virtual name (spec §4.7). It never mutates the cache.
package readapi

import (
	"context"

	"musicd/internal/logger"
	"musicd/internal/models"
	"musicd/internal/repositories"
	"musicd/internal/sanitize"
)

type ReadAPI struct {
	repos repositories.Repository
	log   logger.Logger
}

func New(repos repositories.Repository) *ReadAPI {
	return &ReadAPI{repos: repos, log: logger.New("readapi")}
}

// ListReleases returns releases, optionally narrowed to those carrying a
// given artist, genre, or label. Filter values are matched after
// sanitizing, so callers pass raw display strings as they'd appear to a
// user of the virtual filesystem.
func (r *ReadAPI) ListReleases(
	ctx context.Context,
	artist, genre, label string,
) ([]*models.Release, error) {
	return r.repos.Release.ListFiltered(ctx, repositories.ReleaseFilter{
		SanitizedArtist: sanitizeOrEmpty(artist),
		SanitizedGenre:  sanitizeOrEmpty(genre),
		SanitizedLabel:  sanitizeOrEmpty(label),
	})
}

// ListTracks returns every track belonging to the release identified by
// its virtual directory name, ordered by disc then track number.
func (r *ReadAPI) ListTracks(
	ctx context.Context,
	releaseVirtualDirname string,
) ([]*models.Track, error) {
	log := r.log.Function("ListTracks")

	release, err := r.repos.Release.GetByVirtualDirname(ctx, releaseVirtualDirname)
	if err != nil {
		return nil, log.Err("failed to resolve release", err, "virtualDirname", releaseVirtualDirname)
	}
	if release == nil {
		return nil, nil
	}

	return r.repos.Track.ListByReleaseID(ctx, release.ID)
}

// ListDistinctArtists returns every artist name credited on any release.
func (r *ReadAPI) ListDistinctArtists(ctx context.Context) ([]string, error) {
	return r.repos.Release.ListDistinctArtists(ctx)
}

// ListDistinctGenres returns every genre credited on any release.
func (r *ReadAPI) ListDistinctGenres(ctx context.Context) ([]string, error) {
	return r.repos.Release.ListDistinctGenres(ctx)
}

// ListDistinctLabels returns every label credited on any release.
func (r *ReadAPI) ListDistinctLabels(ctx context.Context) ([]string, error) {
	return r.repos.Release.ListDistinctLabels(ctx)
}

// ReleaseExists reports whether a release with the given virtual
// directory name exists, returning its source path if so.
func (r *ReadAPI) ReleaseExists(ctx context.Context, virtualDirname string) (sourcePath string, ok bool, err error) {
	log := r.log.Function("ReleaseExists")

	release, err := r.repos.Release.GetByVirtualDirname(ctx, virtualDirname)
	if err != nil {
		return "", false, log.Err("failed to check release existence", err, "virtualDirname", virtualDirname)
	}
	if release == nil {
		return "", false, nil
	}

	return release.SourcePath, true, nil
}

// TrackExists reports whether a track with the given virtual filename
// exists under the release with the given virtual directory name,
// returning its source path if so.
func (r *ReadAPI) TrackExists(
	ctx context.Context,
	releaseVirtualDirname, trackVirtualFilename string,
) (sourcePath string, ok bool, err error) {
	log := r.log.Function("TrackExists")

	release, err := r.repos.Release.GetByVirtualDirname(ctx, releaseVirtualDirname)
	if err != nil {
		return "", false, log.Err("failed to resolve release", err, "virtualDirname", releaseVirtualDirname)
	}
	if release == nil {
		return "", false, nil
	}

	track, err := r.repos.Track.GetByReleaseAndVirtualFilename(ctx, release.ID, trackVirtualFilename)
	if err != nil {
		return "", false, log.Err("failed to check track existence", err,
			"virtualDirname", releaseVirtualDirname, "virtualFilename", trackVirtualFilename)
	}
	if track == nil {
		return "", false, nil
	}

	return track.SourcePath, true, nil
}

// ArtistExists reports whether the given artist name (sanitized before
// comparison) is credited on any release.
func (r *ReadAPI) ArtistExists(ctx context.Context, artist string) (bool, error) {
	return r.repos.Release.ExistsBySanitizedArtist(ctx, sanitize.Value(artist))
}

// GenreExists reports whether the given genre name (sanitized before
// comparison) is credited on any release.
func (r *ReadAPI) GenreExists(ctx context.Context, genre string) (bool, error) {
	return r.repos.Release.ExistsBySanitizedGenre(ctx, sanitize.Value(genre))
}

// LabelExists reports whether the given label name (sanitized before
// comparison) is credited on any release.
func (r *ReadAPI) LabelExists(ctx context.Context, label string) (bool, error) {
	return r.repos.Release.ExistsBySanitizedLabel(ctx, sanitize.Value(label))
}

func sanitizeOrEmpty(s string) string {
	if s == "" {
		return ""
	}
	return sanitize.Value(s)
}
