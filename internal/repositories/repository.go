package repositories

import (
	"musicd/internal/database"
)

// Repository aggregates every repository the synchronizer and read API
// depend on. Unlike the teacher there is no separate Artist/Genre/Label
// repository: those are plain credit rows scoped to a release or track
// (spec §3), upserted as part of the release/track write itself, so they
// live as methods on ReleaseRepository/TrackRepository rather than as
// entities with their own identity and repository.
type Repository struct {
	Release ReleaseRepository
	Track   TrackRepository
}

func New(db database.DB) Repository {
	return Repository{
		Release: NewReleaseRepository(db),
		Track:   NewTrackRepository(db),
	}
}
