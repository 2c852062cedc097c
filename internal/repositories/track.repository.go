package repositories

import (
	"context"

	contextutil "musicd/internal/context"
	"musicd/internal/database"
	"musicd/internal/logger"
	"musicd/internal/models"
	"musicd/internal/sanitize"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrackRepository persists one track and its artist credits, mirroring
// ReleaseRepository's upsert shape.
type TrackRepository interface {
	Upsert(ctx context.Context, track *models.Track) error
	GetBySourcePath(ctx context.Context, sourcePath string) (*models.Track, error)
	GetByReleaseAndVirtualFilename(
		ctx context.Context,
		releaseID, virtualFilename string,
	) (*models.Track, error)
	ListByReleaseID(ctx context.Context, releaseID string) ([]*models.Track, error)
	ListSourcePathsByReleaseID(ctx context.Context, releaseID string) ([]string, error)
	DeleteNotInByReleaseID(ctx context.Context, releaseID string, keep []string) error
}

type trackRepository struct {
	db  database.DB
	log logger.Logger
}

func NewTrackRepository(db database.DB) TrackRepository {
	return &trackRepository{
		db:  db,
		log: logger.New("trackRepository"),
	}
}

func (t *trackRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return t.db.SQLWithContext(ctx)
}

func (t *trackRepository) Upsert(ctx context.Context, track *models.Track) error {
	log := t.log.Function("Upsert")

	tx := t.getDB(ctx)

	if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source_path", "virtual_filename", "title", "release_id",
			"track_number", "disc_number", "duration_seconds", "updated_at",
		}),
	}).Create(track).Error; err != nil {
		return log.Err("failed to upsert track", err, "trackID", track.ID)
	}

	artistRows := make([]models.TrackArtist, 0, len(track.Artists))
	for _, a := range track.Artists {
		artistRows = append(artistRows, models.TrackArtist{
			TrackID:   track.ID,
			Artist:    a.Artist,
			Sanitized: sanitize.Value(a.Artist),
			Role:      a.Role,
		})
	}
	if len(artistRows) > 0 {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "track_id"}, {Name: "artist"}},
			DoUpdates: clause.AssignmentColumns([]string{"sanitized", "role"}),
		}).Create(&artistRows).Error; err != nil {
			return log.Err("failed to upsert track artists", err, "trackID", track.ID)
		}
	}

	return nil
}

func (t *trackRepository) GetBySourcePath(
	ctx context.Context,
	sourcePath string,
) (*models.Track, error) {
	log := t.log.Function("GetBySourcePath")

	var track models.Track
	err := t.getDB(ctx).Preload("Artists").First(&track, "source_path = ?", sourcePath).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, log.Err("failed to get track by source path", err, "sourcePath", sourcePath)
	}

	return &track, nil
}

func (t *trackRepository) GetByReleaseAndVirtualFilename(
	ctx context.Context,
	releaseID, virtualFilename string,
) (*models.Track, error) {
	log := t.log.Function("GetByReleaseAndVirtualFilename")

	var track models.Track
	err := t.getDB(ctx).Preload("Artists").First(
		&track, "release_id = ? AND virtual_filename = ?", releaseID, virtualFilename,
	).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, log.Err(
			"failed to get track by release and virtual filename", err,
			"releaseID", releaseID, "virtualFilename", virtualFilename,
		)
	}

	return &track, nil
}

func (t *trackRepository) ListByReleaseID(
	ctx context.Context,
	releaseID string,
) ([]*models.Track, error) {
	log := t.log.Function("ListByReleaseID")

	var tracks []*models.Track
	if err := t.getDB(ctx).Preload("Artists").
		Where("release_id = ?", releaseID).
		Order("disc_number, track_number").
		Find(&tracks).Error; err != nil {
		return nil, log.Err("failed to list tracks by release id", err, "releaseID", releaseID)
	}

	return tracks, nil
}

func (t *trackRepository) ListSourcePathsByReleaseID(
	ctx context.Context,
	releaseID string,
) ([]string, error) {
	log := t.log.Function("ListSourcePathsByReleaseID")

	var paths []string
	if err := t.getDB(ctx).Model(&models.Track{}).
		Where("release_id = ?", releaseID).
		Pluck("source_path", &paths).Error; err != nil {
		return nil, log.Err("failed to list track source paths", err, "releaseID", releaseID)
	}

	return paths, nil
}

// DeleteNotInByReleaseID removes tracks under releaseID whose source
// path is absent from keep, handling a track that disappears from a
// release without the whole release directory disappearing.
func (t *trackRepository) DeleteNotInByReleaseID(
	ctx context.Context,
	releaseID string,
	keep []string,
) error {
	log := t.log.Function("DeleteNotInByReleaseID")

	query := t.getDB(ctx).Where("release_id = ?", releaseID)
	if len(keep) > 0 {
		query = query.Where("source_path NOT IN ?", keep)
	}

	if err := query.Delete(&models.Track{}).Error; err != nil {
		return log.Err("failed to delete stale tracks", err, "releaseID", releaseID)
	}

	return nil
}
