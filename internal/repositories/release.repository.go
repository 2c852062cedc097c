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

// ReleaseRepository persists one release and its genre/label/artist
// relations per the upsert semantics in rose/cache/update.py: the
// release row itself is a full-overwrite upsert keyed on id, genres and
// labels are insert-if-absent, and artist credits update their role in
// place when re-synced.
type ReleaseRepository interface {
	Upsert(ctx context.Context, release *models.Release) error
	GetBySourcePath(ctx context.Context, sourcePath string) (*models.Release, error)
	GetByVirtualDirname(ctx context.Context, virtualDirname string) (*models.Release, error)
	ListSourcePaths(ctx context.Context) ([]string, error)
	DeleteNotIn(ctx context.Context, sourcePaths []string) ([]string, error)
	DeleteBySourcePath(ctx context.Context, sourcePath string) error
	DeleteByID(ctx context.Context, id string) error
	ListFiltered(ctx context.Context, filter ReleaseFilter) ([]*models.Release, error)
	ListDistinctArtists(ctx context.Context) ([]string, error)
	ListDistinctGenres(ctx context.Context) ([]string, error)
	ListDistinctLabels(ctx context.Context) ([]string, error)
	ExistsBySanitizedArtist(ctx context.Context, sanitizedArtist string) (bool, error)
	ExistsBySanitizedGenre(ctx context.Context, sanitizedGenre string) (bool, error)
	ExistsBySanitizedLabel(ctx context.Context, sanitizedLabel string) (bool, error)
}

// ReleaseFilter narrows ListFiltered to releases carrying a given
// sanitized artist, genre, or label (spec §4.7 read API). Each field is
// optional; an empty string means "no filter on this dimension".
type ReleaseFilter struct {
	SanitizedArtist string
	SanitizedGenre  string
	SanitizedLabel  string
}

type releaseRepository struct {
	db  database.DB
	log logger.Logger
}

func NewReleaseRepository(db database.DB) ReleaseRepository {
	return &releaseRepository{
		db:  db,
		log: logger.New("releaseRepository"),
	}
}

func (r *releaseRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextutil.GetTransaction(ctx); ok {
		return tx
	}
	return r.db.SQLWithContext(ctx)
}

func (r *releaseRepository) Upsert(ctx context.Context, release *models.Release) error {
	log := r.log.Function("Upsert")

	tx := r.getDB(ctx)

	// Omit the association fields here: GORM's Create otherwise tries to
	// save Genres/Labels/Artists itself with no conflict clause, racing
	// the explicit upserts below.
	if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source_path", "virtual_dirname", "title", "release_type",
			"release_year", "new", "updated_at",
		}),
	}).Create(release).Error; err != nil {
		return log.Err("failed to upsert release", err, "releaseID", release.ID)
	}

	genreRows := make([]models.ReleaseGenre, 0, len(release.Genres))
	for _, g := range release.Genres {
		genreRows = append(genreRows, models.ReleaseGenre{
			ReleaseID: release.ID,
			Genre:     g.Genre,
			Sanitized: sanitize.Value(g.Genre),
		})
	}
	if len(genreRows) > 0 {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&genreRows).Error; err != nil {
			return log.Err("failed to upsert release genres", err, "releaseID", release.ID)
		}
	}

	labelRows := make([]models.ReleaseLabel, 0, len(release.Labels))
	for _, l := range release.Labels {
		labelRows = append(labelRows, models.ReleaseLabel{
			ReleaseID: release.ID,
			Label:     l.Label,
			Sanitized: sanitize.Value(l.Label),
		})
	}
	if len(labelRows) > 0 {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&labelRows).Error; err != nil {
			return log.Err("failed to upsert release labels", err, "releaseID", release.ID)
		}
	}

	artistRows := make([]models.ReleaseArtist, 0, len(release.Artists))
	for _, a := range release.Artists {
		artistRows = append(artistRows, models.ReleaseArtist{
			ReleaseID: release.ID,
			Artist:    a.Artist,
			Sanitized: sanitize.Value(a.Artist),
			Role:      a.Role,
		})
	}
	if len(artistRows) > 0 {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "release_id"}, {Name: "artist"}},
			DoUpdates: clause.AssignmentColumns([]string{"sanitized", "role"}),
		}).Create(&artistRows).Error; err != nil {
			return log.Err("failed to upsert release artists", err, "releaseID", release.ID)
		}
	}

	return nil
}

func (r *releaseRepository) GetBySourcePath(
	ctx context.Context,
	sourcePath string,
) (*models.Release, error) {
	log := r.log.Function("GetBySourcePath")

	var release models.Release
	err := r.getDB(ctx).
		Preload("Genres").Preload("Labels").Preload("Artists").
		First(&release, "source_path = ?", sourcePath).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, log.Err("failed to get release by source path", err, "sourcePath", sourcePath)
	}

	return &release, nil
}

func (r *releaseRepository) GetByVirtualDirname(
	ctx context.Context,
	virtualDirname string,
) (*models.Release, error) {
	log := r.log.Function("GetByVirtualDirname")

	var release models.Release
	err := r.getDB(ctx).
		Preload("Genres").Preload("Labels").Preload("Artists").
		First(&release, "virtual_dirname = ?", virtualDirname).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, log.Err(
			"failed to get release by virtual dirname", err, "virtualDirname", virtualDirname,
		)
	}

	return &release, nil
}

func (r *releaseRepository) ListSourcePaths(ctx context.Context) ([]string, error) {
	log := r.log.Function("ListSourcePaths")

	var paths []string
	if err := r.getDB(ctx).Model(&models.Release{}).
		Pluck("source_path", &paths).Error; err != nil {
		return nil, log.Err("failed to list release source paths", err)
	}

	return paths, nil
}

// DeleteNotIn removes every release whose source_path is absent from
// keep, returning the deleted source paths. Track/join rows cascade via
// the schema's ON DELETE CASCADE (spec §3: "deletion cascades from
// release to tracks via the cache store's referential integrity").
func (r *releaseRepository) DeleteNotIn(
	ctx context.Context,
	keep []string,
) ([]string, error) {
	log := r.log.Function("DeleteNotIn")

	tx := r.getDB(ctx)

	var orphaned []string
	query := tx.Model(&models.Release{})
	if len(keep) > 0 {
		query = query.Where("source_path NOT IN ?", keep)
	}
	if err := query.Pluck("source_path", &orphaned).Error; err != nil {
		return nil, log.Err("failed to find orphaned releases", err)
	}

	if len(orphaned) == 0 {
		return nil, nil
	}

	if err := tx.Where("source_path IN ?", orphaned).Delete(&models.Release{}).Error; err != nil {
		return nil, log.Err("failed to delete orphaned releases", err, "count", len(orphaned))
	}

	log.Info("Swept orphaned releases", "count", len(orphaned))
	return orphaned, nil
}

func (r *releaseRepository) DeleteBySourcePath(ctx context.Context, sourcePath string) error {
	log := r.log.Function("DeleteBySourcePath")

	if err := r.getDB(ctx).
		Where("source_path = ?", sourcePath).
		Delete(&models.Release{}).Error; err != nil {
		return log.Err("failed to delete release by source path", err, "sourcePath", sourcePath)
	}

	return nil
}

func (r *releaseRepository) DeleteByID(ctx context.Context, id string) error {
	log := r.log.Function("DeleteByID")

	if err := r.getDB(ctx).Delete(&models.Release{}, "id = ?", id).Error; err != nil {
		return log.Err("failed to delete release by id", err, "id", id)
	}

	return nil
}

func (r *releaseRepository) ListFiltered(
	ctx context.Context,
	filter ReleaseFilter,
) ([]*models.Release, error) {
	log := r.log.Function("ListFiltered")

	query := r.getDB(ctx).Model(&models.Release{}).
		Preload("Genres").Preload("Labels").Preload("Artists").
		Distinct("releases.*")

	if filter.SanitizedArtist != "" {
		query = query.Joins(
			"JOIN releases_artists ra ON ra.release_id = releases.id AND ra.sanitized = ?",
			filter.SanitizedArtist,
		)
	}
	if filter.SanitizedGenre != "" {
		query = query.Joins(
			"JOIN releases_genres rg ON rg.release_id = releases.id AND rg.sanitized = ?",
			filter.SanitizedGenre,
		)
	}
	if filter.SanitizedLabel != "" {
		query = query.Joins(
			"JOIN releases_labels rl ON rl.release_id = releases.id AND rl.sanitized = ?",
			filter.SanitizedLabel,
		)
	}

	var releases []*models.Release
	if err := query.Find(&releases).Error; err != nil {
		return nil, log.Err("failed to list filtered releases", err, "filter", filter)
	}

	return releases, nil
}

func (r *releaseRepository) ListDistinctArtists(ctx context.Context) ([]string, error) {
	return r.listDistinct(ctx, "releases_artists", "artist")
}

func (r *releaseRepository) ListDistinctGenres(ctx context.Context) ([]string, error) {
	return r.listDistinct(ctx, "releases_genres", "genre")
}

func (r *releaseRepository) ListDistinctLabels(ctx context.Context) ([]string, error) {
	return r.listDistinct(ctx, "releases_labels", "label")
}

func (r *releaseRepository) listDistinct(
	ctx context.Context,
	table, column string,
) ([]string, error) {
	log := r.log.Function("listDistinct")

	var values []string
	if err := r.getDB(ctx).Table(table).Distinct(column).Order(column).
		Pluck(column, &values).Error; err != nil {
		return nil, log.Err("failed to list distinct values", err, "table", table, "column", column)
	}

	return values, nil
}

func (r *releaseRepository) ExistsBySanitizedArtist(
	ctx context.Context,
	sanitizedArtist string,
) (bool, error) {
	return r.existsWhere(ctx, "releases_artists", "sanitized = ?", sanitizedArtist)
}

func (r *releaseRepository) ExistsBySanitizedGenre(
	ctx context.Context,
	sanitizedGenre string,
) (bool, error) {
	return r.existsWhere(ctx, "releases_genres", "sanitized = ?", sanitizedGenre)
}

func (r *releaseRepository) ExistsBySanitizedLabel(
	ctx context.Context,
	sanitizedLabel string,
) (bool, error) {
	return r.existsWhere(ctx, "releases_labels", "sanitized = ?", sanitizedLabel)
}

func (r *releaseRepository) existsWhere(
	ctx context.Context,
	table, cond string,
	arg any,
) (bool, error) {
	log := r.log.Function("existsWhere")

	var count int64
	if err := r.getDB(ctx).Table(table).Where(cond, arg).Count(&count).Error; err != nil {
		return false, log.Err("failed to check existence", err, "table", table)
	}

	return count > 0, nil
}
