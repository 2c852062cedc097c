// Package models defines the cache store's row shapes: releases, tracks,
// and the many-to-many join tables for artists, genres, and labels.
package models

import "time"

// BaseModel carries the fields every cache row shares: a text-rendered
// UUIDv7 primary key (time-ordered, minted by internal/ident) and GORM's
// auto-managed timestamps. There is no soft-delete column — rows are
// hard-deleted by the sweep and the watcher, matching the cache's role
// as a disposable mirror of the source tree rather than a system of
// record.
type BaseModel struct {
	ID        string    `gorm:"column:id;type:text;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
