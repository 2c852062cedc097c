package models

// Track is one supported audio file belonging to exactly one Release.
type Track struct {
	BaseModel
	SourcePath      string `gorm:"column:source_path;type:text;not null;uniqueIndex:idx_tracks_source_path" json:"sourcePath"`
	VirtualFilename string `gorm:"column:virtual_filename;type:text;not null" json:"virtualFilename"`
	Title           string `gorm:"column:title;type:text;not null" json:"title"`
	ReleaseID       string `gorm:"column:release_id;type:text;not null;index:idx_tracks_release_id" json:"releaseId"`
	TrackNumber     string `gorm:"column:track_number;type:text;not null" json:"trackNumber"`
	DiscNumber      string `gorm:"column:disc_number;type:text;not null" json:"discNumber"`
	DurationSeconds int    `gorm:"column:duration_seconds;not null" json:"durationSeconds"`

	Artists []TrackArtist `gorm:"foreignKey:TrackID;constraint:OnDelete:CASCADE" json:"artists,omitempty"`
}

func (Track) TableName() string { return "tracks" }

// TrackArtist is one (track, artist) credit, mirroring ReleaseArtist.
type TrackArtist struct {
	TrackID   string     `gorm:"column:track_id;type:text;primaryKey" json:"trackId"`
	Artist    string     `gorm:"column:artist;type:text;primaryKey" json:"artist"`
	Sanitized string     `gorm:"column:sanitized;type:text;not null;index:idx_tracks_artists_sanitized" json:"sanitized"`
	Role      ArtistRole `gorm:"column:role;type:text;not null" json:"role"`
}

func (TrackArtist) TableName() string { return "tracks_artists" }
