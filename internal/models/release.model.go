package models

// ReleaseType enumerates the values the synchronizer normalizes a raw
// tag's release type into. Anything it doesn't recognize becomes
// ReleaseTypeUnknown.
type ReleaseType string

const (
	ReleaseTypeAlbum       ReleaseType = "album"
	ReleaseTypeSingle      ReleaseType = "single"
	ReleaseTypeEP          ReleaseType = "ep"
	ReleaseTypeCompilation ReleaseType = "compilation"
	ReleaseTypeSoundtrack  ReleaseType = "soundtrack"
	ReleaseTypeLive        ReleaseType = "live"
	ReleaseTypeRemix       ReleaseType = "remix"
	ReleaseTypeDJMix       ReleaseType = "djmix"
	ReleaseTypeMixtape     ReleaseType = "mixtape"
	ReleaseTypeOther       ReleaseType = "other"
	ReleaseTypeUnknown     ReleaseType = "unknown"
)

// SupportedReleaseTypes is the enumerated set release_type is folded
// into; any lowercased raw value outside this set becomes "unknown".
var SupportedReleaseTypes = map[ReleaseType]struct{}{
	ReleaseTypeAlbum: {}, ReleaseTypeSingle: {}, ReleaseTypeEP: {},
	ReleaseTypeCompilation: {}, ReleaseTypeSoundtrack: {}, ReleaseTypeLive: {},
	ReleaseTypeRemix: {}, ReleaseTypeDJMix: {}, ReleaseTypeMixtape: {},
	ReleaseTypeOther: {}, ReleaseTypeUnknown: {},
}

// Release is one album-equivalent directory under the source root.
type Release struct {
	BaseModel
	SourcePath     string      `gorm:"column:source_path;type:text;not null;uniqueIndex:idx_releases_source_path" json:"sourcePath"`
	VirtualDirname string      `gorm:"column:virtual_dirname;type:text;not null" json:"virtualDirname"`
	Title          string      `gorm:"column:title;type:text;not null" json:"title"`
	ReleaseType    ReleaseType `gorm:"column:release_type;type:text;not null;default:unknown" json:"releaseType"`
	ReleaseYear    *int        `gorm:"column:release_year;type:int" json:"releaseYear,omitempty"`
	New            bool        `gorm:"column:new;not null;default:true" json:"new"`

	Tracks  []Track         `gorm:"foreignKey:ReleaseID;constraint:OnDelete:CASCADE" json:"tracks,omitempty"`
	Genres  []ReleaseGenre  `gorm:"foreignKey:ReleaseID;constraint:OnDelete:CASCADE" json:"genres,omitempty"`
	Labels  []ReleaseLabel  `gorm:"foreignKey:ReleaseID;constraint:OnDelete:CASCADE" json:"labels,omitempty"`
	Artists []ReleaseArtist `gorm:"foreignKey:ReleaseID;constraint:OnDelete:CASCADE" json:"artists,omitempty"`
}

func (Release) TableName() string { return "releases" }

// ReleaseGenre is one (release, genre) pair. Sanitized is a lowercased,
// punctuation-folded form of Genre used for case/punctuation-insensitive
// lookup from the virtual filesystem.
type ReleaseGenre struct {
	ReleaseID string `gorm:"column:release_id;type:text;primaryKey" json:"releaseId"`
	Genre     string `gorm:"column:genre;type:text;primaryKey" json:"genre"`
	Sanitized string `gorm:"column:sanitized;type:text;not null;index:idx_releases_genres_sanitized" json:"sanitized"`
}

func (ReleaseGenre) TableName() string { return "releases_genres" }

// ReleaseLabel is one (release, label) pair, carrying the same sanitized
// lookup column as ReleaseGenre.
type ReleaseLabel struct {
	ReleaseID string `gorm:"column:release_id;type:text;primaryKey" json:"releaseId"`
	Label     string `gorm:"column:label;type:text;primaryKey" json:"label"`
	Sanitized string `gorm:"column:sanitized;type:text;not null;index:idx_releases_labels_sanitized" json:"sanitized"`
}

func (ReleaseLabel) TableName() string { return "releases_labels" }

// ArtistRole enumerates the roles an artist relation can carry on a
// release or track. Conductor has no role of its own: conductor credits
// are merged into "main" by artiststr.ParseArtistString before a
// relation row is ever built.
type ArtistRole string

const (
	ArtistRoleMain     ArtistRole = "main"
	ArtistRoleGuest    ArtistRole = "guest"
	ArtistRoleRemixer  ArtistRole = "remixer"
	ArtistRoleProducer ArtistRole = "producer"
	ArtistRoleComposer ArtistRole = "composer"
	ArtistRoleDJMixer  ArtistRole = "djmixer"
)

// ReleaseArtist is one (release, artist) credit. The primary key is
// (release_id, artist) rather than (release_id, artist, role): a second
// sync pass that changes an artist's role updates the row in place
// instead of creating a duplicate.
type ReleaseArtist struct {
	ReleaseID string     `gorm:"column:release_id;type:text;primaryKey" json:"releaseId"`
	Artist    string     `gorm:"column:artist;type:text;primaryKey" json:"artist"`
	Sanitized string     `gorm:"column:sanitized;type:text;not null;index:idx_releases_artists_sanitized" json:"sanitized"`
	Role      ArtistRole `gorm:"column:role;type:text;not null" json:"role"`
}

func (ReleaseArtist) TableName() string { return "releases_artists" }
