package model

import "time"

// Track represents one catalog item in the music library.
type Track struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	Title      string    `json:"title" gorm:"size:255;not null"`
	Artist     string    `json:"artist" gorm:"size:255;not null"`
	Album      string    `json:"album" gorm:"size:255"`
	Genres     []string  `json:"genres" gorm:"serializer:json;type:json"`
	Slug       string    `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	CoverImage string    `json:"coverImage" gorm:"size:1024"`
	AudioFile  string    `json:"audioFile" gorm:"size:512"` // Object name in storage, empty means no playable audio
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TrackUpdate carries a partial update. A nil pointer means "leave the field
// untouched", matching the field-presence semantics of the update endpoint.
type TrackUpdate struct {
	Title      *string   `json:"title"`
	Artist     *string   `json:"artist"`
	Album      *string   `json:"album"`
	Genres     *[]string `json:"genres"`
	CoverImage *string   `json:"coverImage"`
	AudioFile  *string   `json:"audioFile"`
}
