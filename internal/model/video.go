// Package model defines database models
package model

import "time"

// Video is the metadata of one stored video object
type Video struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename string `gorm:"not null" json:"filename"`
	// Opaque key of the object in the blob store. Unique in practice because
	// every key carries a random suffix, but not enforced
	StorageKey string  `gorm:"column:path;not null" json:"path"`
	Duration   float64 `gorm:"not null" json:"duration"` // Seconds
	Size       float64 `json:"size"`                     // Megabytes

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Video) TableName() string {
	return "video"
}
