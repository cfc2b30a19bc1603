package models

import "time"

// ImageUpload is the metadata row for a stored image file. StorageKey is the
// file name under the configured upload directory.
type ImageUpload struct {
	ID         uint      `gorm:"primaryKey"`
	Title      string    `gorm:"size:255;not null"`
	StorageKey string    `gorm:"not null"`
	UploadedAt time.Time `gorm:"not null"`
}
