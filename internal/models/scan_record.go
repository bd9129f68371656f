package models

import "time"

// ScanRecord is one completed capture-and-classify cycle. A record is
// written exactly once when the model responds, and is only ever removed,
// never updated in place.
type ScanRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DisplayName string    `gorm:"size:255;not null" json:"displayName"`
	Details     string    `gorm:"type:text;not null" json:"details"`
	ImagePath   string    `gorm:"size:512" json:"imagePath,omitempty"` // empty for scans captured before images were stored
	CreatedAt   time.Time `json:"createdAt"`
}
