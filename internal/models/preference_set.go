package models

import "time"

// PreferenceSet holds the user's profile as free-form text. It lives in a
// single-row table (ID=1) and is replaced wholesale on every save.
type PreferenceSet struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	UserName            string    `gorm:"size:120" json:"userName"`
	DietaryPreferences  string    `gorm:"type:text" json:"dietaryPreferences"`
	CosmeticPreferences string    `gorm:"type:text" json:"cosmeticPreferences"`
	UpdatedAt           time.Time `json:"-"`
}
