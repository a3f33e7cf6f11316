package model

import "time"

// Category groups tasks by area (work, health, study, etc.).
// Names are unique per owner; the case-insensitive check lives in the service,
// the index closes the exact-name race.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;index:idx_user_category_name,unique"`
	Name      string `gorm:"index:idx_user_category_name,unique"`
	Color     string `gorm:"default:'#6b7280'"`
	Icon      string `gorm:"default:'folder'"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Tasks     []Task `gorm:"foreignKey:CategoryID"`
}
