package models

import "time"

// Project: مشروع للجمعية
type Project struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
	Cost        float64 `gorm:"not null"`
	ImagePath   string  `gorm:"size:200"`
	CreatedDate time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
