package models

import "time"

const (
	SpoilageStatusDamaged  = "تالف"
	SpoilageStatusRepaired = "مُصلح"
)

// Spoilage: سجل تلف يخصم من قيمة أصل ثابت.
// AssetID علاقة صريحة بدل المطابقة بالاسم (المطابقة الغامضة بالاسم مرفوضة).
type Spoilage struct {
	ID             uint   `gorm:"primaryKey"`
	ItemName       string `gorm:"size:200;not null"`
	AssetID        *uint  `gorm:"index"`
	Asset          *Asset
	Description    string  `gorm:"type:text"`
	OriginalValue  float64 `gorm:"not null"`
	SpoilageValue  float64 `gorm:"not null"` // القيمة المخصومة من الأصل
	SpoilageDate   time.Time `gorm:"index;not null"`
	SpoilageReason string    `gorm:"size:200"`
	Category       string    `gorm:"size:50"`
	Status         string    `gorm:"size:50;not null;default:تالف"`
	Notes          string    `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
