package models

import "time"

const (
	// AssistanceTypeFixedAssets: هذا النوع يُنشئ أصلاً ثابتاً مقابلاً
	AssistanceTypeFixedAssets = "أصول ثابتة"

	AssistanceStatusReceived = "مستلمة"
)

// Assistance: مساعدة أو مساهمة أو إعانة خارجية
type Assistance struct {
	ID             uint   `gorm:"primaryKey"`
	Title          string `gorm:"size:200;not null"`
	Description    string `gorm:"type:text"`
	Source         string `gorm:"size:100;not null"` // مؤسسة حكومية، منظمة، إلخ
	AssistanceType string `gorm:"size:50;not null"`  // أصول ثابتة، مبالغ مالية، مشاريع
	Amount         float64 `gorm:"not null"`
	DateReceived   time.Time `gorm:"index;not null"`
	Status         string    `gorm:"size:50;not null;default:مستلمة"`
	Notes          string    `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
