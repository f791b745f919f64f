package models

import "time"

// Payment: دفعة شهرية لعضو. السجل فريد لكل (عضو، شهر، سنة).
type Payment struct {
	ID          uint    `gorm:"primaryKey"`
	MemberID    uint    `gorm:"not null;uniqueIndex:idx_payment_member_month_year"`
	Month       int     `gorm:"not null;uniqueIndex:idx_payment_member_month_year"` // 1-12
	Year        int     `gorm:"not null;uniqueIndex:idx_payment_member_month_year"`
	Amount      float64 `gorm:"not null;default:1000"`
	IsPaid      bool    `gorm:"not null;default:false"`
	PaymentDate *time.Time // يُضبط فقط عند الدفع
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
