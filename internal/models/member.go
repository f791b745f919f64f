package models

import "time"

// Member: عضو الجمعية (مشترك)
type Member struct {
	ID            uint    `gorm:"primaryKey"`
	MemberNumber  int     `gorm:"uniqueIndex;not null"`
	Name          string  `gorm:"size:100;not null"`
	Village       string  `gorm:"size:50"`
	MembershipFee float64 `gorm:"not null;default:5000"` // رسوم العضوية السنوية
	JoinDate      time.Time
	Notes         string `gorm:"size:200"` // ملاحظات مثل "المعموق"
	IsNewMember   bool   `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Payments []Payment `gorm:"constraint:OnDelete:CASCADE"`
}

// MemberStatus: "جديد" أو "سابق"
func (m *Member) MemberStatus() string {
	if m.IsNewMember {
		return "جديد"
	}
	return "سابق"
}

// IsNewByJoinDate: عضو جديد إذا انضم خلال الأشهر الأخيرة
func (m *Member) IsNewByJoinDate(now time.Time, monthsThreshold float64) bool {
	if m.JoinDate.IsZero() {
		return false
	}
	monthsSinceJoin := now.Sub(m.JoinDate).Hours() / 24 / 30.44
	return monthsSinceJoin <= monthsThreshold
}
