package models

import "time"

const (
	AssetStatusActive  = "فعال"
	AssetStatusDamaged = "تالف"

	AssetCategoryAssistance = "مساعدات"
)

// Asset: أصل ثابت للجمعية
type Asset struct {
	ID               uint   `gorm:"primaryKey"`
	Name             string `gorm:"size:200;not null;index"`
	Description      string `gorm:"type:text"`
	Category         string `gorm:"size:50"` // كراسي، ألواح شمسية، بطاريات، إلخ
	PurchaseValue    float64 `gorm:"not null"`
	CurrentValue     float64 `gorm:"not null"` // تتأثر بسجلات التوالف
	PurchaseDate     time.Time
	DepreciationRate float64 `gorm:"not null;default:0"` // نسبة الاستهلاك السنوية %
	Status           string  `gorm:"size:50;not null;default:فعال"`
	Location         string  `gorm:"size:100"`
	Notes            string  `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CalculateDepreciation: الاستهلاك التراكمي بخط مستقيم منذ الشراء،
// بحد أقصى قيمة الشراء.
func (a *Asset) CalculateDepreciation(now time.Time) float64 {
	if a.DepreciationRate <= 0 {
		return 0
	}
	years := now.Sub(a.PurchaseDate).Hours() / 24 / 365.25
	depreciation := a.PurchaseValue * (a.DepreciationRate / 100) * years
	if depreciation > a.PurchaseValue {
		return a.PurchaseValue
	}
	return depreciation
}

// DepreciatedValue: قيمة الشراء بعد خصم الاستهلاك، لا تقل عن صفر.
func (a *Asset) DepreciatedValue(now time.Time) float64 {
	v := a.PurchaseValue - a.CalculateDepreciation(now)
	if v < 0 {
		return 0
	}
	return v
}
