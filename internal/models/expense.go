package models

import "time"

// ExpenseCategoryOther: الفئة الافتراضية للمصروفات بدون فئة
const ExpenseCategoryOther = "أخرى"

// DefaultExpenseCategories: الفئات الافتراضية المعروضة دائماً
var DefaultExpenseCategories = []string{"صيانة", "مواد", "رواتب", "وقود", "كهرباء", ExpenseCategoryOther}

// Expense: مصروف
type Expense struct {
	ID          uint    `gorm:"primaryKey"`
	Description string  `gorm:"size:200;not null"`
	Amount      float64 `gorm:"not null"`
	Date        time.Time `gorm:"index;not null"`
	Category    string    `gorm:"size:50"` // فارغة = "أخرى"
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
