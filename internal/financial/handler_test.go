package financial

import (
	"testing"
	"time"

	"irrigation-backend/internal/config"
	"irrigation-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("فشل فتح قاعدة الاختبار: %v", err)
	}
	if err := db.AutoMigrate(&models.Member{}, &models.Payment{}); err != nil {
		t.Fatalf("فشل الترحيل: %v", err)
	}
	return db
}

func TestBuildFiscalSummary(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.Config{
		Payment: config.PaymentDefaults{MonthlyAmount: 1000, MembershipFee: 5000},
	}
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	m1 := models.Member{MemberNumber: 1, Name: "عضو أول", MembershipFee: 5000, JoinDate: now}
	m2 := models.Member{MemberNumber: 2, Name: "عضو ثانٍ", MembershipFee: 5000, JoinDate: now}
	if err := db.Create(&m1).Error; err != nil {
		t.Fatalf("فشل إنشاء العضو: %v", err)
	}
	if err := db.Create(&m2).Error; err != nil {
		t.Fatalf("فشل إنشاء العضو: %v", err)
	}

	paidDate := now
	payments := []models.Payment{
		// نوفمبر 2024 داخل السنة المالية
		{MemberID: m1.ID, Month: 11, Year: 2024, Amount: 1000, IsPaid: true, PaymentDate: &paidDate},
		{MemberID: m2.ID, Month: 11, Year: 2024, Amount: 1000, IsPaid: true, PaymentDate: &paidDate},
		// يناير 2025 داخل السنة المالية
		{MemberID: m1.ID, Month: 1, Year: 2025, Amount: 1500, IsPaid: true, PaymentDate: &paidDate},
		// غير مدفوعة: لا تدخل المجموع
		{MemberID: m2.ID, Month: 1, Year: 2025, Amount: 1000, IsPaid: false},
		// نوفمبر 2023 خارج السنة المالية الحالية
		{MemberID: m1.ID, Month: 11, Year: 2023, Amount: 9999, IsPaid: true, PaymentDate: &paidDate},
	}
	for i := range payments {
		if err := db.Create(&payments[i]).Error; err != nil {
			t.Fatalf("فشل إنشاء الدفعة: %v", err)
		}
	}

	summary, err := buildFiscalSummary(db, cfg, now)
	if err != nil {
		t.Fatalf("فشل بناء الملخص: %v", err)
	}

	if summary.FiscalYearStart != 2024 || summary.FiscalYearEnd != 2025 {
		t.Errorf("حدود السنة المالية = %d/%d، المتوقع 2024/2025", summary.FiscalYearStart, summary.FiscalYearEnd)
	}
	if len(summary.Months) != 12 {
		t.Fatalf("عدد الأشهر = %d، المتوقع 12", len(summary.Months))
	}

	nov := summary.Months[0]
	if nov.Month != 11 || nov.Year != 2024 {
		t.Fatalf("الخانة الأولى = %d/%d، المتوقع 11/2024", nov.Month, nov.Year)
	}
	if nov.Collected != 2000 || nov.PaidCount != 2 {
		t.Errorf("نوفمبر: محصَّل=%.2f عدد=%d، المتوقع 2000 و2", nov.Collected, nov.PaidCount)
	}

	jan := summary.Months[2]
	if jan.Month != 1 || jan.Year != 2025 {
		t.Fatalf("الخانة الثالثة = %d/%d، المتوقع 1/2025", jan.Month, jan.Year)
	}
	if jan.Collected != 1500 || jan.PaidCount != 1 {
		t.Errorf("يناير: محصَّل=%.2f عدد=%d، المتوقع 1500 و1", jan.Collected, jan.PaidCount)
	}

	if summary.MembershipFees != 10000 {
		t.Errorf("رسوم العضوية = %.2f، المتوقع 10000", summary.MembershipFees)
	}

	// الإجمالي المحصَّل = مجاميع الأشهر (3500) + رسوم العضوية (10000)
	if summary.TotalCollected != 13500 {
		t.Errorf("الإجمالي المحصَّل = %.2f، المتوقع 13500", summary.TotalCollected)
	}

	// المتوقع = عضوان × 12 شهراً × الافتراضي + الرسوم
	if summary.TotalExpected != 2*12*1000+10000 {
		t.Errorf("الإجمالي المتوقع = %.2f، المتوقع %.2f", summary.TotalExpected, float64(2*12*1000+10000))
	}
}

func TestBuildFiscalSummaryEmpty(t *testing.T) {
	db := setupTestDB(t)
	cfg := &config.Config{
		Payment: config.PaymentDefaults{MonthlyAmount: 1000, MembershipFee: 5000},
	}

	summary, err := buildFiscalSummary(db, cfg, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("فشل بناء الملخص: %v", err)
	}
	if summary.TotalCollected != 0 || summary.TotalExpected != 0 || summary.MembershipFees != 0 {
		t.Errorf("ملخص فارغ غير صفري: %+v", summary)
	}
	if len(summary.Months) != 12 {
		t.Errorf("عدد الأشهر = %d، المتوقع 12 حتى بلا بيانات", len(summary.Months))
	}
}
