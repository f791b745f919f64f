package member

import (
	"testing"
	"time"

	"irrigation-backend/internal/ledger"
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

func createTestMember(t *testing.T, db *gorm.DB, number int, fee float64) *models.Member {
	t.Helper()
	m := &models.Member{
		MemberNumber:  number,
		Name:          "عضو تجريبي",
		Village:       "القرية",
		MembershipFee: fee,
		JoinDate:      time.Now(),
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("فشل إنشاء العضو: %v", err)
	}
	return m
}

func TestProvisionFiscalYearPayments(t *testing.T) {
	db := setupTestDB(t)
	m := createTestMember(t, db, 1, 12000)
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	if err := provisionFiscalYearPayments(db, m.ID, 1000, now); err != nil {
		t.Fatalf("فشل إنشاء دفعات السنة: %v", err)
	}

	var payments []models.Payment
	if err := db.Where("member_id = ?", m.ID).Find(&payments).Error; err != nil {
		t.Fatalf("فشل جلب الدفعات: %v", err)
	}
	if len(payments) != 12 {
		t.Fatalf("عدد الدفعات = %d، المتوقع 12", len(payments))
	}

	idx := ledger.IndexPayments(payments)
	for _, slot := range ledger.FiscalYearMonths(now) {
		p, ok := idx.Lookup(slot.Month, slot.Year)
		if !ok {
			t.Fatalf("لا توجد دفعة للشهر %d/%d", slot.Month, slot.Year)
		}
		if p.IsPaid {
			t.Errorf("دفعة %d/%d أنشئت مدفوعة", slot.Month, slot.Year)
		}
		if p.Amount != 1000 {
			t.Errorf("مبلغ دفعة %d/%d = %.2f، المتوقع 1000", slot.Month, slot.Year, p.Amount)
		}
		if p.PaymentDate != nil {
			t.Errorf("دفعة غير مدفوعة لها تاريخ دفع")
		}
	}
}

func TestTogglePaymentCreatesAsPaid(t *testing.T) {
	db := setupTestDB(t)
	m := createTestMember(t, db, 2, 12000)
	now := time.Now()

	p, err := togglePayment(db, m, 5, 2025, now)
	if err != nil {
		t.Fatalf("فشل التبديل: %v", err)
	}
	if !p.IsPaid {
		t.Error("الدفعة الجديدة يجب أن تكون مدفوعة")
	}
	if p.Amount != m.MembershipFee/12 {
		t.Errorf("المبلغ = %.2f، المتوقع %.2f", p.Amount, m.MembershipFee/12)
	}
	if p.PaymentDate == nil {
		t.Error("الدفعة المدفوعة بلا تاريخ دفع")
	}
}

func TestTogglePaymentFlipsExisting(t *testing.T) {
	db := setupTestDB(t)
	m := createTestMember(t, db, 3, 12000)
	now := time.Now()

	first, err := togglePayment(db, m, 7, 2025, now)
	if err != nil {
		t.Fatalf("فشل التبديل الأول: %v", err)
	}

	second, err := togglePayment(db, m, 7, 2025, now)
	if err != nil {
		t.Fatalf("فشل التبديل الثاني: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("التبديل أنشأ سجلاً جديداً بدل تعديل الموجود")
	}
	if second.IsPaid {
		t.Error("التبديل الثاني لم يُرجع الدفعة لغير مدفوعة")
	}
	if second.PaymentDate != nil {
		t.Error("إلغاء الدفع لم يمسح تاريخ الدفع")
	}

	third, err := togglePayment(db, m, 7, 2025, now)
	if err != nil {
		t.Fatalf("فشل التبديل الثالث: %v", err)
	}
	if !third.IsPaid || third.PaymentDate == nil {
		t.Error("التبديل الثالث لم يُعد الدفعة مدفوعة بتاريخ")
	}

	var count int64
	db.Model(&models.Payment{}).Where("member_id = ?", m.ID).Count(&count)
	if count != 1 {
		t.Errorf("عدد السجلات = %d بعد ثلاثة تبديلات، المتوقع 1", count)
	}
}

func TestSetPaymentUpsert(t *testing.T) {
	db := setupTestDB(t)
	m := createTestMember(t, db, 4, 12000)
	now := time.Now()

	if err := setPayment(db, m.ID, 1, 2025, true, 1000, now); err != nil {
		t.Fatalf("فشل الضبط الأول: %v", err)
	}
	if err := setPayment(db, m.ID, 1, 2025, false, 1000, now); err != nil {
		t.Fatalf("فشل الضبط الثاني: %v", err)
	}

	var payment models.Payment
	if err := db.Where("member_id = ? AND month = ? AND year = ?", m.ID, 1, 2025).First(&payment).Error; err != nil {
		t.Fatalf("فشل جلب الدفعة: %v", err)
	}
	if payment.IsPaid {
		t.Error("الضبط الثاني لم يُلغِ الدفع")
	}
	if payment.PaymentDate != nil {
		t.Error("إلغاء الدفع أبقى تاريخ الدفع")
	}
}

func TestDuplicatePaymentRejected(t *testing.T) {
	db := setupTestDB(t)
	m := createTestMember(t, db, 5, 12000)

	first := models.Payment{MemberID: m.ID, Month: 3, Year: 2025, Amount: 1000}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("فشل إنشاء الدفعة الأولى: %v", err)
	}

	dup := models.Payment{MemberID: m.ID, Month: 3, Year: 2025, Amount: 1000}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("القيد الفريد لم يرفض الدفعة المكررة")
	}
}

func TestDeleteMemberRemovesPayments(t *testing.T) {
	db := setupTestDB(t)
	m := createTestMember(t, db, 6, 12000)
	if err := provisionFiscalYearPayments(db, m.ID, 1000, time.Now()); err != nil {
		t.Fatalf("فشل إنشاء الدفعات: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("member_id = ?", m.ID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
	if err != nil {
		t.Fatalf("فشل الحذف: %v", err)
	}

	var count int64
	db.Model(&models.Payment{}).Where("member_id = ?", m.ID).Count(&count)
	if count != 0 {
		t.Errorf("بقيت %d دفعة بعد حذف العضو", count)
	}
}
