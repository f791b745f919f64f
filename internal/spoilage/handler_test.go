package spoilage

import (
	"errors"
	"testing"
	"time"

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
	if err := db.AutoMigrate(&models.Asset{}, &models.Spoilage{}); err != nil {
		t.Fatalf("فشل الترحيل: %v", err)
	}
	return db
}

func createTestAsset(t *testing.T, db *gorm.DB, name string, value float64) *models.Asset {
	t.Helper()
	a := &models.Asset{
		Name:          name,
		PurchaseValue: value,
		CurrentValue:  value,
		PurchaseDate:  time.Now(),
		Status:        models.AssetStatusActive,
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("فشل إنشاء الأصل: %v", err)
	}
	return a
}

func TestResolveAssetByExplicitID(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAsset(t, db, "مضخة", 5000)

	got, err := resolveAsset(db, &a.ID, "اسم مختلف تماماً")
	if err != nil {
		t.Fatalf("فشل الحل: %v", err)
	}
	if got == nil || got.ID != a.ID {
		t.Error("asset_id الصريح لم يُحل للأصل الصحيح")
	}
}

func TestResolveAssetByUniqueName(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAsset(t, db, "لوح شمسي", 3000)

	got, err := resolveAsset(db, nil, "لوح شمسي")
	if err != nil {
		t.Fatalf("فشل الحل: %v", err)
	}
	if got == nil || got.ID != a.ID {
		t.Error("المطابقة بالاسم الفريد فشلت")
	}
}

func TestResolveAssetAmbiguousName(t *testing.T) {
	db := setupTestDB(t)
	createTestAsset(t, db, "بطارية", 2000)
	createTestAsset(t, db, "بطارية", 2500)

	_, err := resolveAsset(db, nil, "بطارية")
	if !errors.Is(err, errAmbiguousAsset) {
		t.Errorf("الاسم المكرر لم يُرفض، الخطأ: %v", err)
	}
}

func TestResolveAssetNoMatch(t *testing.T) {
	db := setupTestDB(t)

	got, err := resolveAsset(db, nil, "غير موجود")
	if err != nil {
		t.Fatalf("فشل الحل: %v", err)
	}
	if got != nil {
		t.Error("اسم بلا مطابقة أرجع أصلاً")
	}
}

func TestApplySpoilageDecrementsValue(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAsset(t, db, "مولد", 10000)

	if err := applySpoilage(db, a, 4000); err != nil {
		t.Fatalf("فشل التطبيق: %v", err)
	}
	if a.CurrentValue != 6000 {
		t.Errorf("القيمة الحالية = %.2f، المتوقع 6000", a.CurrentValue)
	}
	if a.Status != models.AssetStatusActive {
		t.Errorf("الحالة = %s، المتوقع أن يبقى فعالاً", a.Status)
	}
}

func TestApplySpoilageFloorsAtZeroAndDamages(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAsset(t, db, "خزان", 3000)

	if err := applySpoilage(db, a, 5000); err != nil {
		t.Fatalf("فشل التطبيق: %v", err)
	}
	if a.CurrentValue != 0 {
		t.Errorf("القيمة الحالية = %.2f، المتوقع 0", a.CurrentValue)
	}
	if a.Status != models.AssetStatusDamaged {
		t.Errorf("الحالة = %s، المتوقع تالف", a.Status)
	}
}

func TestRestoreSpoilageReactivates(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAsset(t, db, "أنبوب", 2000)

	if err := applySpoilage(db, a, 2000); err != nil {
		t.Fatalf("فشل التطبيق: %v", err)
	}
	if err := restoreSpoilage(db, a, 2000); err != nil {
		t.Fatalf("فشل الاسترجاع: %v", err)
	}
	if a.CurrentValue != 2000 {
		t.Errorf("القيمة الحالية = %.2f، المتوقع 2000", a.CurrentValue)
	}
	if a.Status != models.AssetStatusActive {
		t.Errorf("الحالة = %s، المتوقع فعال بعد الاسترجاع", a.Status)
	}
}

func TestRestoreSpoilageCappedAtPurchaseValue(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAsset(t, db, "محرك", 1000)

	if err := restoreSpoilage(db, a, 500); err != nil {
		t.Fatalf("فشل الاسترجاع: %v", err)
	}
	if a.CurrentValue != 1000 {
		t.Errorf("القيمة الحالية = %.2f، تجاوزت قيمة الشراء", a.CurrentValue)
	}
}

func TestBuildReportGrouping(t *testing.T) {
	spoilages := []models.Spoilage{
		{Category: "كهرباء", SpoilageReason: "عطل", OriginalValue: 2000, SpoilageValue: 100, SpoilageDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Category: "كهرباء", SpoilageReason: "حريق", OriginalValue: 3000, SpoilageValue: 200, SpoilageDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Category: "", SpoilageReason: "", OriginalValue: 2000, SpoilageValue: 50, SpoilageDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	report := BuildReport(spoilages)

	if report.TotalCount != 3 {
		t.Errorf("العدد الكلي = %d، المتوقع 3", report.TotalCount)
	}
	if report.TotalValue != 350 {
		t.Errorf("القيمة الكلية = %.2f، المتوقع 350", report.TotalValue)
	}
	if report.TotalOriginal != 7000 {
		t.Errorf("القيمة الأصلية الكلية = %.2f، المتوقع 7000", report.TotalOriginal)
	}
	if got := report.ByCategory["كهرباء"]; got.Count != 2 || got.Value != 300 {
		t.Errorf("فئة كهرباء = %+v", got)
	}
	if got := report.ByCategory["غير مصنف"]; got.Count != 1 || got.Value != 50 {
		t.Errorf("الفئة الفارغة لم تُجمع تحت غير مصنف: %+v", got)
	}
	if got := report.ByYear["2025"]; got.Count != 2 || got.Value != 250 {
		t.Errorf("سنة 2025 = %+v", got)
	}
	if report.SpoilagePercentage != 5 {
		t.Errorf("نسبة التلف = %.2f، المتوقع 5", report.SpoilagePercentage)
	}
}

// النسبة تقارن قيمة التلف بالقيمة الأصلية للأصناف التالفة نفسها لا بقيمة الأصول
func TestBuildReportPercentageFromOriginalValues(t *testing.T) {
	spoilages := []models.Spoilage{
		{OriginalValue: 800, SpoilageValue: 100, SpoilageDate: time.Now()},
		{OriginalValue: 200, SpoilageValue: 50, SpoilageDate: time.Now()},
	}
	report := BuildReport(spoilages)
	if report.SpoilagePercentage != 15 {
		t.Errorf("نسبة التلف = %.2f، المتوقع 15", report.SpoilagePercentage)
	}
}

func TestBuildReportZeroOriginalValue(t *testing.T) {
	report := BuildReport([]models.Spoilage{{SpoilageValue: 100, SpoilageDate: time.Now()}})
	if report.SpoilagePercentage != 0 {
		t.Errorf("نسبة التلف بقيمة أصلية صفرية = %.2f، المتوقع 0", report.SpoilagePercentage)
	}
}

// تعديل سجل إلى "مُصلح" يُرجع الخصم القديم ثم يطبق الجديد ولا يلغيه
func TestReconcileEditRepairedKeepsDeduction(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAsset(t, db, "مضخة رئيسية", 10000)

	if err := applySpoilage(db, a, 3000); err != nil {
		t.Fatalf("فشل التطبيق: %v", err)
	}
	if a.CurrentValue != 7000 {
		t.Fatalf("القيمة بعد التلف = %.2f، المتوقع 7000", a.CurrentValue)
	}

	edited := models.Spoilage{
		ItemName:      "مضخة رئيسية",
		AssetID:       &a.ID,
		SpoilageValue: 2000,
		Status:        models.SpoilageStatusRepaired,
		SpoilageDate:  time.Now(),
	}
	if err := reconcileEdit(db, &a.ID, 3000, &edited); err != nil {
		t.Fatalf("فشلت المطابقة: %v", err)
	}

	var got models.Asset
	if err := db.First(&got, "id = ?", a.ID).Error; err != nil {
		t.Fatalf("فشل جلب الأصل: %v", err)
	}
	if got.CurrentValue != 8000 {
		t.Errorf("القيمة الحالية = %.2f، المتوقع 8000 (إرجاع 3000 ثم خصم 2000)", got.CurrentValue)
	}
}

// "مُصلح" يعيد الأصل فعالاً حتى لو استهلك الخصم قيمته كاملة
func TestReconcileEditRepairedReactivates(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAsset(t, db, "لوح", 1000)

	edited := models.Spoilage{
		ItemName:      "لوح",
		AssetID:       &a.ID,
		SpoilageValue: 1000,
		Status:        models.SpoilageStatusRepaired,
		SpoilageDate:  time.Now(),
	}
	if err := reconcileEdit(db, nil, 0, &edited); err != nil {
		t.Fatalf("فشلت المطابقة: %v", err)
	}

	var got models.Asset
	db.First(&got, "id = ?", a.ID)
	if got.Status != models.AssetStatusActive {
		t.Errorf("حالة الأصل = %s، المتوقع فعال بعد الإصلاح", got.Status)
	}
}

// حذف سجل "مُصلح" يُرجع خصمه أيضاً، فلا تبقى قيمة الأصل منقوصة
func TestReconcileDeleteRestoresRepairedRecord(t *testing.T) {
	db := setupTestDB(t)
	a := createTestAsset(t, db, "خزان مياه", 10000)

	if err := applySpoilage(db, a, 2000); err != nil {
		t.Fatalf("فشل التطبيق: %v", err)
	}

	record := models.Spoilage{
		ItemName:      "خزان مياه",
		AssetID:       &a.ID,
		SpoilageValue: 2000,
		Status:        models.SpoilageStatusRepaired,
		SpoilageDate:  time.Now(),
	}
	if err := reconcileDelete(db, &record); err != nil {
		t.Fatalf("فشلت المطابقة: %v", err)
	}

	var got models.Asset
	db.First(&got, "id = ?", a.ID)
	if got.CurrentValue != 10000 {
		t.Errorf("القيمة الحالية = %.2f، المتوقع 10000 بعد إرجاع الخصم", got.CurrentValue)
	}
}
