package database

import (
	"log"

	"irrigation-backend/internal/config"
	"irrigation-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("تعذر الاتصال بقاعدة البيانات: %v", err)
	}

	// ترحيل يدوي قبل AutoMigrate: قاعدة بيانات قديمة قد تحتوي دفعات مكررة
	// لنفس (العضو، الشهر، السنة)، نحذف المكرر غير المدفوع قبل فرض القيد الفريد.
	if DB.Migrator().HasTable(&models.Payment{}) && !DB.Migrator().HasIndex(&models.Payment{}, "idx_payment_member_month_year") {
		log.Println("إزالة الدفعات المكررة قبل إضافة القيد الفريد...")
		if err := DB.Exec(`
			DELETE FROM payments WHERE id NOT IN (
				SELECT MIN(id) FROM payments GROUP BY member_id, month, year
			) AND is_paid = false
		`).Error; err != nil {
			log.Printf("تعذر حذف الدفعات المكررة (قد لا توجد): %v", err)
		}
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Member{},
		&models.Payment{},
		&models.Project{},
		&models.Expense{},
		&models.Assistance{},
		&models.Spoilage{},
		&models.Asset{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("خطأ في AutoMigrate: %v", err)
	}

	// ترحيل يدوي بعد AutoMigrate: سجلات توالف قديمة بدون asset_id
	// تُربط بالاسم إن كانت المطابقة غير غامضة.
	if err := DB.Exec(`
		UPDATE spoilages SET asset_id = (
			SELECT MIN(a.id) FROM assets a WHERE a.name = spoilages.item_name
		) WHERE asset_id IS NULL AND (
			SELECT COUNT(*) FROM assets a WHERE a.name = spoilages.item_name
		) = 1
	`).Error; err != nil {
		log.Printf("تعذر ربط سجلات التوالف القديمة بالأصول: %v", err)
	}

	log.Println("نجح الاتصال بقاعدة البيانات. اكتمل الترحيل.")
}
