package auth

import (
	"log"

	"irrigation-backend/internal/config"
	"irrigation-backend/internal/database"
	"irrigation-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin: زرع حساب المدير من متغيرات البيئة عند أول تشغيل.
// لا يفعل شيئاً إن وُجد أي مستخدم مسبقاً.
func SeedAdmin(cfg *config.Config) {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		log.Println("[WARN] لا يوجد مستخدم ولم يُعرَّف ADMIN_USERNAME/ADMIN_PASSWORD، لن يمكن تسجيل الدخول.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("تعذر تجزئة كلمة مرور المدير: %v", err)
	}

	admin := models.User{
		Name:         "مدير الجمعية",
		Username:     cfg.AdminUsername,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatalf("تعذر إنشاء حساب المدير: %v", err)
	}
	log.Printf("تم إنشاء حساب المدير المبدئي: %s", admin.Username)
}
