package config

import (
	"log"
	"os"
	"strconv"
)

// PaymentDefaults: القيم الافتراضية المالية في مكان واحد بدل تكرارها
// في كل موضع استدعاء.
type PaymentDefaults struct {
	MonthlyAmount float64 // مبلغ الدفعة الشهرية الافتراضي
	MembershipFee float64 // رسوم العضوية السنوية الافتراضية
}

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	// بيانات المدير المبدئي، تُزرع عند أول تشغيل إذا لم يوجد مستخدم
	AdminUsername string
	AdminPassword string

	Payment PaymentDefaults
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=irrigation port=5432 sslmode=disable"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		Payment: PaymentDefaults{
			MonthlyAmount: getEnvFloat("DEFAULT_MONTHLY_AMOUNT", 1000),
			MembershipFee: getEnvFloat("DEFAULT_MEMBERSHIP_FEE", 5000),
		},
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] متغير البيئة JWT_SECRET غير معرّف! إلزامي للتشغيل.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] يجب أن يكون JWT_SECRET 32 حرفاً على الأقل.")
	}
	if cfg.AdminPassword != "" && len(cfg.AdminPassword) < 8 {
		log.Println("[WARN] كلمة مرور المدير أقصر من 8 أحرف، يُنصح بتغييرها.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("[WARN] قيمة %s غير رقمية، استخدام الافتراضي %.0f", key, def)
	}
	return def
}
