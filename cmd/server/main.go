package main

import (
	"log"
	"strings"

	"irrigation-backend/internal/asset"
	"irrigation-backend/internal/assistance"
	"irrigation-backend/internal/audit"
	"irrigation-backend/internal/auth"
	"irrigation-backend/internal/config"
	"irrigation-backend/internal/database"
	"irrigation-backend/internal/expense"
	"irrigation-backend/internal/financial"
	"irrigation-backend/internal/member"
	"irrigation-backend/internal/project"
	"irrigation-backend/internal/spoilage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("ملف .env غير موجود، سيتم الاعتماد على متغيرات البيئة")
	}

	cfg := config.Load()
	database.Init(cfg)
	auth.SeedAdmin(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "حدث خطأ غير متوقع في الخادم",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// صفحات عامة بدون تسجيل دخول
	api.Get("/stats", financial.HomeStatsHandler())
	api.Get("/members", member.ListMembersHandler())
	api.Get("/projects", project.ListProjectsHandler())
	api.Get("/expenses", expense.ListExpensesHandler())

	api.Post("/auth/login", auth.LoginHandler(cfg))

	// مسارات تتطلب تسجيل دخول
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// مسارات المدير
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireAdmin())

	// لوحة المتابعة والملخص المالي
	adminRoutes.Get("/dashboard", financial.DashboardHandler())
	adminRoutes.Get("/financial/summary", financial.FiscalSummaryHandler(cfg))

	// إدارة الأعضاء
	adminRoutes.Post("/members", member.CreateMemberHandler(cfg))
	adminRoutes.Put("/members/:id", member.UpdateMemberHandler())
	adminRoutes.Delete("/members/:id", member.DeleteMemberHandler())

	// سجل الدفعات الشهرية
	adminRoutes.Get("/payments/board", member.PaymentBoardHandler())
	adminRoutes.Post("/payments/toggle/:member_id/:month/:year", member.TogglePaymentHandler())
	adminRoutes.Post("/payments", member.UpdatePaymentHandler(cfg))
	adminRoutes.Post("/payments/save-changes", member.SaveChangesHandler(cfg))

	// استيراد وتصدير Excel
	adminRoutes.Post("/members/import", member.ImportExcelHandler(cfg))
	adminRoutes.Get("/members/export", member.ExportExcelHandler())

	// المشاريع
	adminRoutes.Post("/projects", project.CreateProjectHandler())
	adminRoutes.Put("/projects/:id", project.UpdateProjectHandler())
	adminRoutes.Delete("/projects/:id", project.DeleteProjectHandler())

	// المصروفات
	adminRoutes.Post("/expenses", expense.CreateExpenseHandler())
	adminRoutes.Post("/expenses/bulk", expense.BulkCreateExpensesHandler())
	adminRoutes.Put("/expenses/:id", expense.UpdateExpenseHandler())
	adminRoutes.Delete("/expenses/:id", expense.DeleteExpenseHandler())
	adminRoutes.Get("/expenses/search", expense.SearchExpensesHandler())
	adminRoutes.Get("/expense-categories", expense.ListExpenseCategoriesHandler())
	adminRoutes.Get("/expenses/report", expense.ExpenseReportHandler())

	// المساعدات
	adminRoutes.Get("/assistances", assistance.ListAssistancesHandler())
	adminRoutes.Post("/assistances", assistance.CreateAssistanceHandler())
	adminRoutes.Put("/assistances/:id", assistance.UpdateAssistanceHandler())
	adminRoutes.Delete("/assistances/:id", assistance.DeleteAssistanceHandler())
	adminRoutes.Get("/assistances/report", assistance.AssistanceReportHandler())

	// الأصول الثابتة
	adminRoutes.Get("/assets", asset.ListAssetsHandler())
	adminRoutes.Get("/assets/totals", asset.AssetTotalsHandler())
	adminRoutes.Post("/assets", asset.CreateAssetHandler())
	adminRoutes.Put("/assets/:id", asset.UpdateAssetHandler())
	adminRoutes.Delete("/assets/:id", asset.DeleteAssetHandler())

	// سجلات التلف
	adminRoutes.Get("/spoilages", spoilage.ListSpoilagesHandler())
	adminRoutes.Post("/spoilages", spoilage.CreateSpoilageHandler())
	adminRoutes.Put("/spoilages/:id", spoilage.UpdateSpoilageHandler())
	adminRoutes.Delete("/spoilages/:id", spoilage.DeleteSpoilageHandler())
	adminRoutes.Get("/spoilages/report", spoilage.SpoilageReportHandler())

	// سجل التدقيق
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("الخادم يعمل على المنفذ:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
