package financial

import (
	"time"

	"irrigation-backend/internal/config"
	"irrigation-backend/internal/database"
	"irrigation-backend/internal/ledger"
	"irrigation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RecentProject struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	ImagePath   string  `json:"image_path"`
	CreatedDate string  `json:"created_date"`
}

// GET /api/stats  (عام: الصفحة الرئيسية)
func HomeStatsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var memberCount int64
		if err := database.DB.Model(&models.Member{}).Count(&memberCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر حساب الإحصائيات")
		}

		var projectCount int64
		if err := database.DB.Model(&models.Project{}).Count(&projectCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر حساب الإحصائيات")
		}

		var totalPaid float64
		if err := database.DB.Model(&models.Payment{}).
			Where("is_paid = ?", true).
			Select("COALESCE(SUM(amount), 0)").Scan(&totalPaid).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر حساب الإحصائيات")
		}

		var totalExpenses float64
		if err := database.DB.Model(&models.Expense{}).
			Select("COALESCE(SUM(amount), 0)").Scan(&totalExpenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر حساب الإحصائيات")
		}

		var projects []models.Project
		if err := database.DB.Order("created_date desc").Limit(5).Find(&projects).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر حساب الإحصائيات")
		}
		recent := make([]RecentProject, 0, len(projects))
		for i := range projects {
			p := &projects[i]
			recent = append(recent, RecentProject{
				ID:          p.ID,
				Title:       p.Title,
				Description: p.Description,
				Cost:        p.Cost,
				ImagePath:   p.ImagePath,
				CreatedDate: p.CreatedDate.Format("2006-01-02"),
			})
		}

		return c.JSON(fiber.Map{
			"member_count":    memberCount,
			"project_count":   projectCount,
			"total_paid":      totalPaid,
			"total_expenses":  totalExpenses,
			"balance":         totalPaid - totalExpenses,
			"recent_projects": recent,
		})
	}
}

type LateMember struct {
	ID           uint     `json:"id"`
	MemberNumber int      `json:"member_number"`
	Name         string   `json:"name"`
	Village      string   `json:"village"`
	UnpaidMonths []string `json:"unpaid_months"`
	UnpaidCount  int      `json:"unpaid_count"`
	Remaining    float64  `json:"remaining_balance"`
}

// GET /api/admin/dashboard
func DashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var members []models.Member
		if err := database.DB.Preload("Payments").Order("member_number").Find(&members).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر عرض لوحة المتابعة")
		}

		var totalPaid, totalRemaining float64
		late := make([]LateMember, 0)
		for i := range members {
			m := &members[i]
			paid := ledger.TotalPaid(m.Payments)
			remaining := ledger.RemainingBalance(m.MembershipFee, m.Payments)
			totalPaid += paid
			totalRemaining += remaining

			unpaid := ledger.UnpaidMonths(m.Payments)
			if len(unpaid) == 0 {
				continue
			}
			late = append(late, LateMember{
				ID:           m.ID,
				MemberNumber: m.MemberNumber,
				Name:         m.Name,
				Village:      m.Village,
				UnpaidMonths: unpaid,
				UnpaidCount:  len(unpaid),
				Remaining:    remaining,
			})
		}

		var totalExpenses float64
		if err := database.DB.Model(&models.Expense{}).
			Select("COALESCE(SUM(amount), 0)").Scan(&totalExpenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر عرض لوحة المتابعة")
		}

		return c.JSON(fiber.Map{
			"member_count":    len(members),
			"late_members":    late,
			"late_count":      len(late),
			"total_paid":      totalPaid,
			"total_remaining": totalRemaining,
			"total_expenses":  totalExpenses,
			"balance":         totalPaid - totalExpenses,
		})
	}
}

type FiscalMonthSummary struct {
	Label     string  `json:"label"`
	Month     int     `json:"month"`
	Year      int     `json:"year"`
	Collected float64 `json:"collected"`
	PaidCount int     `json:"paid_count"`
}

type FiscalSummary struct {
	FiscalYearStart int                  `json:"fiscal_year_start"`
	FiscalYearEnd   int                  `json:"fiscal_year_end"`
	Months          []FiscalMonthSummary `json:"months"`
	TotalCollected  float64              `json:"total_collected"`
	TotalExpected   float64              `json:"total_expected"`
	MembershipFees  float64              `json:"membership_fees"`
}

// buildFiscalSummary: مجاميع التحصيل الشهري للسنة المالية.
// رسوم العضوية تدخل في إجمالي المحصَّل وفي المتوقع معاً.
func buildFiscalSummary(db *gorm.DB, cfg *config.Config, now time.Time) (*FiscalSummary, error) {
	slots := ledger.FiscalYearMonths(now)
	startYear, endYear := ledger.FiscalYearBounds(now)

	var memberCount int64
	if err := db.Model(&models.Member{}).Count(&memberCount).Error; err != nil {
		return nil, err
	}

	var totalFees float64
	if err := db.Model(&models.Member{}).
		Select("COALESCE(SUM(membership_fee), 0)").Scan(&totalFees).Error; err != nil {
		return nil, err
	}

	summary := &FiscalSummary{
		FiscalYearStart: startYear,
		FiscalYearEnd:   endYear,
		Months:          make([]FiscalMonthSummary, 0, len(slots)),
		MembershipFees:  totalFees,
	}

	for _, slot := range slots {
		var collected float64
		if err := db.Model(&models.Payment{}).
			Where("is_paid = ? AND month = ? AND year = ?", true, slot.Month, slot.Year).
			Select("COALESCE(SUM(amount), 0)").Scan(&collected).Error; err != nil {
			return nil, err
		}
		var paidCount int64
		if err := db.Model(&models.Payment{}).
			Where("is_paid = ? AND month = ? AND year = ?", true, slot.Month, slot.Year).
			Count(&paidCount).Error; err != nil {
			return nil, err
		}
		summary.TotalCollected += collected
		summary.Months = append(summary.Months, FiscalMonthSummary{
			Label:     slot.Label,
			Month:     slot.Month,
			Year:      slot.Year,
			Collected: collected,
			PaidCount: int(paidCount),
		})
	}

	summary.TotalCollected += totalFees
	summary.TotalExpected = float64(memberCount)*12*cfg.Payment.MonthlyAmount + totalFees

	return summary, nil
}

// GET /api/admin/financial/summary
// ملخص السنة المالية الحالية (نوفمبر - أكتوبر)
func FiscalSummaryHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := buildFiscalSummary(database.DB, cfg, time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر إنشاء الملخص")
		}
		return c.JSON(summary)
	}
}
