package assistance

import (
	"strconv"

	"irrigation-backend/internal/database"
	"irrigation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type GroupStat struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

type AssistanceReport struct {
	ByType      map[string]GroupStat `json:"by_type"`
	BySource    map[string]GroupStat `json:"by_source"`
	ByYear      map[string]GroupStat `json:"by_year"`
	TotalCount  int                  `json:"total_count"`
	TotalAmount float64              `json:"total_amount"`
}

// BuildReport: تجميع المساعدات حسب النوع والمصدر والسنة
func BuildReport(assistances []models.Assistance) AssistanceReport {
	report := AssistanceReport{
		ByType:   make(map[string]GroupStat),
		BySource: make(map[string]GroupStat),
		ByYear:   make(map[string]GroupStat),
	}
	for i := range assistances {
		a := &assistances[i]

		t := report.ByType[a.AssistanceType]
		t.Count++
		t.Amount += a.Amount
		report.ByType[a.AssistanceType] = t

		s := report.BySource[a.Source]
		s.Count++
		s.Amount += a.Amount
		report.BySource[a.Source] = s

		year := strconv.Itoa(a.DateReceived.Year())
		y := report.ByYear[year]
		y.Count++
		y.Amount += a.Amount
		report.ByYear[year] = y

		report.TotalCount++
		report.TotalAmount += a.Amount
	}
	return report
}

// GET /api/admin/assistances/report
func AssistanceReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var assistances []models.Assistance
		if err := database.DB.Find(&assistances).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر إنشاء التقرير")
		}
		return c.JSON(BuildReport(assistances))
	}
}
