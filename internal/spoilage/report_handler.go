package spoilage

import (
	"strconv"

	"irrigation-backend/internal/database"
	"irrigation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type GroupStat struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

type SpoilageReport struct {
	ByCategory         map[string]GroupStat `json:"by_category"`
	ByReason           map[string]GroupStat `json:"by_reason"`
	ByYear             map[string]GroupStat `json:"by_year"`
	TotalCount         int                  `json:"total_count"`
	TotalValue         float64              `json:"total_value"`
	TotalOriginal      float64              `json:"total_original"`
	SpoilagePercentage float64              `json:"spoilage_percentage"`
}

// BuildReport: تجميع سجلات التلف حسب الفئة والسبب والسنة،
// مع نسبة قيمة التلف إلى إجمالي القيمة الأصلية للأصناف التالفة.
func BuildReport(spoilages []models.Spoilage) SpoilageReport {
	report := SpoilageReport{
		ByCategory: make(map[string]GroupStat),
		ByReason:   make(map[string]GroupStat),
		ByYear:     make(map[string]GroupStat),
	}
	for i := range spoilages {
		s := &spoilages[i]

		category := s.Category
		if category == "" {
			category = "غير مصنف"
		}
		cs := report.ByCategory[category]
		cs.Count++
		cs.Value += s.SpoilageValue
		report.ByCategory[category] = cs

		reason := s.SpoilageReason
		if reason == "" {
			reason = "غير محدد"
		}
		rs := report.ByReason[reason]
		rs.Count++
		rs.Value += s.SpoilageValue
		report.ByReason[reason] = rs

		year := strconv.Itoa(s.SpoilageDate.Year())
		ys := report.ByYear[year]
		ys.Count++
		ys.Value += s.SpoilageValue
		report.ByYear[year] = ys

		report.TotalCount++
		report.TotalValue += s.SpoilageValue
		report.TotalOriginal += s.OriginalValue
	}
	if report.TotalOriginal > 0 {
		report.SpoilagePercentage = report.TotalValue / report.TotalOriginal * 100
	}
	return report
}

// GET /api/admin/spoilages/report
func SpoilageReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var spoilages []models.Spoilage
		if err := database.DB.Find(&spoilages).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر إنشاء التقرير")
		}
		return c.JSON(BuildReport(spoilages))
	}
}
