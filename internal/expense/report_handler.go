package expense

import (
	"irrigation-backend/internal/database"
	"irrigation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type MonthlyExpenseTotal struct {
	Month string  `json:"month"` // "2025-03"
	Total float64 `json:"total"`
}

type CategoryExpenseTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type ExpenseReportResponse struct {
	Monthly    []MonthlyExpenseTotal  `json:"monthly"`
	ByCategory []CategoryExpenseTotal `json:"by_category"`
	Total      float64                `json:"total"`
}

// GET /api/admin/expenses/report
// تقرير المصروفات: مجاميع شهرية ومجاميع حسب الفئة.
func ExpenseReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var expenses []models.Expense
		if err := database.DB.Order("date asc").Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر حساب التقرير")
		}

		monthlyMap := make(map[string]float64)
		monthOrder := make([]string, 0)
		var total float64

		for _, e := range expenses {
			month := e.Date.Format("2006-01")
			if _, ok := monthlyMap[month]; !ok {
				monthOrder = append(monthOrder, month)
			}
			monthlyMap[month] += e.Amount
			total += e.Amount
		}

		resp := ExpenseReportResponse{
			Monthly:    make([]MonthlyExpenseTotal, 0, len(monthOrder)),
			ByCategory: make([]CategoryExpenseTotal, 0),
			Total:      total,
		}
		for _, month := range monthOrder {
			resp.Monthly = append(resp.Monthly, MonthlyExpenseTotal{Month: month, Total: monthlyMap[month]})
		}
		for category, catTotal := range GroupByCategory(expenses) {
			resp.ByCategory = append(resp.ByCategory, CategoryExpenseTotal{Category: category, Total: catTotal})
		}

		return c.JSON(resp)
	}
}
