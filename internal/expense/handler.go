package expense

import (
	"fmt"
	"log"
	"strings"
	"time"

	"irrigation-backend/internal/audit"
	"irrigation-backend/internal/auth"
	"irrigation-backend/internal/database"
	"irrigation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateExpenseRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"` // "2025-03-15"
}

type UpdateExpenseRequest struct {
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
	Date        *string  `json:"date"`
}

type BulkCreateExpensesRequest struct {
	Expenses []CreateExpenseRequest `json:"expenses"`
}

type ExpenseResponse struct {
	ID          uint    `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
}

type ExpenseListResponse struct {
	Expenses   []ExpenseResponse  `json:"expenses"`
	Total      float64            `json:"total"`
	ByCategory map[string]float64 `json:"by_category"`
}

func toExpenseResponse(e *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        e.Date.Format("2006-01-02"),
	}
}

// GroupByCategory: مجموع المصروفات لكل فئة، والفئة الفارغة تحت "أخرى".
func GroupByCategory(expenses []models.Expense) map[string]float64 {
	grouped := make(map[string]float64)
	for _, e := range expenses {
		category := e.Category
		if category == "" {
			category = models.ExpenseCategoryOther
		}
		grouped[category] += e.Amount
	}
	return grouped
}

func parseExpenseDate(dateStr string, fallback time.Time) (time.Time, error) {
	if dateStr == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", dateStr)
}

// GET /api/expenses  (عام)
func ListExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var expenses []models.Expense
		if err := database.DB.Order("date desc").Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر عرض المصروفات")
		}

		resp := ExpenseListResponse{
			Expenses:   make([]ExpenseResponse, 0, len(expenses)),
			ByCategory: GroupByCategory(expenses),
		}
		for i := range expenses {
			resp.Expenses = append(resp.Expenses, toExpenseResponse(&expenses[i]))
			resp.Total += expenses[i].Amount
		}

		return c.JSON(resp)
	}
}

// POST /api/admin/expenses
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		body.Description = strings.TrimSpace(body.Description)
		if body.Description == "" || body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "الوصف والمبلغ مطلوبان والمبلغ أكبر من صفر")
		}

		date, err := parseExpenseDate(body.Date, time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "صيغة التاريخ يجب أن تكون 'YYYY-MM-DD'")
		}

		category := strings.TrimSpace(body.Category)
		if category == "" {
			category = models.ExpenseCategoryOther
		}

		expense := models.Expense{
			Description: body.Description,
			Amount:      body.Amount,
			Category:    category,
			Date:        date,
		}
		if err := database.DB.Create(&expense).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ في إضافة المصروف")
		}

		userID, userName := auth.CurrentUser(c)
		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "expense",
			EntityID:    expense.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("تم إضافة مصروف: %s - %.2f", expense.Description, expense.Amount),
			After:       toExpenseResponse(&expense),
		}); logErr != nil {
			log.Println("تعذر كتابة سجل العمليات:", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toExpenseResponse(&expense))
	}
}

// PUT /api/admin/expenses/:id
func UpdateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var expense models.Expense
		if err := database.DB.First(&expense, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "المصروف غير موجود")
		}
		before := toExpenseResponse(&expense)

		var body UpdateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		if body.Description != nil {
			desc := strings.TrimSpace(*body.Description)
			if desc == "" {
				return fiber.NewError(fiber.StatusBadRequest, "الوصف لا يمكن أن يكون فارغاً")
			}
			expense.Description = desc
		}
		if body.Amount != nil {
			if *body.Amount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "المبلغ يجب أن يكون أكبر من صفر")
			}
			expense.Amount = *body.Amount
		}
		if body.Category != nil {
			category := strings.TrimSpace(*body.Category)
			if category == "" {
				category = models.ExpenseCategoryOther
			}
			expense.Category = category
		}
		if body.Date != nil {
			date, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "صيغة التاريخ يجب أن تكون 'YYYY-MM-DD'")
			}
			expense.Date = date
		}

		if err := database.DB.Save(&expense).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر تحديث المصروف")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "expense",
			EntityID:    expense.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("تم تحديث المصروف %d", expense.ID),
			Before:      before,
			After:       toExpenseResponse(&expense),
		})

		return c.JSON(toExpenseResponse(&expense))
	}
}

// DELETE /api/admin/expenses/:id
func DeleteExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var expense models.Expense
		if err := database.DB.First(&expense, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "المصروف غير موجود")
		}

		if err := database.DB.Delete(&expense).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ في حذف المصروف")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "expense",
			EntityID:    expense.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("تم حذف المصروف: %s", expense.Description),
			Before:      toExpenseResponse(&expense),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/expenses/bulk
// إضافة عدة مصروفات في معاملة واحدة.
func BulkCreateExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BulkCreateExpensesRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}
		if len(body.Expenses) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "لا توجد مصروفات للإضافة")
		}

		now := time.Now()
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			for _, item := range body.Expenses {
				desc := strings.TrimSpace(item.Description)
				if desc == "" || item.Amount <= 0 {
					return fmt.Errorf("الوصف والمبلغ مطلوبان لكل مصروف")
				}
				date, err := parseExpenseDate(item.Date, now)
				if err != nil {
					return fmt.Errorf("صيغة التاريخ يجب أن تكون 'YYYY-MM-DD'")
				}
				category := strings.TrimSpace(item.Category)
				if category == "" {
					category = models.ExpenseCategoryOther
				}
				expense := models.Expense{
					Description: desc,
					Amount:      item.Amount,
					Category:    category,
					Date:        date,
				}
				if err := tx.Create(&expense).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "حدث خطأ في إضافة المصروفات: "+err.Error())
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "expense",
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("تم إضافة %d مصروفاً دفعة واحدة", len(body.Expenses)),
		})

		return c.JSON(fiber.Map{"success": true, "message": "تم إضافة المصروفات بنجاح"})
	}
}

// GET /api/admin/expenses/search?q=...&category=...&date_from=...&date_to=...
func SearchExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		category := c.Query("category")
		dateFrom := c.Query("date_from")
		dateTo := c.Query("date_to")

		dbq := database.DB.Model(&models.Expense{})

		if query != "" {
			dbq = dbq.Where("description LIKE ?", "%"+query+"%")
		}
		if category != "" {
			dbq = dbq.Where("category = ?", category)
		}
		if dateFrom != "" {
			from, err := time.Parse("2006-01-02", dateFrom)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date_from غير صالح")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if dateTo != "" {
			to, err := time.Parse("2006-01-02", dateTo)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date_to غير صالح")
			}
			dbq = dbq.Where("date <= ?", to)
		}

		var expenses []models.Expense
		if err := dbq.Order("date desc").Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر البحث في المصروفات")
		}

		resp := make([]ExpenseResponse, 0, len(expenses))
		for i := range expenses {
			resp = append(resp, toExpenseResponse(&expenses[i]))
		}
		return c.JSON(fiber.Map{"expenses": resp})
	}
}

// GET /api/admin/expense-categories
// الفئات المستخدمة فعلياً مدموجة مع الفئات الافتراضية.
func ListExpenseCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var used []string
		if err := database.DB.Model(&models.Expense{}).
			Distinct("category").
			Where("category <> ''").
			Pluck("category", &used).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر عرض الفئات")
		}

		seen := make(map[string]bool, len(used))
		categories := make([]string, 0, len(used)+len(models.DefaultExpenseCategories))
		for _, cat := range used {
			if !seen[cat] {
				seen[cat] = true
				categories = append(categories, cat)
			}
		}
		for _, cat := range models.DefaultExpenseCategories {
			if !seen[cat] {
				seen[cat] = true
				categories = append(categories, cat)
			}
		}

		return c.JSON(categories)
	}
}
