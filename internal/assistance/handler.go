package assistance

import (
	"fmt"
	"strings"
	"time"

	"irrigation-backend/internal/audit"
	"irrigation-backend/internal/auth"
	"irrigation-backend/internal/database"
	"irrigation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateAssistanceRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Source         string  `json:"source"`
	AssistanceType string  `json:"assistance_type"`
	Amount         float64 `json:"amount"`
	DateReceived   string  `json:"date_received"`
	Status         string  `json:"status"`
	Notes          string  `json:"notes"`
}

type UpdateAssistanceRequest struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	Source         *string  `json:"source"`
	AssistanceType *string  `json:"assistance_type"`
	Amount         *float64 `json:"amount"`
	DateReceived   *string  `json:"date_received"`
	Status         *string  `json:"status"`
	Notes          *string  `json:"notes"`
}

type AssistanceResponse struct {
	ID             uint    `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Source         string  `json:"source"`
	AssistanceType string  `json:"assistance_type"`
	Amount         float64 `json:"amount"`
	DateReceived   string  `json:"date_received"`
	Status         string  `json:"status"`
	Notes          string  `json:"notes"`
}

func toAssistanceResponse(a *models.Assistance) AssistanceResponse {
	return AssistanceResponse{
		ID:             a.ID,
		Title:          a.Title,
		Description:    a.Description,
		Source:         a.Source,
		AssistanceType: a.AssistanceType,
		Amount:         a.Amount,
		DateReceived:   a.DateReceived.Format("2006-01-02"),
		Status:         a.Status,
		Notes:          a.Notes,
	}
}

func parseDateOrNow(s string) time.Time {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Now()
}

// مساعدة من نوع "أصول ثابتة" تُنشئ أصلاً مقابلاً في نفس المعاملة
func createLinkedAsset(tx *gorm.DB, a *models.Assistance) error {
	asset := models.Asset{
		Name:          a.Title,
		Description:   a.Description,
		Category:      models.AssetCategoryAssistance,
		PurchaseValue: a.Amount,
		CurrentValue:  a.Amount,
		PurchaseDate:  a.DateReceived,
		Status:        models.AssetStatusActive,
		Notes:         fmt.Sprintf("مساعدة من %s", a.Source),
	}
	return tx.Create(&asset).Error
}

// GET /api/admin/assistances
func ListAssistancesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var assistances []models.Assistance
		if err := database.DB.Order("date_received desc").Find(&assistances).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر عرض المساعدات")
		}

		resp := make([]AssistanceResponse, 0, len(assistances))
		var total float64
		for i := range assistances {
			resp = append(resp, toAssistanceResponse(&assistances[i]))
			total += assistances[i].Amount
		}
		return c.JSON(fiber.Map{
			"assistances":  resp,
			"total_amount": total,
		})
	}
}

// POST /api/admin/assistances
func CreateAssistanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAssistanceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		body.Title = strings.TrimSpace(body.Title)
		body.Source = strings.TrimSpace(body.Source)
		if body.Title == "" || body.Source == "" || body.AssistanceType == "" {
			return fiber.NewError(fiber.StatusBadRequest, "العنوان والمصدر والنوع مطلوبة")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "المبلغ يجب أن يكون أكبر من صفر")
		}
		if body.Status == "" {
			body.Status = models.AssistanceStatusReceived
		}

		assistance := models.Assistance{
			Title:          body.Title,
			Description:    body.Description,
			Source:         body.Source,
			AssistanceType: body.AssistanceType,
			Amount:         body.Amount,
			DateReceived:   parseDateOrNow(body.DateReceived),
			Status:         body.Status,
			Notes:          body.Notes,
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&assistance).Error; err != nil {
				return err
			}
			if assistance.AssistanceType == models.AssistanceTypeFixedAssets {
				return createLinkedAsset(tx, &assistance)
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ في إضافة المساعدة")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "assistance",
			EntityID:    assistance.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("تم تسجيل مساعدة: %s من %s بمبلغ %.2f", assistance.Title, assistance.Source, assistance.Amount),
			After:       toAssistanceResponse(&assistance),
		})

		return c.Status(fiber.StatusCreated).JSON(toAssistanceResponse(&assistance))
	}
}

// PUT /api/admin/assistances/:id
func UpdateAssistanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var assistance models.Assistance
		if err := database.DB.First(&assistance, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "المساعدة غير موجودة")
		}
		before := toAssistanceResponse(&assistance)

		var body UpdateAssistanceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		if body.Title != nil {
			title := strings.TrimSpace(*body.Title)
			if title == "" {
				return fiber.NewError(fiber.StatusBadRequest, "العنوان لا يمكن أن يكون فارغاً")
			}
			assistance.Title = title
		}
		if body.Description != nil {
			assistance.Description = *body.Description
		}
		if body.Source != nil {
			assistance.Source = strings.TrimSpace(*body.Source)
		}
		if body.AssistanceType != nil {
			assistance.AssistanceType = *body.AssistanceType
		}
		if body.Amount != nil {
			if *body.Amount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "المبلغ يجب أن يكون أكبر من صفر")
			}
			assistance.Amount = *body.Amount
		}
		if body.DateReceived != nil {
			assistance.DateReceived = parseDateOrNow(*body.DateReceived)
		}
		if body.Status != nil {
			assistance.Status = *body.Status
		}
		if body.Notes != nil {
			assistance.Notes = *body.Notes
		}

		if err := database.DB.Save(&assistance).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر تحديث المساعدة")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "assistance",
			EntityID:    assistance.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("تم تحديث المساعدة %d", assistance.ID),
			Before:      before,
			After:       toAssistanceResponse(&assistance),
		})

		return c.JSON(toAssistanceResponse(&assistance))
	}
}

// DELETE /api/admin/assistances/:id
func DeleteAssistanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var assistance models.Assistance
		if err := database.DB.First(&assistance, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "المساعدة غير موجودة")
		}

		if err := database.DB.Delete(&assistance).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ في حذف المساعدة")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "assistance",
			EntityID:    assistance.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("تم حذف المساعدة: %s", assistance.Title),
			Before:      toAssistanceResponse(&assistance),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
