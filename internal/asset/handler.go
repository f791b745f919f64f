package asset

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

type CreateAssetRequest struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Category         string  `json:"category"`
	PurchaseValue    float64 `json:"purchase_value"`
	PurchaseDate     string  `json:"purchase_date"`
	DepreciationRate float64 `json:"depreciation_rate"`
	Status           string  `json:"status"`
	Location         string  `json:"location"`
	Notes            string  `json:"notes"`
}

type UpdateAssetRequest struct {
	Name             *string  `json:"name"`
	Description      *string  `json:"description"`
	Category         *string  `json:"category"`
	PurchaseValue    *float64 `json:"purchase_value"`
	CurrentValue     *float64 `json:"current_value"`
	PurchaseDate     *string  `json:"purchase_date"`
	DepreciationRate *float64 `json:"depreciation_rate"`
	Status           *string  `json:"status"`
	Location         *string  `json:"location"`
	Notes            *string  `json:"notes"`
}

type AssetResponse struct {
	ID               uint    `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Category         string  `json:"category"`
	PurchaseValue    float64 `json:"purchase_value"`
	CurrentValue     float64 `json:"current_value"`
	PurchaseDate     string  `json:"purchase_date"`
	DepreciationRate float64 `json:"depreciation_rate"`
	Depreciation     float64 `json:"depreciation"`
	DepreciatedValue float64 `json:"depreciated_value"`
	Status           string  `json:"status"`
	Location         string  `json:"location"`
	Notes            string  `json:"notes"`
}

func toAssetResponse(a *models.Asset, now time.Time) AssetResponse {
	return AssetResponse{
		ID:               a.ID,
		Name:             a.Name,
		Description:      a.Description,
		Category:         a.Category,
		PurchaseValue:    a.PurchaseValue,
		CurrentValue:     a.CurrentValue,
		PurchaseDate:     a.PurchaseDate.Format("2006-01-02"),
		DepreciationRate: a.DepreciationRate,
		Depreciation:     a.CalculateDepreciation(now),
		DepreciatedValue: a.DepreciatedValue(now),
		Status:           a.Status,
		Location:         a.Location,
		Notes:            a.Notes,
	}
}

func parseDateOrNow(s string) time.Time {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Now()
}

// GET /api/admin/assets
func ListAssetsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Order("purchase_date desc")
		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", category)
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var assets []models.Asset
		if err := query.Find(&assets).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر عرض الأصول")
		}

		now := time.Now()
		resp := make([]AssetResponse, 0, len(assets))
		for i := range assets {
			resp = append(resp, toAssetResponse(&assets[i], now))
		}
		return c.JSON(resp)
	}
}

// GET /api/admin/assets/totals
func AssetTotalsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var assets []models.Asset
		if err := database.DB.Find(&assets).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر حساب الإجماليات")
		}

		now := time.Now()
		var totalPurchase, totalCurrent, totalDepreciation float64
		active, damaged := 0, 0
		for i := range assets {
			a := &assets[i]
			totalPurchase += a.PurchaseValue
			totalCurrent += a.CurrentValue
			totalDepreciation += a.CalculateDepreciation(now)
			switch a.Status {
			case models.AssetStatusActive:
				active++
			case models.AssetStatusDamaged:
				damaged++
			}
		}

		return c.JSON(fiber.Map{
			"count":              len(assets),
			"active_count":       active,
			"damaged_count":      damaged,
			"total_purchase":     totalPurchase,
			"total_current":      totalCurrent,
			"total_depreciation": totalDepreciation,
		})
	}
}

// POST /api/admin/assets
func CreateAssetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAssetRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "اسم الأصل مطلوب")
		}
		if body.PurchaseValue <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "قيمة الشراء يجب أن تكون أكبر من صفر")
		}
		if body.Status == "" {
			body.Status = models.AssetStatusActive
		}

		asset := models.Asset{
			Name:             body.Name,
			Description:      body.Description,
			Category:         body.Category,
			PurchaseValue:    body.PurchaseValue,
			CurrentValue:     body.PurchaseValue,
			PurchaseDate:     parseDateOrNow(body.PurchaseDate),
			DepreciationRate: body.DepreciationRate,
			Status:           body.Status,
			Location:         body.Location,
			Notes:            body.Notes,
		}
		if err := database.DB.Create(&asset).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ في إضافة الأصل")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "asset",
			EntityID:    asset.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("تم إضافة أصل: %s بقيمة %.2f", asset.Name, asset.PurchaseValue),
			After:       toAssetResponse(&asset, time.Now()),
		})

		return c.Status(fiber.StatusCreated).JSON(toAssetResponse(&asset, time.Now()))
	}
}

// PUT /api/admin/assets/:id
func UpdateAssetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var asset models.Asset
		if err := database.DB.First(&asset, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "الأصل غير موجود")
		}
		now := time.Now()
		before := toAssetResponse(&asset, now)

		var body UpdateAssetRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "اسم الأصل لا يمكن أن يكون فارغاً")
			}
			asset.Name = name
		}
		if body.Description != nil {
			asset.Description = *body.Description
		}
		if body.Category != nil {
			asset.Category = *body.Category
		}
		if body.PurchaseValue != nil {
			if *body.PurchaseValue <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "قيمة الشراء يجب أن تكون أكبر من صفر")
			}
			asset.PurchaseValue = *body.PurchaseValue
		}
		if body.CurrentValue != nil {
			if *body.CurrentValue < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "القيمة الحالية لا يمكن أن تكون سالبة")
			}
			asset.CurrentValue = *body.CurrentValue
		}
		if body.PurchaseDate != nil {
			asset.PurchaseDate = parseDateOrNow(*body.PurchaseDate)
		}
		if body.DepreciationRate != nil {
			asset.DepreciationRate = *body.DepreciationRate
		}
		if body.Status != nil {
			asset.Status = *body.Status
		}
		if body.Location != nil {
			asset.Location = *body.Location
		}
		if body.Notes != nil {
			asset.Notes = *body.Notes
		}

		if err := database.DB.Save(&asset).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر تحديث الأصل")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "asset",
			EntityID:    asset.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("تم تحديث الأصل %d", asset.ID),
			Before:      before,
			After:       toAssetResponse(&asset, now),
		})

		return c.JSON(toAssetResponse(&asset, now))
	}
}

// DELETE /api/admin/assets/:id
func DeleteAssetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var asset models.Asset
		if err := database.DB.First(&asset, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "الأصل غير موجود")
		}

		// فك ربط سجلات التلف قبل الحذف
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Spoilage{}).
				Where("asset_id = ?", asset.ID).
				Update("asset_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(&asset).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ في حذف الأصل")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "asset",
			EntityID:    asset.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("تم حذف الأصل: %s", asset.Name),
			Before:      toAssetResponse(&asset, time.Now()),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
