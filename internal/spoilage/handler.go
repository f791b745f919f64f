package spoilage

import (
	"errors"
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

type CreateSpoilageRequest struct {
	ItemName       string  `json:"item_name"`
	AssetID        *uint   `json:"asset_id"`
	Description    string  `json:"description"`
	OriginalValue  float64 `json:"original_value"`
	SpoilageValue  float64 `json:"spoilage_value"`
	SpoilageDate   string  `json:"spoilage_date"`
	SpoilageReason string  `json:"spoilage_reason"`
	Category       string  `json:"category"`
	Status         string  `json:"status"`
	Notes          string  `json:"notes"`
}

type UpdateSpoilageRequest struct {
	ItemName       *string  `json:"item_name"`
	AssetID        *uint    `json:"asset_id"`
	Description    *string  `json:"description"`
	OriginalValue  *float64 `json:"original_value"`
	SpoilageValue  *float64 `json:"spoilage_value"`
	SpoilageDate   *string  `json:"spoilage_date"`
	SpoilageReason *string  `json:"spoilage_reason"`
	Category       *string  `json:"category"`
	Status         *string  `json:"status"`
	Notes          *string  `json:"notes"`
}

type SpoilageResponse struct {
	ID             uint    `json:"id"`
	ItemName       string  `json:"item_name"`
	AssetID        *uint   `json:"asset_id"`
	AssetName      string  `json:"asset_name,omitempty"`
	Description    string  `json:"description"`
	OriginalValue  float64 `json:"original_value"`
	SpoilageValue  float64 `json:"spoilage_value"`
	SpoilageDate   string  `json:"spoilage_date"`
	SpoilageReason string  `json:"spoilage_reason"`
	Category       string  `json:"category"`
	Status         string  `json:"status"`
	Notes          string  `json:"notes"`
}

func toSpoilageResponse(s *models.Spoilage) SpoilageResponse {
	resp := SpoilageResponse{
		ID:             s.ID,
		ItemName:       s.ItemName,
		AssetID:        s.AssetID,
		Description:    s.Description,
		OriginalValue:  s.OriginalValue,
		SpoilageValue:  s.SpoilageValue,
		SpoilageDate:   s.SpoilageDate.Format("2006-01-02"),
		SpoilageReason: s.SpoilageReason,
		Category:       s.Category,
		Status:         s.Status,
		Notes:          s.Notes,
	}
	if s.Asset != nil {
		resp.AssetName = s.Asset.Name
	}
	return resp
}

var errAmbiguousAsset = errors.New("ambiguous asset name")

// resolveAsset: إما asset_id صريح أو مطابقة بالاسم عند تفرّده.
// أكثر من أصل بنفس الاسم يُرفض، ولا مطابقة تعني سجلاً بلا ربط.
func resolveAsset(tx *gorm.DB, assetID *uint, itemName string) (*models.Asset, error) {
	if assetID != nil {
		var asset models.Asset
		if err := tx.First(&asset, "id = ?", *assetID).Error; err != nil {
			return nil, err
		}
		return &asset, nil
	}

	var assets []models.Asset
	if err := tx.Where("name = ?", itemName).Find(&assets).Error; err != nil {
		return nil, err
	}
	switch len(assets) {
	case 0:
		return nil, nil
	case 1:
		return &assets[0], nil
	default:
		return nil, errAmbiguousAsset
	}
}

// applySpoilage: خصم قيمة التلف من الأصل دون النزول تحت الصفر
func applySpoilage(tx *gorm.DB, asset *models.Asset, value float64) error {
	asset.CurrentValue -= value
	if asset.CurrentValue <= 0 {
		asset.CurrentValue = 0
		asset.Status = models.AssetStatusDamaged
	}
	return tx.Save(asset).Error
}

// restoreSpoilage: إرجاع قيمة التلف للأصل وإعادة تفعيله إن أصبحت قيمته موجبة
func restoreSpoilage(tx *gorm.DB, asset *models.Asset, value float64) error {
	asset.CurrentValue += value
	if asset.CurrentValue > asset.PurchaseValue {
		asset.CurrentValue = asset.PurchaseValue
	}
	if asset.CurrentValue > 0 && asset.Status == models.AssetStatusDamaged {
		asset.Status = models.AssetStatusActive
	}
	return tx.Save(asset).Error
}

// reconcileEdit: إرجاع أثر السجل القديم على أصله ثم تطبيق القيمة الجديدة.
// حالة "مُصلح" لا تلغي الخصم، فقط تعيد الأصل فعالاً.
func reconcileEdit(tx *gorm.DB, oldAssetID *uint, oldValue float64, s *models.Spoilage) error {
	if oldAssetID != nil {
		var oldAsset models.Asset
		if err := tx.First(&oldAsset, "id = ?", *oldAssetID).Error; err == nil {
			if err := restoreSpoilage(tx, &oldAsset, oldValue); err != nil {
				return err
			}
		}
	}

	if s.AssetID == nil {
		return nil
	}
	var asset models.Asset
	if err := tx.First(&asset, "id = ?", *s.AssetID).Error; err != nil {
		return err
	}
	if err := applySpoilage(tx, &asset, s.SpoilageValue); err != nil {
		return err
	}
	if s.Status == models.SpoilageStatusRepaired && asset.Status == models.AssetStatusDamaged {
		asset.Status = models.AssetStatusActive
		return tx.Save(&asset).Error
	}
	return nil
}

// reconcileDelete: إرجاع قيمة التلف للأصل المرتبط مهما كانت حالة السجل
func reconcileDelete(tx *gorm.DB, s *models.Spoilage) error {
	if s.AssetID == nil {
		return nil
	}
	var asset models.Asset
	if err := tx.First(&asset, "id = ?", *s.AssetID).Error; err != nil {
		return nil
	}
	return restoreSpoilage(tx, &asset, s.SpoilageValue)
}

// GET /api/admin/spoilages
func ListSpoilagesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var spoilages []models.Spoilage
		if err := database.DB.Preload("Asset").Order("spoilage_date desc").Find(&spoilages).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر عرض سجلات التلف")
		}

		resp := make([]SpoilageResponse, 0, len(spoilages))
		var total float64
		for i := range spoilages {
			resp = append(resp, toSpoilageResponse(&spoilages[i]))
			total += spoilages[i].SpoilageValue
		}
		return c.JSON(fiber.Map{
			"spoilages":   resp,
			"total_value": total,
		})
	}
}

// POST /api/admin/spoilages
func CreateSpoilageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSpoilageRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		body.ItemName = strings.TrimSpace(body.ItemName)
		if body.ItemName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "اسم الصنف مطلوب")
		}
		if body.SpoilageValue <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "قيمة التلف يجب أن تكون أكبر من صفر")
		}
		if body.Status == "" {
			body.Status = models.SpoilageStatusDamaged
		}

		spoilage := models.Spoilage{
			ItemName:       body.ItemName,
			Description:    body.Description,
			OriginalValue:  body.OriginalValue,
			SpoilageValue:  body.SpoilageValue,
			SpoilageDate:   parseDateOrNow(body.SpoilageDate),
			SpoilageReason: body.SpoilageReason,
			Category:       body.Category,
			Status:         body.Status,
			Notes:          body.Notes,
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			asset, err := resolveAsset(tx, body.AssetID, body.ItemName)
			if err != nil {
				return err
			}
			if asset != nil {
				spoilage.AssetID = &asset.ID
				if spoilage.OriginalValue == 0 {
					spoilage.OriginalValue = asset.PurchaseValue
				}
				if err := applySpoilage(tx, asset, spoilage.SpoilageValue); err != nil {
					return err
				}
			}
			return tx.Create(&spoilage).Error
		})
		if err != nil {
			if errors.Is(err, errAmbiguousAsset) {
				return fiber.NewError(fiber.StatusBadRequest, "يوجد أكثر من أصل بنفس الاسم، حدد asset_id")
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "الأصل غير موجود")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ في تسجيل التلف")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "spoilage",
			EntityID:    spoilage.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("تم تسجيل تلف: %s بقيمة %.2f", spoilage.ItemName, spoilage.SpoilageValue),
			After:       toSpoilageResponse(&spoilage),
		})

		return c.Status(fiber.StatusCreated).JSON(toSpoilageResponse(&spoilage))
	}
}

// PUT /api/admin/spoilages/:id
// التعديل يُرجع أثر السجل القديم على الأصل ثم يطبق القيم الجديدة
func UpdateSpoilageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var spoilage models.Spoilage
		if err := database.DB.First(&spoilage, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "سجل التلف غير موجود")
		}
		before := toSpoilageResponse(&spoilage)
		oldAssetID := spoilage.AssetID
		oldValue := spoilage.SpoilageValue

		var body UpdateSpoilageRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		if body.ItemName != nil {
			name := strings.TrimSpace(*body.ItemName)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "اسم الصنف لا يمكن أن يكون فارغاً")
			}
			spoilage.ItemName = name
		}
		if body.AssetID != nil {
			spoilage.AssetID = body.AssetID
		}
		if body.Description != nil {
			spoilage.Description = *body.Description
		}
		if body.OriginalValue != nil {
			spoilage.OriginalValue = *body.OriginalValue
		}
		if body.SpoilageValue != nil {
			if *body.SpoilageValue <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "قيمة التلف يجب أن تكون أكبر من صفر")
			}
			spoilage.SpoilageValue = *body.SpoilageValue
		}
		if body.SpoilageDate != nil {
			spoilage.SpoilageDate = parseDateOrNow(*body.SpoilageDate)
		}
		if body.SpoilageReason != nil {
			spoilage.SpoilageReason = *body.SpoilageReason
		}
		if body.Category != nil {
			spoilage.Category = *body.Category
		}
		if body.Status != nil {
			spoilage.Status = *body.Status
		}
		if body.Notes != nil {
			spoilage.Notes = *body.Notes
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := reconcileEdit(tx, oldAssetID, oldValue, &spoilage); err != nil {
				return err
			}
			return tx.Save(&spoilage).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "الأصل غير موجود")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر تحديث سجل التلف")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "spoilage",
			EntityID:    spoilage.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("تم تحديث سجل التلف %d", spoilage.ID),
			Before:      before,
			After:       toSpoilageResponse(&spoilage),
		})

		return c.JSON(toSpoilageResponse(&spoilage))
	}
}

// DELETE /api/admin/spoilages/:id
// الحذف يُرجع قيمة التلف للأصل المرتبط
func DeleteSpoilageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var spoilage models.Spoilage
		if err := database.DB.First(&spoilage, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "سجل التلف غير موجود")
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := reconcileDelete(tx, &spoilage); err != nil {
				return err
			}
			return tx.Delete(&spoilage).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ في حذف سجل التلف")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "spoilage",
			EntityID:    spoilage.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("تم حذف سجل التلف: %s", spoilage.ItemName),
			Before:      toSpoilageResponse(&spoilage),
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func parseDateOrNow(s string) time.Time {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Now()
}
