package member

import (
	"fmt"
	"log"
	"strings"
	"time"

	"irrigation-backend/internal/audit"
	"irrigation-backend/internal/auth"
	"irrigation-backend/internal/config"
	"irrigation-backend/internal/database"
	"irrigation-backend/internal/ledger"
	"irrigation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateMemberRequest struct {
	MemberNumber  int      `json:"member_number"`
	Name          string   `json:"name"`
	Village       string   `json:"village"`
	MembershipFee *float64 `json:"membership_fee"`
	Notes         string   `json:"notes"`
}

type UpdateMemberRequest struct {
	Name          *string  `json:"name"`
	Village       *string  `json:"village"`
	MembershipFee *float64 `json:"membership_fee"`
	Notes         *string  `json:"notes"`
	IsNewMember   *bool    `json:"is_new_member"`
}

type MemberResponse struct {
	ID            uint    `json:"id"`
	MemberNumber  int     `json:"member_number"`
	Name          string  `json:"name"`
	Village       string  `json:"village"`
	MembershipFee float64 `json:"membership_fee"`
	JoinDate      string  `json:"join_date"`
	Notes         string  `json:"notes"`
	IsNewMember   bool    `json:"is_new_member"`
	Status        string  `json:"status"`
}

type MemberBoardRow struct {
	MemberResponse
	TotalPaid        float64         `json:"total_paid"`
	MonthsPaid       int             `json:"months_paid"`
	RemainingBalance float64         `json:"remaining_balance"`
	UnpaidMonths     []string        `json:"unpaid_months"`
	Payments         map[string]bool `json:"payments"` // "شهر/سنة" → مدفوع
}

func toMemberResponse(m *models.Member) MemberResponse {
	return MemberResponse{
		ID:            m.ID,
		MemberNumber:  m.MemberNumber,
		Name:          m.Name,
		Village:       m.Village,
		MembershipFee: m.MembershipFee,
		JoinDate:      m.JoinDate.Format("2006-01-02"),
		Notes:         m.Notes,
		IsNewMember:   m.IsNewMember,
		Status:        m.MemberStatus(),
	}
}

// provisionFiscalYearPayments: إنشاء دفعات السنة المالية كاملة لعضو جديد،
// كلها غير مدفوعة وبالمبلغ الشهري الافتراضي.
func provisionFiscalYearPayments(tx *gorm.DB, memberID uint, amount float64, now time.Time) error {
	for _, slot := range ledger.FiscalYearMonths(now) {
		payment := models.Payment{
			MemberID: memberID,
			Month:    slot.Month,
			Year:     slot.Year,
			Amount:   amount,
			IsPaid:   false,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
	}
	return nil
}

// GET /api/members  (عام)
// جدول الأعضاء مع القيم المشتقة وحالة كل شهر.
func ListMembersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var members []models.Member
		if err := database.DB.Preload("Payments").Order("member_number asc").Find(&members).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر عرض الأعضاء")
		}

		rows := make([]MemberBoardRow, 0, len(members))
		for i := range members {
			m := &members[i]
			row := MemberBoardRow{
				MemberResponse:   toMemberResponse(m),
				TotalPaid:        ledger.TotalPaid(m.Payments),
				MonthsPaid:       ledger.MonthsPaidCount(m.Payments),
				RemainingBalance: ledger.RemainingBalance(m.MembershipFee, m.Payments),
				UnpaidMonths:     ledger.UnpaidMonths(m.Payments),
				Payments:         ledger.PaidByMonth(m.Payments),
			}
			if row.Village == "" {
				row.Village = "غير محدد"
			}
			rows = append(rows, row)
		}

		return c.JSON(rows)
	}
}

// POST /api/admin/members
func CreateMemberHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMemberRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.MemberNumber <= 0 || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "رقم العضو والاسم مطلوبان")
		}

		fee := cfg.Payment.MembershipFee
		if body.MembershipFee != nil {
			fee = *body.MembershipFee
		}

		// فحص دفاعي قبل الإدراج بدل الاعتماد على خطأ القيد الفريد
		var count int64
		database.DB.Model(&models.Member{}).Where("member_number = ?", body.MemberNumber).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "رقم العضو موجود مسبقاً")
		}

		now := time.Now()
		member := models.Member{
			MemberNumber:  body.MemberNumber,
			Name:          body.Name,
			Village:       strings.TrimSpace(body.Village),
			MembershipFee: fee,
			JoinDate:      now,
			Notes:         body.Notes,
			IsNewMember:   true,
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
			return provisionFiscalYearPayments(tx, member.ID, cfg.Payment.MonthlyAmount, now)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ في إضافة المشترك")
		}

		userID, userName := auth.CurrentUser(c)
		if logErr := audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "member",
			EntityID:    member.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("تم إضافة المشترك %d: %s", member.MemberNumber, member.Name),
			After:       toMemberResponse(&member),
		}); logErr != nil {
			log.Println("تعذر كتابة سجل العمليات:", logErr)
		}

		return c.Status(fiber.StatusCreated).JSON(toMemberResponse(&member))
	}
}

// PUT /api/admin/members/:id
func UpdateMemberHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var member models.Member
		if err := database.DB.First(&member, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "المشترك غير موجود")
		}
		before := toMemberResponse(&member)

		var body UpdateMemberRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "الاسم لا يمكن أن يكون فارغاً")
			}
			member.Name = name
		}
		if body.Village != nil {
			member.Village = strings.TrimSpace(*body.Village)
		}
		if body.MembershipFee != nil {
			member.MembershipFee = *body.MembershipFee
		}
		if body.Notes != nil {
			member.Notes = *body.Notes
		}
		if body.IsNewMember != nil {
			member.IsNewMember = *body.IsNewMember
		}

		if err := database.DB.Save(&member).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر تحديث المشترك")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "member",
			EntityID:    member.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("تم تحديث بيانات المشترك %d", member.MemberNumber),
			Before:      before,
			After:       toMemberResponse(&member),
		})

		return c.JSON(toMemberResponse(&member))
	}
}

// DELETE /api/admin/members/:id
// حذف العضو يحذف دفعاته (حذف متسلسل).
func DeleteMemberHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var member models.Member
		if err := database.DB.First(&member, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "المشترك غير موجود")
		}
		before := toMemberResponse(&member)

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			// حذف الدفعات التابعة ثم العضو في معاملة واحدة
			if err := tx.Where("member_id = ?", member.ID).Delete(&models.Payment{}).Error; err != nil {
				return err
			}
			return tx.Delete(&member).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ في حذف المشترك")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "member",
			EntityID:    member.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("تم حذف المشترك %d: %s", member.MemberNumber, member.Name),
			Before:      before,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
