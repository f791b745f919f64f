package member

import (
	"errors"
	"fmt"
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

type PaymentBoardRow struct {
	Member           MemberResponse `json:"member"`
	IsPaid           bool           `json:"is_paid"`
	Amount           float64        `json:"amount"`
	PaymentDate      *string        `json:"payment_date"`
	TotalPaid        float64        `json:"total_paid"`
	MonthsPaid       int            `json:"months_paid"`
	RemainingBalance float64        `json:"remaining_balance"`
}

type PaymentBoardResponse struct {
	Month        int               `json:"month"`
	Year         int               `json:"year"`
	Rows         []PaymentBoardRow `json:"rows"`
	PaidCount    int               `json:"paid_count"`
	UnpaidCount  int               `json:"unpaid_count"`
	TotalMembers int               `json:"total_members"`
	TotalAmount  float64           `json:"total_amount"`
}

type UpdatePaymentRequest struct {
	MemberID uint `json:"member_id"`
	Month    int  `json:"month"`
	Year     int  `json:"year"`
	IsPaid   bool `json:"is_paid"`
}

type PaymentChange struct {
	Type          string  `json:"type"` // "payment" أو "member"
	MemberID      uint    `json:"member_id"`
	Month         int     `json:"month"`
	Year          int     `json:"year"`
	IsPaid        bool    `json:"is_paid"`
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Village       string  `json:"village"`
	MembershipFee float64 `json:"membership_fee"`
}

type SaveChangesRequest struct {
	Changes []PaymentChange `json:"changes"`
}

// togglePayment: آلة حالات خانة الدفع.
// لا سجل → إنشاؤه مدفوعاً بمبلغ رسوم العضوية/12 وتاريخ الآن؛
// سجل موجود → قلب حالته وضبط/مسح تاريخ الدفع.
func togglePayment(tx *gorm.DB, member *models.Member, month, year int, now time.Time) (*models.Payment, error) {
	var payment models.Payment
	err := tx.Where("member_id = ? AND month = ? AND year = ?", member.ID, month, year).First(&payment).Error
	switch {
	case err == nil:
		payment.IsPaid = !payment.IsPaid
		if payment.IsPaid {
			payment.PaymentDate = &now
		} else {
			payment.PaymentDate = nil
		}
		if err := tx.Save(&payment).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		payment = models.Payment{
			MemberID:    member.ID,
			Month:       month,
			Year:        year,
			Amount:      member.MembershipFee / 12,
			IsPaid:      true,
			PaymentDate: &now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return &payment, nil
}

// setPayment: ضبط حالة الدفع صراحةً، مع إنشاء السجل بالمبلغ الافتراضي إن لم يوجد.
func setPayment(tx *gorm.DB, memberID uint, month, year int, isPaid bool, defaultAmount float64, now time.Time) error {
	var payment models.Payment
	err := tx.Where("member_id = ? AND month = ? AND year = ?", memberID, month, year).First(&payment).Error
	switch {
	case err == nil:
		payment.IsPaid = isPaid
		if isPaid {
			payment.PaymentDate = &now
		} else {
			payment.PaymentDate = nil
		}
		return tx.Save(&payment).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		payment = models.Payment{
			MemberID: memberID,
			Month:    month,
			Year:     year,
			Amount:   defaultAmount,
			IsPaid:   isPaid,
		}
		if isPaid {
			payment.PaymentDate = &now
		}
		return tx.Create(&payment).Error
	default:
		return err
	}
}

// GET /api/admin/payments/board?month=3&year=2025
// لوحة دفعات شهر واحد لكل الأعضاء مع عدادات الملخص.
func PaymentBoardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		month := c.QueryInt("month", int(now.Month()))
		year := c.QueryInt("year", now.Year())
		if month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "الشهر غير صالح")
		}

		var members []models.Member
		if err := database.DB.Preload("Payments").Order("member_number asc").Find(&members).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر عرض الأعضاء")
		}

		resp := PaymentBoardResponse{
			Month:        month,
			Year:         year,
			Rows:         make([]PaymentBoardRow, 0, len(members)),
			TotalMembers: len(members),
		}

		for i := range members {
			m := &members[i]
			idx := ledger.IndexPayments(m.Payments)

			row := PaymentBoardRow{
				Member:           toMemberResponse(m),
				TotalPaid:        ledger.TotalPaid(m.Payments),
				MonthsPaid:       ledger.MonthsPaidCount(m.Payments),
				RemainingBalance: ledger.RemainingBalance(m.MembershipFee, m.Payments),
			}

			if p, ok := idx.Lookup(month, year); ok {
				row.IsPaid = p.IsPaid
				row.Amount = p.Amount
				if p.PaymentDate != nil {
					formatted := p.PaymentDate.Format("2006-01-02 15:04:05")
					row.PaymentDate = &formatted
				}
			} else {
				// لا سجل بعد: المبلغ المفترض شهرياً
				row.Amount = m.MembershipFee / 12
			}

			if row.IsPaid {
				resp.PaidCount++
				resp.TotalAmount += row.Amount
			} else {
				resp.UnpaidCount++
			}

			resp.Rows = append(resp.Rows, row)
		}

		return c.JSON(resp)
	}
}

// POST /api/admin/payments/toggle/:member_id/:month/:year
func TogglePaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := c.ParamsInt("member_id")
		if err != nil || memberID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "رقم العضو غير صالح")
		}
		month, err := c.ParamsInt("month")
		if err != nil || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "الشهر غير صالح")
		}
		year, err := c.ParamsInt("year")
		if err != nil || year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "السنة غير صالحة")
		}

		var member models.Member
		if err := database.DB.First(&member, "id = ?", memberID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "المشترك غير موجود")
		}

		var payment *models.Payment
		now := time.Now()
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			payment, err = togglePayment(tx, &member, month, year, now)
			return err
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ في تحديث حالة الدفع")
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "payment",
			EntityID:    payment.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("تبديل دفعة %d/%d للمشترك %d", month, year, member.MemberNumber),
			After:       payment,
		})

		return c.JSON(fiber.Map{
			"member_id":    member.ID,
			"month":        payment.Month,
			"year":         payment.Year,
			"is_paid":      payment.IsPaid,
			"amount":       payment.Amount,
			"payment_date": payment.PaymentDate,
		})
	}
}

// POST /api/admin/payments
// ضبط حالة دفعة صراحةً (واجهة جدول الدفعات التفاعلي).
func UpdatePaymentHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdatePaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}
		if body.MemberID == 0 || body.Month < 1 || body.Month > 12 || body.Year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الدفعة غير صالحة")
		}

		var member models.Member
		if err := database.DB.First(&member, "id = ?", body.MemberID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "المشترك غير موجود")
		}

		now := time.Now()
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			return setPayment(tx, body.MemberID, body.Month, body.Year, body.IsPaid, cfg.Payment.MonthlyAmount, now)
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ في تحديث حالة الدفع")
		}

		return c.JSON(fiber.Map{"success": true})
	}
}

// POST /api/admin/payments/save-changes
// حفظ دفعة تعديلات مختلطة (دفعات وبيانات أعضاء) في معاملة واحدة.
func SaveChangesHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SaveChangesRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		now := time.Now()
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			for _, change := range body.Changes {
				switch change.Type {
				case "payment":
					if err := setPayment(tx, change.MemberID, change.Month, change.Year, change.IsPaid, cfg.Payment.MonthlyAmount, now); err != nil {
						return err
					}
				case "member":
					var m models.Member
					if err := tx.First(&m, "id = ?", change.ID).Error; err != nil {
						continue // عضو حُذف أثناء التعديل، نتجاوزه
					}
					m.Name = change.Name
					m.Village = change.Village
					m.MembershipFee = change.MembershipFee
					if err := tx.Save(&m).Error; err != nil {
						return err
					}
				default:
					return fmt.Errorf("نوع تعديل غير معروف: %s", change.Type)
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "حدث خطأ في حفظ التغييرات: "+err.Error())
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "payment",
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("حفظ %d تعديلاً على الأعضاء والدفعات", len(body.Changes)),
		})

		return c.JSON(fiber.Map{"success": true})
	}
}
