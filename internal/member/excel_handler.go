package member

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"irrigation-backend/internal/audit"
	"irrigation-backend/internal/auth"
	"irrigation-backend/internal/config"
	"irrigation-backend/internal/database"
	"irrigation-backend/internal/ledger"
	"irrigation-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// أعمدة الجدول الثابتة في ملفات الجمعية
const (
	colMemberNumber = "الرقم"
	colMemberName   = "الاســـــــــــم"
	colFee          = "رسوم العضوية"
	colNotes        = "ملاحظات"

	totalsRowPrefix = "الجمال" // صف "الجمالي" في آخر الملف يُتجاهل
)

// ImportColumn: ربط عمود شهر في الملف بخانة (شهر، سنة).
type ImportColumn struct {
	Header string
	Month  int
	Year   int
}

// ImportColumns: أعمدة الأشهر للسنة المالية الحالية، بعناوينها المعيارية.
// الأسماء في الملفات القديمة تأتي بمسافات متفاوتة فتُطابق بعد إزالة المسافات.
func ImportColumns(now time.Time) []ImportColumn {
	slots := ledger.FiscalYearMonths(now)
	cols := make([]ImportColumn, 0, len(slots))
	for _, slot := range slots {
		cols = append(cols, ImportColumn{Header: slot.Label, Month: slot.Month, Year: slot.Year})
	}
	return cols
}

func normalizeHeader(h string) string {
	return strings.ReplaceAll(strings.TrimSpace(h), " ", "")
}

type ImportResult struct {
	Imported int    `json:"imported"`
	Updated  int    `json:"updated"`
	Message  string `json:"message"`
}

// importRows: معالجة صفوف الملف داخل معاملة واحدة.
// أي مبلغ أكبر من صفر في عمود شهر يعني أن الشهر مدفوع بذلك المبلغ.
func importRows(tx *gorm.DB, rows [][]string, cfg *config.Config, now time.Time) (*ImportResult, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("الملف لا يحتوي على بيانات")
	}

	header := rows[0]
	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		colIndex[normalizeHeader(h)] = i
	}

	numberIdx, ok := colIndex[normalizeHeader(colMemberNumber)]
	if !ok {
		return nil, fmt.Errorf("عمود '%s' غير موجود في الملف", colMemberNumber)
	}
	nameIdx, ok := colIndex[normalizeHeader(colMemberName)]
	if !ok {
		return nil, fmt.Errorf("عمود '%s' غير موجود في الملف", colMemberName)
	}

	cell := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	feeIdx := -1
	if i, ok := colIndex[normalizeHeader(colFee)]; ok {
		feeIdx = i
	}
	notesIdx := -1
	if i, ok := colIndex[normalizeHeader(colNotes)]; ok {
		notesIdx = i
	}

	result := &ImportResult{}

	for _, row := range rows[1:] {
		numberStr := cell(row, numberIdx)
		name := cell(row, nameIdx)

		// تجاهل الصفوف الفارغة وصف الإجماليات
		if numberStr == "" || strings.HasPrefix(name, totalsRowPrefix) {
			continue
		}

		memberNumber, err := strconv.Atoi(numberStr)
		if err != nil {
			return nil, fmt.Errorf("رقم عضو غير صالح: %s", numberStr)
		}

		fee := cfg.Payment.MembershipFee
		if feeIdx >= 0 {
			if f, err := strconv.ParseFloat(cell(row, feeIdx), 64); err == nil {
				fee = f
			}
		}

		notes := ""
		if notesIdx >= 0 {
			notes = cell(row, notesIdx)
		}

		// إدراج العضو أو تحديثه حسب رقم العضوية
		var member models.Member
		err = tx.Where("member_number = ?", memberNumber).First(&member).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			member = models.Member{
				MemberNumber:  memberNumber,
				Name:          name,
				MembershipFee: fee,
				JoinDate:      now,
				Notes:         notes,
			}
			if err := tx.Create(&member).Error; err != nil {
				return nil, err
			}
			result.Imported++
		} else if err != nil {
			return nil, err
		} else {
			member.Name = name
			member.MembershipFee = fee
			member.Notes = notes
			if err := tx.Save(&member).Error; err != nil {
				return nil, err
			}
			result.Updated++
		}

		for _, col := range ImportColumns(now) {
			idx, ok := colIndex[normalizeHeader(col.Header)]
			if !ok {
				continue
			}
			amountStr := cell(row, idx)
			if amountStr == "" {
				continue
			}
			amount, err := strconv.ParseFloat(amountStr, 64)
			if err != nil {
				continue
			}
			isPaid := amount > 0
			if !isPaid {
				amount = cfg.Payment.MonthlyAmount
			}

			var payment models.Payment
			err = tx.Where("member_id = ? AND month = ? AND year = ?", member.ID, col.Month, col.Year).First(&payment).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				payment = models.Payment{
					MemberID: member.ID,
					Month:    col.Month,
					Year:     col.Year,
					Amount:   amount,
					IsPaid:   isPaid,
				}
				if isPaid {
					payment.PaymentDate = &now
				}
				if err := tx.Create(&payment).Error; err != nil {
					return nil, err
				}
			} else if err != nil {
				return nil, err
			} else {
				payment.Amount = amount
				payment.IsPaid = isPaid
				if isPaid {
					payment.PaymentDate = &now
				} else {
					payment.PaymentDate = nil
				}
				if err := tx.Save(&payment).Error; err != nil {
					return nil, err
				}
			}
		}
	}

	result.Message = fmt.Sprintf("تم استيراد %d عضو جديد وتحديث %d عضو موجود", result.Imported, result.Updated)
	return result, nil
}

// POST /api/admin/members/import  (multipart، الحقل "file")
func ImportExcelHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "تعذر استلام الملف: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "يُقبل فقط ملفات .xlsx")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر فتح الملف: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "تعذر قراءة ملف Excel: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "الملف لا يحتوي على أي ورقة")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "تعذر قراءة الورقة: "+err.Error())
		}

		var result *ImportResult
		now := time.Now()
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			result, err = importRows(tx, rows, cfg, now)
			return err
		})
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "خطأ في الاستيراد: "+err.Error())
		}

		userID, userName := auth.CurrentUser(c)
		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "member",
			Action:      models.AuditActionImport,
			Description: result.Message,
		})

		return c.JSON(result)
	}
}

// GET /api/admin/members/export
// تصدير جدول الأعضاء والدفعات بنفس تخطيط ملفات الجمعية مع صف إجماليات.
func ExportExcelHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var members []models.Member
		if err := database.DB.Preload("Payments").Order("member_number asc").Find(&members).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر عرض الأعضاء")
		}

		now := time.Now()
		cols := ImportColumns(now)

		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)

		headers := []string{colMemberNumber, colMemberName, colFee}
		for _, col := range cols {
			headers = append(headers, col.Header)
		}
		headers = append(headers, colNotes)
		if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر إنشاء الملف")
		}

		monthTotals := make([]float64, len(cols))
		var feeTotal float64

		for i := range members {
			m := &members[i]
			idx := ledger.IndexPayments(m.Payments)

			row := []interface{}{m.MemberNumber, m.Name, m.MembershipFee}
			feeTotal += m.MembershipFee

			for j, col := range cols {
				amount := 0.0
				if p, ok := idx.Lookup(col.Month, col.Year); ok && p.IsPaid {
					amount = p.Amount
				}
				monthTotals[j] += amount
				row = append(row, amount)
			}
			row = append(row, m.Notes)

			cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
			if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "تعذر إنشاء الملف")
			}
		}

		// صف الإجماليات
		totals := []interface{}{"", "الجمالــــــــــــــــــــــــــي", feeTotal}
		for _, total := range monthTotals {
			totals = append(totals, total)
		}
		totals = append(totals, "")
		cellRef, _ := excelize.CoordinatesToCellName(1, len(members)+2)
		if err := f.SetSheetRow(sheet, cellRef, &totals); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر إنشاء الملف")
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر كتابة الملف")
		}

		filename := fmt.Sprintf("تصدير_البيانات_%s.xlsx", now.Format("20060102_150405"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Send(buf.Bytes())
	}
}
