package ledger

import (
	"strconv"
	"time"
)

// السنة المالية للجمعية تمتد من نوفمبر إلى أكتوبر.
const fiscalStartMonth = time.November

// MonthSlot: خانة شهرية في السنة المالية
type MonthSlot struct {
	Label string // "شهر11"
	Month int    // 1-12
	Year  int
}

// FiscalYearBounds: سنتا بداية ونهاية السنة المالية التي تحتوي "الآن".
// نوفمبر وديسمبر ينتميان للسنة المالية التي تبدأ في سنتهما التقويمية.
func FiscalYearBounds(now time.Time) (start, end int) {
	if now.Month() >= fiscalStartMonth {
		return now.Year(), now.Year() + 1
	}
	return now.Year() - 1, now.Year()
}

// FiscalYearMonths: الخانات الاثنتا عشرة للسنة المالية الحالية بالترتيب:
// نوفمبر وديسمبر من سنة البداية ثم يناير إلى أكتوبر من سنة النهاية.
func FiscalYearMonths(now time.Time) []MonthSlot {
	start, end := FiscalYearBounds(now)

	slots := make([]MonthSlot, 0, 12)
	for month := 11; month <= 12; month++ {
		slots = append(slots, MonthSlot{Label: monthLabel(month), Month: month, Year: start})
	}
	for month := 1; month <= 10; month++ {
		slots = append(slots, MonthSlot{Label: monthLabel(month), Month: month, Year: end})
	}
	return slots
}

func monthLabel(month int) string {
	return "شهر" + strconv.Itoa(month)
}
