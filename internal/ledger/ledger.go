// Package ledger يحسب القيم المشتقة من دفعات العضو دون تخزينها:
// إجمالي المدفوع، عدد الأشهر المدفوعة، الرصيد المتبقي، والأشهر المتأخرة.
package ledger

import (
	"fmt"

	"irrigation-backend/internal/models"
)

// TotalPaid: مجموع مبالغ الدفعات المدفوعة فقط.
func TotalPaid(payments []models.Payment) float64 {
	var total float64
	for _, p := range payments {
		if p.IsPaid {
			total += p.Amount
		}
	}
	return total
}

// MonthsPaidCount: عدد الدفعات المدفوعة.
func MonthsPaidCount(payments []models.Payment) int {
	count := 0
	for _, p := range payments {
		if p.IsPaid {
			count++
		}
	}
	return count
}

// PaymentIndex: فهرس الدفعات حسب (الشهر، السنة) للوصول المباشر.
type PaymentIndex map[[2]int]models.Payment

func IndexPayments(payments []models.Payment) PaymentIndex {
	idx := make(PaymentIndex, len(payments))
	for _, p := range payments {
		idx[[2]int{p.Month, p.Year}] = p
	}
	return idx
}

// Lookup: دفعة شهر معين إن وجدت.
func (idx PaymentIndex) Lookup(month, year int) (models.Payment, bool) {
	p, ok := idx[[2]int{month, year}]
	return p, ok
}

// RemainingBalance: الحد الأقصى بين الصفر و(رسوم العضوية × 12 − المدفوع).
// المعادلة تخلط رسوم العضوية السنوية مع مجموع المبالغ الشهرية؛ هذا هو
// السلوك المعتمد لدى الجمعية ويُغيَّر هنا فقط عند اعتماد سياسة جديدة.
func RemainingBalance(membershipFee float64, payments []models.Payment) float64 {
	remaining := membershipFee*12 - TotalPaid(payments)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// UnpaidMonths: تسميات "شهر/سنة" للدفعات الموجودة وغير المدفوعة بترتيبها.
// الأشهر التي لا سجل لها لا تُحتسب متأخرة.
func UnpaidMonths(payments []models.Payment) []string {
	unpaid := make([]string, 0)
	for _, p := range payments {
		if !p.IsPaid {
			unpaid = append(unpaid, fmt.Sprintf("%d/%d", p.Month, p.Year))
		}
	}
	return unpaid
}

// PaidByMonth: خريطة "شهر/سنة" → حالة الدفع لعرض جدول الأعضاء.
func PaidByMonth(payments []models.Payment) map[string]bool {
	paid := make(map[string]bool, len(payments))
	for _, p := range payments {
		paid[fmt.Sprintf("%d/%d", p.Month, p.Year)] = p.IsPaid
	}
	return paid
}
