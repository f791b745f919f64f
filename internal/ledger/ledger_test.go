package ledger

import (
	"reflect"
	"testing"
	"time"

	"irrigation-backend/internal/models"
)

func paidAt(t time.Time) *time.Time { return &t }

func TestDerivedValuesEmptyMember(t *testing.T) {
	var payments []models.Payment

	if got := TotalPaid(payments); got != 0 {
		t.Errorf("TotalPaid = %v, want 0", got)
	}
	if got := MonthsPaidCount(payments); got != 0 {
		t.Errorf("MonthsPaidCount = %v, want 0", got)
	}
	if got := UnpaidMonths(payments); len(got) != 0 {
		t.Errorf("UnpaidMonths = %v, want empty", got)
	}
}

func TestTotalPaidCountsPaidOnly(t *testing.T) {
	now := time.Now()
	payments := []models.Payment{
		{Month: 11, Year: 2024, Amount: 1000, IsPaid: true, PaymentDate: paidAt(now)},
		{Month: 12, Year: 2024, Amount: 1500, IsPaid: true, PaymentDate: paidAt(now)},
		{Month: 1, Year: 2025, Amount: 1000, IsPaid: false},
	}

	if got := TotalPaid(payments); got != 2500 {
		t.Errorf("TotalPaid = %v, want 2500", got)
	}
	if got := MonthsPaidCount(payments); got != 2 {
		t.Errorf("MonthsPaidCount = %v, want 2", got)
	}
}

func TestPaymentIndexLookup(t *testing.T) {
	payments := []models.Payment{
		{Month: 11, Year: 2024, Amount: 1000},
		{Month: 1, Year: 2025, Amount: 1200},
	}
	idx := IndexPayments(payments)

	p, ok := idx.Lookup(1, 2025)
	if !ok || p.Amount != 1200 {
		t.Fatalf("Lookup(1, 2025) = %+v, %v", p, ok)
	}
	if _, ok := idx.Lookup(2, 2025); ok {
		t.Error("Lookup(2, 2025) found a payment that does not exist")
	}
}

func TestRemainingBalance(t *testing.T) {
	tests := []struct {
		name     string
		fee      float64
		payments []models.Payment
		want     float64
	}{
		{"no payments", 5000, nil, 60000},
		{"partial", 5000, []models.Payment{{Amount: 10000, IsPaid: true}}, 50000},
		{"overpaid never negative", 1000, []models.Payment{{Amount: 20000, IsPaid: true}}, 0},
		{"unpaid rows ignored", 5000, []models.Payment{{Amount: 10000, IsPaid: false}}, 60000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemainingBalance(tt.fee, tt.payments); got != tt.want {
				t.Errorf("RemainingBalance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnpaidMonthsLabelsAndOrder(t *testing.T) {
	payments := []models.Payment{
		{Month: 11, Year: 2024, IsPaid: false},
		{Month: 12, Year: 2024, IsPaid: true},
		{Month: 1, Year: 2025, IsPaid: false},
	}

	want := []string{"11/2024", "1/2025"}
	if got := UnpaidMonths(payments); !reflect.DeepEqual(got, want) {
		t.Errorf("UnpaidMonths = %v, want %v", got, want)
	}
}

func TestTotalPaidStableAcrossToggleSequence(t *testing.T) {
	payments := []models.Payment{
		{Month: 11, Year: 2024, Amount: 1000, IsPaid: false},
		{Month: 12, Year: 2024, Amount: 1000, IsPaid: false},
	}

	// تتابع تبديل: دفع، ثم إلغاء، ثم دفع مرة أخرى
	payments[0].IsPaid = true
	payments[0].IsPaid = false
	payments[0].IsPaid = true
	payments[1].IsPaid = true

	if got := TotalPaid(payments); got != 2000 {
		t.Errorf("TotalPaid after toggles = %v, want 2000", got)
	}
}
