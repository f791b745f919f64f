package ledger

import (
	"testing"
	"time"
)

func TestFiscalYearBounds(t *testing.T) {
	tests := []struct {
		now        time.Time
		start, end int
	}{
		{time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), 2024, 2025},
		{time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC), 2024, 2025},
		{time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), 2025, 2026},
		{time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), 2025, 2026},
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 2025, 2026},
	}

	for _, tt := range tests {
		start, end := FiscalYearBounds(tt.now)
		if start != tt.start || end != tt.end {
			t.Errorf("FiscalYearBounds(%s) = %d, %d; want %d, %d",
				tt.now.Format("2006-01-02"), start, end, tt.start, tt.end)
		}
	}
}

func TestFiscalYearMonthsSequence(t *testing.T) {
	now := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	slots := FiscalYearMonths(now)

	if len(slots) != 12 {
		t.Fatalf("len(slots) = %d, want 12", len(slots))
	}

	want := []MonthSlot{
		{"شهر11", 11, 2024},
		{"شهر12", 12, 2024},
		{"شهر1", 1, 2025},
		{"شهر2", 2, 2025},
		{"شهر3", 3, 2025},
		{"شهر4", 4, 2025},
		{"شهر5", 5, 2025},
		{"شهر6", 6, 2025},
		{"شهر7", 7, 2025},
		{"شهر8", 8, 2025},
		{"شهر9", 9, 2025},
		{"شهر10", 10, 2025},
	}

	for i, w := range want {
		if slots[i] != w {
			t.Errorf("slots[%d] = %+v, want %+v", i, slots[i], w)
		}
	}
}

func TestFiscalYearMonthsAtYearStart(t *testing.T) {
	now := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)
	slots := FiscalYearMonths(now)

	first, last := slots[0], slots[11]
	if first.Month != 11 || first.Year != 2025 {
		t.Errorf("first slot = %+v, want 11/2025", first)
	}
	if last.Month != 10 || last.Year != 2026 {
		t.Errorf("last slot = %+v, want 10/2026", last)
	}
}
