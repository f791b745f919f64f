package models

import (
	"testing"
	"time"
)

func TestCalculateDepreciation(t *testing.T) {
	purchase := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Asset{PurchaseValue: 10000, DepreciationRate: 10, PurchaseDate: purchase}

	// بعد سنتين تقريباً: 10000 * 10% * 2 = 2000
	now := purchase.AddDate(2, 0, 0)
	got := a.CalculateDepreciation(now)
	if got < 1990 || got > 2010 {
		t.Errorf("الاستهلاك بعد سنتين = %.2f، المتوقع قرابة 2000", got)
	}
}

func TestCalculateDepreciationCappedAtPurchaseValue(t *testing.T) {
	purchase := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Asset{PurchaseValue: 1000, DepreciationRate: 20, PurchaseDate: purchase}

	got := a.CalculateDepreciation(purchase.AddDate(20, 0, 0))
	if got != 1000 {
		t.Errorf("الاستهلاك = %.2f، يجب ألا يتجاوز قيمة الشراء", got)
	}
	if v := a.DepreciatedValue(purchase.AddDate(20, 0, 0)); v != 0 {
		t.Errorf("القيمة بعد الاستهلاك الكامل = %.2f، المتوقع 0", v)
	}
}

func TestCalculateDepreciationZeroRate(t *testing.T) {
	a := Asset{PurchaseValue: 5000, DepreciationRate: 0, PurchaseDate: time.Now().AddDate(-5, 0, 0)}
	if got := a.CalculateDepreciation(time.Now()); got != 0 {
		t.Errorf("استهلاك بنسبة صفر = %.2f", got)
	}
}

func TestMemberStatus(t *testing.T) {
	m := Member{IsNewMember: true}
	if m.MemberStatus() != "جديد" {
		t.Errorf("حالة العضو الجديد = %s", m.MemberStatus())
	}
	m.IsNewMember = false
	if m.MemberStatus() != "سابق" {
		t.Errorf("حالة العضو السابق = %s", m.MemberStatus())
	}
}

func TestIsNewByJoinDate(t *testing.T) {
	now := time.Now()
	m := Member{JoinDate: now.AddDate(0, -2, 0)}
	if !m.IsNewByJoinDate(now, 6) {
		t.Error("عضو انضم قبل شهرين اعتُبر قديماً بعتبة 6 أشهر")
	}
	m.JoinDate = now.AddDate(-1, 0, 0)
	if m.IsNewByJoinDate(now, 6) {
		t.Error("عضو انضم قبل سنة اعتُبر جديداً بعتبة 6 أشهر")
	}
	m.JoinDate = time.Time{}
	if m.IsNewByJoinDate(now, 6) {
		t.Error("تاريخ انضمام صفري اعتُبر جديداً")
	}
}
