package school

import "testing"

func TestPaymentStatusFor(t *testing.T) {
	tests := []struct {
		name         string
		amount, paid int
		want         string
	}{
		{name: "fully paid", amount: 500000, paid: 500000, want: PaymentPaid},
		{name: "overpaid", amount: 500000, paid: 600000, want: PaymentPaid},
		{name: "partial", amount: 500000, paid: 100000, want: PaymentPartial},
		{name: "unpaid", amount: 500000, paid: 0, want: PaymentUnpaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PaymentStatusFor(tt.amount, tt.paid); got != tt.want {
				t.Errorf("PaymentStatusFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaymentRemaining(t *testing.T) {
	tests := []struct {
		name string
		pmt  Payment
		want int
	}{
		{name: "outstanding", pmt: Payment{Amount: 500000, PaidAmount: 200000}, want: 300000},
		{name: "settled", pmt: Payment{Amount: 500000, PaidAmount: 500000}, want: 0},
		{name: "overpaid clamps to zero", pmt: Payment{Amount: 500000, PaidAmount: 700000}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pmt.Remaining(); got != tt.want {
				t.Errorf("Remaining() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthName(t *testing.T) {
	tests := []struct {
		month string
		want  string
	}{
		{month: "2026-01", want: "Yanvar 2026"},
		{month: "2026-09", want: "Sentabr 2026"},
		{month: "2025-12", want: "Dekabr 2025"},
		{month: "lol", want: "lol"},
	}
	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			if got := MonthName(tt.month); got != tt.want {
				t.Errorf("MonthName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGradeTotal(t *testing.T) {
	g := Grade{Value: 85, Bonus: 10}
	if got := g.Total(); got != 95 {
		t.Errorf("Total() = %v, want 95", got)
	}
}
