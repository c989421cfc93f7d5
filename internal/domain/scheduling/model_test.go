package scheduling

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{StatusUpcoming, StatusInProgress, true},
		{StatusInProgress, StatusConfirmed, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusUpcoming, StatusCancelled, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusUpcoming, false},
		{StatusCancelled, StatusCompleted, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusInProgress, StatusUpcoming, false},
		{StatusUpcoming, StatusUpcoming, false},
		{StatusUpcoming, "Rescheduled", false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.allowed {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestRecomputeBalance(t *testing.T) {
	cases := []struct {
		name          string
		agreed, paid  int64
		balance       int64
		paymentStatus string
	}{
		{"unpaid", 50000, 0, 50000, PaymentUnpaid},
		{"partial", 50000, 20000, 30000, PaymentPartial},
		{"paid", 50000, 50000, 0, PaymentPaid},
		{"overpaid clamps to zero", 50000, 60000, 0, PaymentPaid},
		{"free appointment", 0, 0, 0, PaymentUnpaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := Appointment{AgreedAmount: tc.agreed, AmountPaid: tc.paid}
			a.RecomputeBalance()
			if a.BalanceDue != tc.balance {
				t.Errorf("balance: got %d, want %d", a.BalanceDue, tc.balance)
			}
			if a.PaymentStatus != tc.paymentStatus {
				t.Errorf("payment status: got %s, want %s", a.PaymentStatus, tc.paymentStatus)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	for status, open := range map[string]bool{
		StatusUpcoming:   true,
		StatusInProgress: true,
		StatusConfirmed:  false,
		StatusCompleted:  false,
		StatusCancelled:  false,
	} {
		a := Appointment{Status: status}
		if a.Open() != open {
			t.Errorf("Open() for %s: got %v, want %v", status, a.Open(), open)
		}
	}
}
