package payments

import (
	"testing"
	"time"

	"github.com/revitalife/revitalife-shop/app/models"
)

func TestProfileStatusForSubscription(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		mapped bool
	}{
		{in: "active", want: models.ProfileStatusActive, mapped: true},
		{in: "ACTIVE", want: models.ProfileStatusActive, mapped: true},
		{in: "canceled", want: models.ProfileStatusInactive, mapped: true},
		{in: "unpaid", want: models.ProfileStatusInactive, mapped: true},
		{in: "past_due", want: models.ProfileStatusPastDue, mapped: true},
		{in: "trialing", want: "", mapped: false},
		{in: "incomplete", want: "", mapped: false},
		{in: "", want: "", mapped: false},
	}

	for _, tt := range tests {
		got, mapped := ProfileStatusForSubscription(tt.in)
		if got != tt.want || mapped != tt.mapped {
			t.Fatalf("ProfileStatusForSubscription(%q) = (%q, %v), want (%q, %v)", tt.in, got, mapped, tt.want, tt.mapped)
		}
	}
}

func TestPlanTypeFromInterval(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "year", want: models.PlanTypeYearly},
		{in: "YEAR", want: models.PlanTypeYearly},
		{in: "month", want: models.PlanTypeMonthly},
		{in: "week", want: models.PlanTypeMonthly},
		{in: "", want: models.PlanTypeMonthly},
	}

	for _, tt := range tests {
		if got := PlanTypeFromInterval(tt.in); got != tt.want {
			t.Fatalf("PlanTypeFromInterval(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIntervalFromPlanType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: models.PlanTypeYearly, want: "year"},
		{in: "YEARLY", want: "year"},
		{in: models.PlanTypeMonthly, want: "month"},
		{in: "", want: "month"},
	}

	for _, tt := range tests {
		if got := IntervalFromPlanType(tt.in); got != tt.want {
			t.Fatalf("IntervalFromPlanType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnixToTime(t *testing.T) {
	if got := UnixToTime(0); got != nil {
		t.Fatalf("UnixToTime(0) = %v, want nil", got)
	}
	if got := UnixToTime(-5); got != nil {
		t.Fatalf("UnixToTime(-5) = %v, want nil", got)
	}

	got := UnixToTime(1700000000)
	if got == nil {
		t.Fatal("UnixToTime(1700000000) = nil, want value")
	}
	if got.Unix() != 1700000000 {
		t.Fatalf("UnixToTime(1700000000).Unix() = %d", got.Unix())
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", got.Location())
	}
}

func TestComputePeriodFallback(t *testing.T) {
	created := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC).Unix()

	tests := []struct {
		interval string
		wantEnd  time.Time
	}{
		{interval: "month", wantEnd: time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)},
		{interval: "year", wantEnd: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)},
		{interval: "week", wantEnd: time.Date(2025, 3, 22, 12, 0, 0, 0, time.UTC)},
		{interval: "day", wantEnd: time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		start, end := ComputePeriodFallback(created, tt.interval)
		if start == nil || end == nil {
			t.Fatalf("ComputePeriodFallback(%q) returned nil bounds", tt.interval)
		}
		if start.Unix() != created {
			t.Fatalf("start = %v, want created timestamp", start)
		}
		if !end.Equal(tt.wantEnd) {
			t.Fatalf("end for %q = %v, want %v", tt.interval, end, tt.wantEnd)
		}
	}

	if start, end := ComputePeriodFallback(0, "month"); start != nil || end != nil {
		t.Fatal("expected nil bounds without a creation timestamp")
	}
	if start, end := ComputePeriodFallback(created, "fortnight"); start != nil || end != nil {
		t.Fatal("expected nil bounds for an unknown interval")
	}
}
