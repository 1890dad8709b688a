package payments

import (
	"strings"
	"time"

	"github.com/revitalife/revitalife-shop/app/models"
)

// ProfileStatusForSubscription maps a processor subscription status onto
// the coarser profile projection. The second return is false when the
// profile status should be left unchanged.
func ProfileStatusForSubscription(status string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.SubscriptionStatusActive:
		return models.ProfileStatusActive, true
	case models.SubscriptionStatusCanceled, models.SubscriptionStatusUnpaid:
		return models.ProfileStatusInactive, true
	case models.SubscriptionStatusPastDue:
		return models.ProfileStatusPastDue, true
	default:
		return "", false
	}
}

// PlanTypeFromInterval maps a processor billing interval to the local
// plan type, defaulting to monthly.
func PlanTypeFromInterval(interval string) string {
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case "year":
		return models.PlanTypeYearly
	default:
		return models.PlanTypeMonthly
	}
}

// IntervalFromPlanType is the inverse of PlanTypeFromInterval, used when
// serving subscription details from a locally synced row.
func IntervalFromPlanType(planType string) string {
	if strings.ToLower(strings.TrimSpace(planType)) == models.PlanTypeYearly {
		return "year"
	}
	return "month"
}

// UnixToTime converts processor Unix-second timestamps to calendar time.
// Non-positive values come back nil rather than failing the operation.
func UnixToTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

// ComputePeriodFallback derives a billing period from the subscription
// creation timestamp and its interval, for subscriptions where the
// processor omitted the period bounds.
func ComputePeriodFallback(created int64, interval string) (*time.Time, *time.Time) {
	if created <= 0 || interval == "" {
		return nil, nil
	}
	start := time.Unix(created, 0).UTC()
	var end time.Time
	switch strings.ToLower(interval) {
	case "month":
		end = start.AddDate(0, 1, 0)
	case "year":
		end = start.AddDate(1, 0, 0)
	case "week":
		end = start.AddDate(0, 0, 7)
	case "day":
		end = start.AddDate(0, 0, 1)
	default:
		return nil, nil
	}
	return &start, &end
}
