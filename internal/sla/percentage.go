package sla

import (
	"fmt"
	"time"

	"github.com/facilitas/chamado-service/internal/domain"
)

// PercentageRemaining converts elapsed time into the 0-100 progress value
// list and detail views render. Completed tickets always show a full bar.
func PercentageRemaining(createdAt, deadline, now time.Time, status domain.TicketStatus) int {
	if status == domain.TicketStatusCompleted {
		return 100
	}
	if now.After(deadline) {
		return 0
	}
	total := deadline.Sub(createdAt)
	if total <= 0 {
		return 0
	}
	elapsed := now.Sub(createdAt)
	pct := 100 - int(elapsed*100/total)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ExpiredLabel is what the countdown renders once the deadline passed.
const ExpiredLabel = "Expirado"

// FormatRemaining renders the time left as "DdHH:MM:SS", or ExpiredLabel
// when the deadline passed. Pure snapshot; callers re-invoke on their own
// refresh cadence.
func FormatRemaining(deadline, now time.Time) string {
	left := deadline.Sub(now)
	if left <= 0 {
		return ExpiredLabel
	}
	days := int(left / (24 * time.Hour))
	left -= time.Duration(days) * 24 * time.Hour
	hours := int(left / time.Hour)
	left -= time.Duration(hours) * time.Hour
	minutes := int(left / time.Minute)
	seconds := int(left/time.Second) % 60
	return fmt.Sprintf("%dd%02d:%02d:%02d", days, hours, minutes, seconds)
}
