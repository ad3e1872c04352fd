package utils

import (
	"fmt"
	"time"
)

// RoundToMinute truncates a timestamp to the minute boundary so reminder
// times stay aligned with the minute-cadence poll cycle.
func RoundToMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04:05")
}

// RemainingTimeText renders the countdown from now to the user's resolved
// reminder time. Once the reminder has passed it resolves to "Reminder",
// and once the due time itself has passed to "Overdue".
func RemainingTimeText(now, reminder, due time.Time) string {
	if now.After(due) {
		return "Overdue"
	}
	if now.After(reminder) || now.Equal(reminder) {
		return "Reminder"
	}

	diff := reminder.Sub(now)
	days := int(diff.Hours()) / 24
	hours := int(diff.Hours()) % 24
	minutes := int(diff.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh remaining", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm remaining", hours, minutes)
	}
	return fmt.Sprintf("%dm remaining", minutes)
}

// PostponeText is the human-readable duration used in postpone activity
// events: "1 hour", "24 hours", "N minutes", or the literal custom target.
func PostponeText(minutes int, custom *time.Time) string {
	switch {
	case custom != nil:
		return FormatDateTime(*custom)
	case minutes == 60:
		return "1 hour"
	case minutes == 1440:
		return "24 hours"
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}
