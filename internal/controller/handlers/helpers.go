package handlers

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_ledger/internal/model"
)

// FormatHours печатает часы без лишних нулей: 2, 0.5, 1.25
func FormatHours(h float64) string {
	s := fmt.Sprintf("%.2f", h)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatBalance форматирует баланс часов студента
func FormatBalance(matricule string, b model.Balance) string {
	emoji := "✅"
	if b.HoursRemaining() <= 0 {
		emoji = "⚠️"
	}
	return fmt.Sprintf(
		"💼 Balance for %s\n\n"+
			"🛒 Purchased: %s h\n"+
			"⏱ Used: %s h\n"+
			"%s Remaining: %s h",
		matricule,
		FormatHours(float64(b.HoursPurchased)),
		FormatHours(b.HoursUsed()),
		emoji,
		FormatHours(b.HoursRemaining()),
	)
}

// FormatUpcomingSessions выводит ближайшие занятия начиная с now
func FormatUpcomingSessions(sessions []*model.Session, now time.Time, limit int) string {
	upcoming := make([]*model.Session, 0, len(sessions))
	for _, s := range sessions {
		if !s.StartsAt().Before(now) {
			upcoming = append(upcoming, s)
		}
	}
	if len(upcoming) == 0 {
		return "📅 No upcoming sessions."
	}

	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].StartsAt().Before(upcoming[j].StartsAt())
	})
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}

	var sb strings.Builder
	sb.WriteString("📅 Upcoming sessions:\n")
	for _, s := range upcoming {
		sb.WriteString(fmt.Sprintf("\n• #%d %s %s–%s", s.ID, s.Date.Format("02.01.2006"), s.StartTime, s.EndTime))
		if s.MeetingLink != "" {
			sb.WriteString("\n  🔗 " + s.MeetingLink)
		}
	}
	return sb.String()
}

// FormatNotifications выводит список непрочитанных уведомлений
func FormatNotifications(list []*model.Notification, limit int) string {
	if len(list) == 0 {
		return "🔕 No unread notifications."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔔 Unread notifications: %d\n", len(list)))
	for i, n := range list {
		if i == limit {
			sb.WriteString(fmt.Sprintf("\n…and %d more", len(list)-limit))
			break
		}
		sb.WriteString(fmt.Sprintf("\n• %s (%s)", n.Title, n.CreatedAt.Format("02.01 15:04")))
		if n.Message != "" {
			sb.WriteString("\n  " + n.Message)
		}
	}
	return sb.String()
}
