package alerts

import "strings"

// NoAlertsMessage is the summary when no tier has any alert.
const NoAlertsMessage = "✅ No upcoming bills in the next 7 days."

var headers = map[Tier]string{
	TierOverdue:  "🔴 OVERDUE BILLS:",
	TierCritical: "⚠️ DUE TODAY:",
	TierUrgent:   "⏰ DUE TOMORROW:",
	TierUpcoming: "📅 UPCOMING (Next 7 days):",
}

// Header returns the summary heading for t.
func Header(t Tier) string {
	return headers[t]
}

// Render formats alerts as one block per non-empty tier, most urgent first.
func Render(a Alerts) string {
	if a.Len() == 0 {
		return NoAlertsMessage
	}

	var sb strings.Builder
	for _, t := range Tiers {
		list := a.Tier(t)
		if len(list) == 0 {
			continue
		}
		sb.WriteString(headers[t])
		sb.WriteString("\n")
		for _, al := range list {
			sb.WriteString("  ")
			sb.WriteString(al.Message)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
