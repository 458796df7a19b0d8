package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmynk/billminder/internal/alerts"
	"github.com/mmynk/billminder/pkg/billapi"
)

// Theme colors (Flexoki Dark)
var (
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	successStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)
)

var statusStyles = map[string]lipgloss.Style{
	"pending": lipgloss.NewStyle().Foreground(ColorBlue),
	"overdue": lipgloss.NewStyle().Bold(true).Foreground(ColorRed),
	"paid":    lipgloss.NewStyle().Foreground(ColorGreen),
}

var tierStyles = map[alerts.Tier]lipgloss.Style{
	alerts.TierOverdue:  lipgloss.NewStyle().Bold(true).Foreground(ColorRed),
	alerts.TierCritical: lipgloss.NewStyle().Bold(true).Foreground(ColorOrange),
	alerts.TierUrgent:   lipgloss.NewStyle().Bold(true).Foreground(ColorYellow),
	alerts.TierUpcoming: lipgloss.NewStyle().Bold(true).Foreground(ColorBlue),
}

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// RightAlign marks columns that are right-aligned, e.g. amounts.
	RightAlign map[int]bool
	// Styles optionally colors individual cells, keyed by column.
	Styles map[int]func(cell string) lipgloss.Style
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	b.WriteString(dimStyle.Render("│"))
	for i, h := range t.Headers {
		b.WriteString(headerStyle.Render(pad(h, widths[i], t.RightAlign[i])))
		if i < numCols-1 {
			b.WriteString(dimStyle.Render("│"))
		}
	}
	b.WriteString(dimStyle.Render("│"))
	b.WriteString("\n")
	rule("├", "┼", "┤")

	for _, row := range t.Rows {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			style := valueStyle
			if fn, ok := t.Styles[i]; ok {
				style = fn(cell)
			}
			b.WriteString(style.Render(pad(cell, widths[i], t.RightAlign[i])))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")
	return b.String()
}

func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap < 0 {
		gap = 0
	}
	if right {
		return " " + strings.Repeat(" ", gap) + s + " "
	}
	return " " + s + strings.Repeat(" ", gap) + " "
}

// RenderBills renders bills as a table. An empty list renders empty.
func RenderBills(title string, list []billapi.Bill, empty string) string {
	if len(list) == 0 {
		return mutedStyle.Render("  "+empty) + "\n"
	}

	rows := make([][]string, 0, len(list))
	for _, b := range list {
		provider := b.Provider
		if b.AutoPayEnabled {
			provider = strings.TrimSpace(provider + " (auto-pay)")
		}
		rows = append(rows, []string{
			b.Name,
			"$" + b.Amount,
			b.DueDate,
			b.Status,
			provider,
			b.ID,
		})
	}

	return RenderTable(Table{
		Title:      title,
		Headers:    []string{"Name", "Amount", "Due", "Status", "Provider", "ID"},
		Rows:       rows,
		RightAlign: map[int]bool{1: true},
		Styles: map[int]func(string) lipgloss.Style{
			3: func(cell string) lipgloss.Style {
				if s, ok := statusStyles[cell]; ok {
					return s
				}
				return valueStyle
			},
			5: func(string) lipgloss.Style { return dimStyle },
		},
	})
}

// RenderAlerts renders each non-empty tier under a colored heading.
func RenderAlerts(resp *billapi.GetAlertsResponse) string {
	tiers := []struct {
		tier alerts.Tier
		list []billapi.Alert
	}{
		{alerts.TierOverdue, resp.Overdue},
		{alerts.TierCritical, resp.Critical},
		{alerts.TierUrgent, resp.Urgent},
		{alerts.TierUpcoming, resp.Upcoming},
	}

	var b strings.Builder
	for _, t := range tiers {
		if len(t.list) == 0 {
			continue
		}
		b.WriteString(tierStyles[t.tier].Render(alerts.Header(t.tier)))
		b.WriteString("\n")
		for _, al := range t.list {
			b.WriteString("  ")
			b.WriteString(valueStyle.Render(al.Message))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return successStyle.Render(alerts.NoAlertsMessage) + "\n"
	}
	return b.String()
}

// RenderBill renders a one-line confirmation for a single bill.
func RenderBill(verb string, b billapi.Bill) string {
	line := fmt.Sprintf("%s %s ($%s, due %s)", verb, b.Name, b.Amount, b.DueDate)
	return successStyle.Render(line) + " " + dimStyle.Render("id "+b.ID) + "\n"
}
