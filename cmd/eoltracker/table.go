package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
	"github.com/MrSnakeDoc/eoltracker/internal/view"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	urgencyColors = map[domain.Urgency]lipgloss.Color{
		domain.UrgencyCritical: lipgloss.Color("196"),
		domain.UrgencyHigh:     lipgloss.Color("208"),
		domain.UrgencyMedium:   lipgloss.Color("220"),
		domain.UrgencyLow:      lipgloss.Color("42"),
	}
)

// table lays out rows with columns padded to the widest cell.
type table struct {
	headers []string
	rows    [][]string
	urgency []domain.Urgency // per row, colors the status column
	status  int              // index of the status column
}

func (t *table) add(u domain.Urgency, cells ...string) {
	t.rows = append(t.rows, cells)
	t.urgency = append(t.urgency, u)
}

func (t *table) render() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}
	// lipgloss counts padding inside Width.
	total := len(widths) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	sep := mutedStyle.Render("|")
	var sb strings.Builder

	for i, h := range t.headers {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(headerStyle.Width(widths[i]).Render(h))
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for r, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if i > 0 {
				sb.WriteString(sep)
			}
			style := cellStyle
			if i == t.status {
				style = style.Foreground(urgencyColors[t.urgency[r]])
			}
			sb.WriteString(style.Width(widths[i]).Render(cell))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderFrame prints a results frame as a table or as card blocks, and
// any other frame as its message.
func renderFrame(f view.Frame) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(f.CountLabel))
	if f.LastUpdated != "" {
		sb.WriteString("  " + mutedStyle.Render(f.LastUpdated))
	}
	sb.WriteString("\n\n")

	switch {
	case f.State != view.PlaceholderResults:
		sb.WriteString(f.Message + "\n")
	case f.Filter.View == view.ModeTable:
		sb.WriteString(rowsTable(f.Rows).render())
	default:
		for _, c := range f.Cards {
			sb.WriteString(cardBlock(c))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func rowsTable(rows []view.Row) *table {
	t := &table{
		headers: []string{"VENDOR", "SERVICE", "CATEGORY", "EOL", "STATUS"},
		status:  4,
	}
	for _, r := range rows {
		category := r.CategoryName
		if r.CategoryIcon != "" {
			category = r.CategoryIcon + " " + category
		}
		t.add(r.Urgency, r.Vendor, r.ServiceName, category, r.EOLDate, r.StatusLabel)
	}
	return t
}

func cardBlock(c view.Card) string {
	status := lipgloss.NewStyle().Bold(true).Foreground(urgencyColors[c.Urgency]).Render(c.StatusLabel)
	name := lipgloss.NewStyle().Bold(true).Render(c.ServiceName)

	var sb strings.Builder
	sb.WriteString(name + "  " + mutedStyle.Render(c.Vendor) + "  " + status + "\n")
	sb.WriteString(strings.TrimSpace(c.CategoryIcon+" "+c.CategoryName) + " | " + c.EOLDate + " | " + c.TimeUntilEOL + "\n")
	if c.Description != "" {
		sb.WriteString(c.Description + "\n")
	}
	for _, alt := range c.Alternatives {
		sb.WriteString(mutedStyle.Render("  -> "+alt.ServiceName) + "\n")
	}
	if c.OfficialURL != "" {
		sb.WriteString(mutedStyle.Render(c.OfficialURL) + "\n")
	}
	return sb.String()
}
