package review

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"Mansoor88-6/activity-agent/internal/models"
)

// Color palette
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	fgColor        = lipgloss.Color("#F9FAFB") // Light foreground
)

var (
	hourStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Width(13)

	cellStyle = lipgloss.NewStyle().
			Foreground(fgColor).
			Width(cellWidth).
			MarginRight(1)

	selectedCellStyle = lipgloss.NewStyle().
				Foreground(secondaryColor).
				Bold(true).
				Width(cellWidth).
				MarginRight(1)

	emptyCellStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(cellWidth).
			MarginRight(1)

	overlapStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	summaryStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

const cellWidth = 24

// Render writes the hour grid of the session, one row per hour and one
// cell per minute key
func Render(w io.Writer, s *Session) error {
	selection := s.Selection()
	buckets := s.Buckets()

	var b strings.Builder
	if len(buckets) == 0 {
		b.WriteString(summaryStyle.Render("No time slots in range"))
		b.WriteString("\n")
	}

	header := []string{hourStyle.Render("")}
	for _, key := range models.MinuteKeys {
		header = append(header, emptyCellStyle.Render(":"+key))
	}
	if len(buckets) > 0 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
		b.WriteString("\n")
	}

	for _, bucket := range buckets {
		row := []string{hourStyle.Render(bucket.StartTime + "-" + bucket.EndTime)}
		for _, slot := range bucket.MinuteSlots {
			row = append(row, renderCell(slot, selection))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}

	b.WriteString(summaryStyle.Render(fmt.Sprintf("%d slots, %d selected, timezone %s",
		selection.Len(), selection.SelectedCount(), s.Location())))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func renderCell(slot *models.MinuteSlot, selection *SelectionManager) string {
	if slot == nil {
		return emptyCellStyle.Render("-")
	}

	mark := "[ ]"
	style := cellStyle
	if selection.IsSelected(slot.ID) {
		mark = "[x]"
		style = selectedCellStyle
	}

	lines := []string{
		fmt.Sprintf("%s %s", mark, shortID(slot.ID)),
		fmt.Sprintf("%d shots", len(slot.Screenshots)),
	}
	if len(slot.Employees) > 1 {
		names := make([]string, 0, len(slot.Employees))
		for _, e := range slot.Employees {
			names = append(names, e.DisplayName())
		}
		lines = append(lines, overlapStyle.Render(strings.Join(names, ", ")))
	} else if len(slot.Employees) == 1 {
		lines = append(lines, slot.Employees[0].DisplayName())
	}

	return style.Render(strings.Join(lines, "\n"))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
