package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Stocks"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		pickerBox.Render(m.pickerView()),
		" ",
		quoteBox.Render(m.quoteView()),
	))
	b.WriteString("\n")
	if m.alert != "" {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render(" Warning "))
		b.WriteString(" " + m.alert + "  ")
		b.WriteString(cursorStyle.Render("[r] Try again"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter refresh • r retry • q quit"))
	b.WriteString("\n")
	return b.String()
}

// visibleRows returns the [from, to) window of picker rows around the cursor.
func visibleRows(cursor, n int) (int, int) {
	if n <= maxVisibleRows {
		return 0, n
	}
	from := cursor - maxVisibleRows/2
	if from < 0 {
		from = 0
	}
	if from+maxVisibleRows > n {
		from = n - maxVisibleRows
	}
	return from, from + maxVisibleRows
}

func (m *Model) pickerView() string {
	names := m.dir.Names()
	if len(names) == 0 {
		return dimStyle.Render("no companies yet")
	}
	from, to := visibleRows(m.cursor, len(names))
	lines := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		if i == m.cursor {
			lines = append(lines, cursorStyle.Render("> "+names[i]))
			continue
		}
		lines = append(lines, "  "+names[i])
	}
	return strings.Join(lines, "\n")
}

func (m *Model) quoteView() string {
	s := m.state
	row := func(label, value string) string {
		return labelStyle.Render(label) + value
	}
	lines := []string{
		row("Company", s.CompanyName),
		row("Symbol", s.Symbol),
		row("Price", priceStyle.Render(s.Price)),
		row("Change", changeStyle(s.Direction).Render(s.PriceChange)),
		row("Logo", logoSummary(s)),
	}
	if m.loading {
		lines = append(lines, m.spinner.View()+dimStyle.Render(" loading"))
	}
	return strings.Join(lines, "\n")
}

func logoSummary(s DisplayState) string {
	if s.Logo == nil {
		return placeholder
	}
	return fmt.Sprintf("%s, %s", s.Logo.ContentType, humanize.Bytes(uint64(len(s.Logo.Data))))
}
