package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/osirenko/finch/internal/tui/viewmodel"
)

// View renders the browse screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	view := m.snapshot()

	var body string
	switch view.Status() {
	case viewmodel.StatusLoading:
		body = m.renderLoading()
	case viewmodel.StatusError:
		body = m.renderError(view.Err)
	case viewmodel.StatusReady:
		body = m.renderBody(view)
	}

	sections := []string{
		m.renderTabs(view),
		body,
		m.renderFooter(view),
	}
	if m.filtering {
		sections = append(sections, m.filterInput.View())
	} else if m.filterErr != "" {
		sections = append(sections, m.styles.Error.Render(m.filterErr))
	}
	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		sections = append(sections, m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTabs(view viewmodel.BrowseView) string {
	titles := viewmodel.TabTitles()
	active := viewmodel.TabIndex(view.Tab)

	tabs := make([]string, len(titles))
	for i, title := range titles {
		if i == active {
			tabs[i] = m.styles.TabActive.Render(title)
		} else {
			tabs[i] = m.styles.TabInactive.Render(title)
		}
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	mode := m.styles.Muted.Render(fmt.Sprintf("  grouped by %s", view.GroupMode))
	return lipgloss.JoinHorizontal(lipgloss.Top, m.styles.Title.Render("finch "), header, mode)
}

func (m Model) renderLoading() string {
	return fmt.Sprintf("\n  %s Loading transactions...\n", m.spinner.View())
}

func (m Model) renderError(msg string) string {
	return "\n  " + m.styles.Error.Render(msg) + "\n" +
		m.styles.Muted.Render("  press r to retry")
}

func (m Model) renderBody(view viewmodel.BrowseView) string {
	var b strings.Builder
	b.WriteString("\n")

	if len(view.Groups) == 0 && len(view.Transactions) == 0 {
		b.WriteString(m.styles.Muted.Render("  no transactions match the current filters"))
		b.WriteString("\n")
		return b.String()
	}

	if len(view.Groups) > 0 {
		m.renderGroups(&b, view.Groups)
	} else {
		for i, row := range view.Transactions {
			b.WriteString(m.renderTransactionRow(row, i == m.cursor, "  "))
		}
	}
	return b.String()
}

func (m Model) renderGroups(b *strings.Builder, groups []viewmodel.GroupRow) {
	for i, g := range groups {
		marker := "▸"
		if g.Expanded {
			marker = "▾"
		}
		line := fmt.Sprintf("  %s %-24s %4d  %12s", marker, g.Key, g.Count, g.Total)
		if g.CommonTags != "" {
			line += m.styles.Muted.Render("  [" + g.CommonTags + "]")
		}
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render(line))
		} else {
			b.WriteString(m.styles.Normal.Render(line))
		}
		b.WriteString("\n")

		for _, row := range g.Transactions {
			b.WriteString(m.renderTransactionRow(row, false, "      "))
		}
	}
}

func (m Model) renderTransactionRow(row viewmodel.TransactionRow, selected bool, indent string) string {
	line := fmt.Sprintf("%s%s  %-28s %12s  %s",
		indent, row.Date, truncate(row.Merchant, 28), row.Amount, row.Category)
	if row.Tags != "" {
		line += m.styles.Muted.Render("  [" + row.Tags + "]")
	}
	if selected {
		return m.styles.Selected.Render(line) + "\n"
	}
	return m.styles.Normal.Render(line) + "\n"
}

func (m Model) renderFooter(view viewmodel.BrowseView) string {
	stats := fmt.Sprintf("%d transactions · total %s · average %s",
		view.Stats.Count, view.Stats.Total, view.Stats.Average)
	if view.Stats.Spark != "" {
		stats += "  " + view.Stats.Spark
	}
	if !view.LoggedIn {
		stats += " · not logged in"
	}
	return m.styles.Footer.Render(stats)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
