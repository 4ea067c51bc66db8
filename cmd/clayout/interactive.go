package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var columnWidths = []int{28, 24, 8, 14, 6, 8}

type browserModel struct {
	entries   []entry
	profile   string
	table     table.Model
	filter    textinput.Model
	selected  int
	filtering bool
}

func newBrowserModel(entries []entry, profile string) *browserModel {
	cols := make([]table.Column, len(memberColumns))
	for i, title := range memberColumns {
		cols[i] = table.Column{Title: title, Width: columnWidths[i]}
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter members"
	ti.Width = 40

	m := &browserModel{
		entries: entries,
		profile: profile,
		table: table.New(
			table.WithColumns(cols),
			table.WithFocused(true),
			table.WithHeight(16),
		),
		filter: ti,
	}
	m.refresh()
	return m
}

// refresh loads the selected declaration's members matching the filter.
func (m *browserModel) refresh() {
	if len(m.entries) == 0 {
		m.table.SetRows(nil)
		return
	}
	query := strings.ToLower(m.filter.Value())
	res := m.entries[m.selected].res

	rows := make([]table.Row, 0, len(res.Members))
	for _, mem := range res.Members {
		if query != "" && !strings.Contains(strings.ToLower(mem.PathString()), query) {
			continue
		}
		rows = append(rows, table.Row(memberRow(mem)))
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if h := msg.Height - 8; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "tab", "right", "l":
			if len(m.entries) > 0 {
				m.selected = (m.selected + 1) % len(m.entries)
				m.refresh()
			}
			return m, nil

		case "shift+tab", "left", "h":
			if len(m.entries) > 0 {
				m.selected = (m.selected + len(m.entries) - 1) % len(m.entries)
				m.refresh()
			}
			return m, nil

		case "/":
			m.filtering = true
			m.table.Blur()
			return m, m.filter.Focus()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *browserModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.filter.SetValue("")
		fallthrough

	case "enter":
		m.filtering = false
		m.filter.Blur()
		m.table.Focus()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refresh()
	return m, cmd
}

func (m *browserModel) View() string {
	if len(m.entries) == 0 {
		return "No declarations.\n\nPress q to quit."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("C Layout"))
	b.WriteString(" ")
	b.WriteString(m.profile)
	b.WriteString("\n\n")

	tabs := make([]string, len(m.entries))
	for i, e := range m.entries {
		if i == m.selected {
			tabs[i] = activeTabStyle.Render(e.name)
		} else {
			tabs[i] = tabStyle.Render(e.name)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	res := m.entries[m.selected].res
	b.WriteString(summaryStyle.Render(fmt.Sprintf("%s: size %d, align %d, %d members",
		res.Root, res.Size, res.Align, len(res.Members))))
	b.WriteString("\n\n")

	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.filtering {
		b.WriteString(helpStyle.Render("enter apply • esc clear"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ scroll • ←/→ declaration • / filter • q quit"))
	}

	return b.String()
}

func runInteractive(entries []entry, profile string) error {
	p := tea.NewProgram(newBrowserModel(entries, profile), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
