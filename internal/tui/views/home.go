package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/restfinder/internal/model"
	"github.com/rendis/restfinder/internal/tui/styles"
)

type menuItem struct {
	key   string
	label string
	desc  string
	msg   tea.Msg
}

type HomeModel struct {
	items    []menuItem
	cursor   int
	version  string
	apiURL   string
	taxonomy model.TaxonomySource
}

func NewHomeModel(version, apiURL string) HomeModel {
	return HomeModel{
		version: version,
		apiURL:  apiURL,
		items: []menuItem{
			{key: "n", label: "New Search", desc: "Find restaurants by city and filters", msg: NavigateToSearch{}},
			{key: "v", label: "Results", desc: "Back to the current results", msg: NavigateToResults{}},
			{key: "h", label: "Recent Searches", desc: "Replay one of the last searches", msg: NavigateToHistory{}},
			{key: "t", label: "Reload Cities", desc: "Fetch cities and food types again", msg: RefreshTaxonomyMsg{}},
			{key: "q", label: "Quit", desc: "Exit restfinder"},
		},
	}
}

// SetTaxonomySource shows where the city list came from.
func (m *HomeModel) SetTaxonomySource(src model.TaxonomySource) {
	m.taxonomy = src
}

func (m HomeModel) Init() tea.Cmd {
	return nil
}

func (m HomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			return m, m.handleSelect()
		default:
			for i, item := range m.items {
				if msg.String() == item.key {
					m.cursor = i
					return m, m.handleSelect()
				}
			}
		}
	}
	return m, nil
}

func (m HomeModel) handleSelect() tea.Cmd {
	item := m.items[m.cursor]
	if item.msg == nil {
		return tea.Quit
	}
	return func() tea.Msg { return item.msg }
}

func (m HomeModel) View() string {
	var b strings.Builder

	logo := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Render("  restfinder")

	version := lipgloss.NewStyle().
		Foreground(styles.Muted).
		Render(" " + m.version)

	tagline := lipgloss.NewStyle().
		Foreground(styles.Secondary).
		Italic(true).
		Render("  Best rated restaurants near you")

	b.WriteString(logo + version + "\n")
	b.WriteString(tagline + "\n\n")

	for i, item := range m.items {
		cursor := "  "
		style := styles.InactiveItem
		if i == m.cursor {
			cursor = "> "
			style = styles.ActiveItem
		}

		key := styles.Key.Render(fmt.Sprintf("[%s]", item.key))
		label := style.Render(item.label)
		desc := lipgloss.NewStyle().
			Foreground(styles.Muted).
			Render(" - " + item.desc)

		b.WriteString(fmt.Sprintf("%s%s %s%s\n", cursor, key, label, desc))
	}

	b.WriteString("\n")
	info := "service " + m.apiURL
	switch m.taxonomy {
	case model.SourceFallback:
		info += " • built-in city list"
	case model.SourceRemote:
		info += " • city list from service"
	}
	b.WriteString(styles.Hint.Render(info))
	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render("↑↓ navigate • enter select • q quit"))

	return styles.Border.Render(b.String())
}
