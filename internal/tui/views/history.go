package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rendis/restfinder/internal/engine/history"
	"github.com/rendis/restfinder/internal/model"
	"github.com/rendis/restfinder/internal/tui/styles"
)

type historyKeys struct {
	Up     key.Binding
	Down   key.Binding
	Edit   key.Binding
	Search key.Binding
	Clear  key.Binding
	Back   key.Binding
}

var historyKeyMap = historyKeys{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Edit:   key.NewBinding(key.WithKeys("enter")),
	Search: key.NewBinding(key.WithKeys("r")),
	Clear:  key.NewBinding(key.WithKeys("x")),
	Back:   key.NewBinding(key.WithKeys("esc", "q")),
}

// HistoryModel lists past searches, most recent first.
type HistoryModel struct {
	entries    []model.HistoryEntry
	cursor     int
	confirming bool
}

func NewHistoryModel(entries []model.HistoryEntry) HistoryModel {
	return HistoryModel{entries: entries}
}

func (m HistoryModel) Init() tea.Cmd {
	return nil
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.confirming {
		m.confirming = false
		if keyMsg.String() == "y" {
			m.entries = nil
			m.cursor = 0
			return m, func() tea.Msg { return ClearHistoryMsg{} }
		}
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, historyKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, historyKeyMap.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, historyKeyMap.Edit):
		if m.cursor < len(m.entries) {
			c := history.Replay(m.entries[m.cursor])
			return m, func() tea.Msg { return NavigateToSearch{Prefill: &c} }
		}
	case key.Matches(keyMsg, historyKeyMap.Search):
		if m.cursor < len(m.entries) {
			c := history.Replay(m.entries[m.cursor])
			return m, func() tea.Msg { return StartSearchMsg{Criteria: c} }
		}
	case key.Matches(keyMsg, historyKeyMap.Clear):
		if len(m.entries) > 0 {
			m.confirming = true
		}
	case key.Matches(keyMsg, historyKeyMap.Back):
		return m, func() tea.Msg { return NavigateToHome{} }
	}
	return m, nil
}

func (m HistoryModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Recent Searches"))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(styles.Hint.Render("No recent searches"))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("esc back"))
		return styles.Border.Render(b.String())
	}

	for i, entry := range m.entries {
		cursor := "  "
		style := styles.InactiveItem
		if i == m.cursor {
			cursor = "> "
			style = styles.ActiveItem
		}

		label := style.Render(entry.Criteria.Label())
		meta := lipgloss.NewStyle().Foreground(styles.Muted).Render(
			fmt.Sprintf("    %s results  %s", humanize.Comma(int64(entry.ResultCount)), humanize.Time(entry.Timestamp)))

		b.WriteString(fmt.Sprintf("%s%s\n%s\n", cursor, label, meta))
	}

	b.WriteString("\n")
	if m.confirming {
		b.WriteString(styles.ErrorText.Render("Clear all recent searches? y/n"))
	} else {
		b.WriteString(styles.StatusBar.Render("enter edit • r search again • x clear • esc back"))
	}

	return styles.Border.Render(b.String())
}
