package views

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/rendis/restfinder/internal/engine/session"
	"github.com/rendis/restfinder/internal/engine/taxonomy"
	"github.com/rendis/restfinder/internal/model"
	"github.com/rendis/restfinder/internal/tui/styles"
)

type focusArea int

const (
	focusTable focusArea = iota
	focusFilter
)

// ResultsModel renders snapshots of the search session. It never mutates
// the session itself; every change is requested from the controller.
type ResultsModel struct {
	sess     model.SearchSession
	pending  bool
	filtered []model.ResultItem
	table    table.Model
	filter   textinput.Model
	spinner  spinner.Model
	focus    focusArea
	width    int
	height   int
	notice   string
	err      error
}

// copyToClipboard is swapped in tests.
var copyToClipboard = clipboard.WriteAll

func NewResultsModel(sess model.SearchSession) ResultsModel {
	filter := textinput.New()
	filter.Placeholder = "Type to filter..."
	filter.CharLimit = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	m := ResultsModel{
		filter:  filter,
		spinner: sp,
	}
	m.SetSession(sess, sess.Err)
	return m
}

func (m ResultsModel) Init() tea.Cmd {
	if m.loading() {
		return m.spinner.Tick
	}
	return nil
}

// Begin marks a request as dispatched so the spinner shows before the
// controller answers.
func (m *ResultsModel) Begin() tea.Cmd {
	m.pending = true
	m.notice = ""
	m.err = nil
	return m.spinner.Tick
}

// SetSession replaces the displayed snapshot.
func (m *ResultsModel) SetSession(sess model.SearchSession, err error) {
	m.pending = false
	m.sess = sess
	m.err = err
	m.applyFilter()
}

func (m ResultsModel) loading() bool {
	return m.pending || m.sess.Status.Loading()
}

func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		key := msg.String()

		switch m.focus {
		case focusTable:
			switch key {
			case "esc":
				if m.loading() {
					m.pending = false
					return m, func() tea.Msg { return AbandonMsg{} }
				}
				return m, func() tea.Msg { return NavigateToHome{} }
			case "q":
				return m, func() tea.Msg { return NavigateToHome{} }
			case "/", "tab":
				m.focus = focusFilter
				m.filter.Focus()
				return m, textinput.Blink
			case "s":
				next := nextSortOrder(m.sess.SortOrder)
				return m, func() tea.Msg { return SetSortMsg{Order: next} }
			case "m", "L":
				if m.loading() {
					m.notice = session.UserMessage(session.ErrBusy)
					return m, nil
				}
				if !m.sess.HasMore {
					m.notice = session.UserMessage(session.ErrNoMorePages)
					return m, nil
				}
				return m, func() tea.Msg { return LoadMoreMsg{} }
			case "n":
				c := m.sess.Criteria
				return m, func() tea.Msg { return NavigateToSearch{Prefill: &c} }
			case "c":
				m.copySelected()
				return m, nil
			}

		case focusFilter:
			switch key {
			case "esc", "enter", "tab":
				m.focus = focusTable
				m.filter.Blur()
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusTable:
		m.table, cmd = m.table.Update(msg)
	case focusFilter:
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
	}
	return m, cmd
}

func nextSortOrder(o model.SortOrder) model.SortOrder {
	orders := model.SortOrders()
	for i, cur := range orders {
		if cur == o {
			return orders[(i+1)%len(orders)]
		}
	}
	return model.RatingDesc
}

func (m ResultsModel) selected() (model.ResultItem, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.filtered) {
		return model.ResultItem{}, false
	}
	return m.filtered[i], true
}

func (m *ResultsModel) copySelected() {
	it, ok := m.selected()
	if !ok || it.MapURL == "" {
		m.notice = "Nothing to copy"
		return
	}
	if err := copyToClipboard(it.MapURL); err != nil {
		m.notice = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.notice = "Map link copied to clipboard"
}

// applyFilter narrows the visible rows; the session order is kept.
func (m *ResultsModel) applyFilter() {
	words := strings.Fields(taxonomy.Fold(m.filter.Value()))
	if len(words) == 0 {
		m.filtered = m.sess.Items
	} else {
		m.filtered = nil
		for _, it := range m.sess.Items {
			haystack := taxonomy.Fold(it.Name + " " + it.Address + " " + it.Phone)
			match := true
			for _, w := range words {
				if !strings.Contains(haystack, w) {
					match = false
					break
				}
			}
			if match {
				m.filtered = append(m.filtered, it)
			}
		}
	}
	cursor := m.table.Cursor()
	m.buildTable(m.filtered)
	if cursor > 0 && cursor < len(m.filtered) {
		m.table.SetCursor(cursor)
	}
}

func (m *ResultsModel) buildTable(items []model.ResultItem) {
	numW := 4
	nameW := 30
	ratingW := 6
	reviewsW := 8
	phoneW := 16
	addrW := 30
	if m.width > 110 {
		extra := m.width - 110
		nameW += extra * 4 / 10
		addrW += extra * 6 / 10
	}

	columns := []table.Column{
		{Title: "#", Width: numW},
		{Title: "Name", Width: nameW},
		{Title: "Rating", Width: ratingW},
		{Title: "Reviews", Width: reviewsW},
		{Title: "Phone", Width: phoneW},
		{Title: "Address", Width: addrW},
	}

	rows := make([]table.Row, len(items))
	for i, it := range items {
		rows[i] = table.Row{
			strconv.Itoa(i + 1),
			truncate(it.Name, nameW),
			it.RatingText(),
			it.ReviewCountText(),
			truncate(it.Phone, phoneW),
			truncate(it.Address, addrW),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)
	t.SetStyles(tableStyles())
	m.table = t
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Secondary)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Primary).
		Bold(true)
	return s
}

func (m ResultsModel) tableHeight() int {
	h := m.height - 18
	if h < 5 {
		h = 5
	}
	return h
}

func (m *ResultsModel) updateLayout() {
	if m.width <= 0 {
		return
	}
	m.buildTable(m.filtered)
}

func (m ResultsModel) View() string {
	var b strings.Builder

	title := "Results"
	if m.sess.Criteria.City != "" {
		title += ": " + m.sess.Criteria.Label()
	}
	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(m.viewSummary())
	b.WriteString("\n\n")

	filterStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	if m.focus == focusFilter {
		filterStyle = lipgloss.NewStyle().Foreground(styles.Primary)
	}
	b.WriteString(filterStyle.Render("Filter: "))
	b.WriteString(m.filter.View())
	b.WriteString("\n")

	if len(m.sess.Items) == 0 && !m.loading() && m.sess.Status != model.StatusError {
		b.WriteString(styles.Hint.Render("No results yet. Press n to search."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n\n")
		b.WriteString(m.viewDetail())
		b.WriteString("\n")
	}

	if msg := m.errorText(); msg != "" {
		b.WriteString(styles.ErrorText.Render(msg))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(styles.SuccessText.Render(m.notice))
		b.WriteString("\n")
	}

	var status string
	switch {
	case m.focus == focusFilter:
		status = "type to filter • esc back"
	case m.loading():
		status = "esc abandon • s sort"
	default:
		status = "↑↓ navigate • s sort • m load more • / filter • c copy link • n edit search • esc back"
	}
	b.WriteString(styles.StatusBar.Render(status))

	return b.String()
}

func (m ResultsModel) errorText() string {
	if m.err == nil || errors.Is(m.err, session.ErrStale) {
		return ""
	}
	return session.UserMessage(m.err)
}

func (m ResultsModel) viewSummary() string {
	muted := lipgloss.NewStyle().Foreground(styles.Muted)

	var parts []string
	if len(m.sess.Items) > 0 || m.sess.TotalCount > 0 {
		parts = append(parts, fmt.Sprintf("%d of %d", len(m.sess.Items), m.sess.TotalCount))
	}
	if m.sess.Page > 0 {
		parts = append(parts, fmt.Sprintf("page %d", m.sess.Page))
	}
	parts = append(parts, "sort: "+sortLabel(m.sess.SortOrder))
	if len(m.filtered) != len(m.sess.Items) {
		parts = append(parts, fmt.Sprintf("showing %d", len(m.filtered)))
	}
	line := muted.Render(strings.Join(parts, " • "))

	if m.sess.HasMore && !m.loading() {
		line += lipgloss.NewStyle().Foreground(styles.Secondary).Render("  more available")
	}
	if m.sess.SheetName != "" {
		line += styles.SuccessText.Render("  saved to sheet " + m.sess.SheetName)
	}
	if m.loading() {
		what := "searching"
		if m.sess.Status == model.StatusLoadingNextPage {
			what = "loading more"
		}
		line += "  " + m.spinner.View() + " " + muted.Render(what+"...")
	}
	return line
}

func sortLabel(o model.SortOrder) string {
	switch o {
	case model.RatingAsc:
		return "rating ↑"
	case model.ReviewCountDesc:
		return "reviews ↓"
	}
	return "rating ↓"
}

func (m ResultsModel) viewDetail() string {
	it, ok := m.selected()
	if !ok {
		return ""
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(styles.Text).Render(it.Name))

	if it.Rating != nil {
		r := "★ " + it.RatingText()
		if it.ReviewCount != nil {
			r += fmt.Sprintf(" (%s reviews)", it.ReviewCountText())
		}
		lines = append(lines, styles.Rating.Render(r))
	}

	label := lipgloss.NewStyle().Foreground(styles.Muted)
	addRow := func(name, value string, style lipgloss.Style) {
		if value != "" {
			lines = append(lines, label.Render(fmt.Sprintf("%-9s ", name))+style.Render(value))
		}
	}
	addRow("Address:", it.Address, styles.Value)
	addRow("Phone:", it.Phone, styles.Value)
	addRow("Maps:", it.MapURL, styles.Link)

	w := m.width - 4
	if w < 40 {
		w = 40
	}
	return styles.Panel.Width(w).Render(strings.Join(lines, "\n"))
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	return ansi.Truncate(s, max, "…")
}
