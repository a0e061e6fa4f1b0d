package views

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/restfinder/internal/engine/session"
	"github.com/rendis/restfinder/internal/engine/taxonomy"
	"github.com/rendis/restfinder/internal/model"
	"github.com/rendis/restfinder/internal/tui/styles"
)

// Field indices. fieldRating and fieldSave are virtual (not textinputs).
const (
	fieldCity = iota
	fieldDistrict
	fieldFood
	fieldName
	fieldRating
	fieldSave
	fieldCount
)

const maxSuggestions = 5

type SearchModel struct {
	inputs      []textinput.Model
	focused     int
	err         string
	tax         model.Taxonomy
	ratings     []float64
	ratingIdx   int
	save        bool
	suggestions []string
	suggIdx     int
}

func NewSearchModel(tax model.Taxonomy, prefill *model.SearchCriteria) SearchModel {
	inputs := make([]textinput.Model, fieldCount)
	inputs[fieldCity] = newInput("type to search city...", 30)
	inputs[fieldDistrict] = newInput("optional: district", 30)
	inputs[fieldFood] = newInput("optional: kebapçı, pizza...", 30)
	inputs[fieldName] = newInput("optional: restaurant name", 40)
	inputs[fieldRating] = textinput.New() // placeholder, never used
	inputs[fieldSave] = textinput.New()   // placeholder, never used

	ratings := model.RatingOptions()
	m := SearchModel{
		inputs:    inputs,
		tax:       tax,
		ratings:   ratings,
		ratingIdx: slices.Index(ratings, model.DefaultMinRating),
		suggIdx:   -1,
	}

	if prefill != nil {
		m.inputs[fieldCity].SetValue(prefill.City)
		m.inputs[fieldDistrict].SetValue(prefill.District)
		m.inputs[fieldFood].SetValue(prefill.FoodCategory)
		m.inputs[fieldName].SetValue(prefill.FreeTextName)
		if i := slices.Index(ratings, prefill.MinRating); i >= 0 {
			m.ratingIdx = i
		}
		m.save = prefill.PersistResult
	}

	m.inputs[fieldCity].Focus()
	return m
}

func newInput(placeholder string, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 100
	ti.Width = width
	return ti
}

// SetTaxonomy swaps the vocabulary used for suggestions.
func (m *SearchModel) SetTaxonomy(tax model.Taxonomy) {
	m.tax = tax
	m.updateSuggestions()
}

func (m SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return NavigateToHome{} }

		case "up":
			if len(m.suggestions) > 0 && m.suggIdx > 0 {
				m.suggIdx--
				return m, nil
			}
			m.err = ""
			return m, m.focusPrev()

		case "down":
			if len(m.suggestions) > 0 && m.suggIdx < len(m.suggestions)-1 {
				m.suggIdx++
				return m, nil
			}
			m.err = ""
			return m, m.focusNext()

		case "tab":
			m.err = ""
			m.selectSuggestion()
			return m, m.focusNext()

		case "shift+tab":
			m.err = ""
			return m, m.focusPrev()

		case "enter":
			if len(m.suggestions) > 0 {
				m.selectSuggestion()
				return m, m.focusNext()
			}
			return m, m.submit()

		case "left":
			switch m.focused {
			case fieldRating:
				if m.ratingIdx > 0 {
					m.ratingIdx--
				}
				return m, nil
			case fieldSave:
				m.save = !m.save
				return m, nil
			}

		case "right":
			switch m.focused {
			case fieldRating:
				if m.ratingIdx < len(m.ratings)-1 {
					m.ratingIdx++
				}
				return m, nil
			case fieldSave:
				m.save = !m.save
				return m, nil
			}

		case " ":
			if m.focused == fieldSave {
				m.save = !m.save
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	if m.isText(m.focused) {
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
		m.updateSuggestions()
	}
	return m, cmd
}

func (m SearchModel) isText(field int) bool {
	return field >= fieldCity && field <= fieldName
}

// suggestionSource returns the vocabulary for field, or nil if it has none.
func (m SearchModel) suggestionSource(field int) []string {
	switch field {
	case fieldCity:
		return m.tax.CityNames()
	case fieldDistrict:
		return m.tax.Districts(m.resolvedCity())
	case fieldFood:
		return m.tax.FoodCategories
	}
	return nil
}

func (m *SearchModel) updateSuggestions() {
	source := m.suggestionSource(m.focused)
	if source == nil {
		m.suggestions = nil
		m.suggIdx = -1
		return
	}

	raw := m.inputs[m.focused].Value()
	matches := taxonomy.Suggest(source, raw, maxSuggestions)
	// Nothing to suggest once the value is complete.
	if len(matches) == 1 && matches[0] == strings.TrimSpace(raw) {
		matches = nil
	}
	m.suggestions = matches
	if len(matches) > 0 {
		if m.suggIdx < 0 || m.suggIdx >= len(matches) {
			m.suggIdx = 0
		}
	} else {
		m.suggIdx = -1
	}
}

func (m *SearchModel) selectSuggestion() {
	if m.suggIdx >= 0 && m.suggIdx < len(m.suggestions) && m.isText(m.focused) {
		m.inputs[m.focused].SetValue(m.suggestions[m.suggIdx])
		m.inputs[m.focused].CursorEnd()
	}
	m.suggestions = nil
	m.suggIdx = -1
}

func (m SearchModel) resolvedCity() string {
	raw := m.inputs[fieldCity].Value()
	if city, ok := taxonomy.Resolve(m.tax.CityNames(), raw); ok {
		return city
	}
	return strings.TrimSpace(raw)
}

func (m *SearchModel) focusNext() tea.Cmd {
	return m.focus((m.focused + 1) % fieldCount)
}

func (m *SearchModel) focusPrev() tea.Cmd {
	return m.focus((m.focused + fieldCount - 1) % fieldCount)
}

func (m *SearchModel) focus(field int) tea.Cmd {
	if m.isText(m.focused) {
		m.inputs[m.focused].Blur()
	}
	m.focused = field
	m.suggestions = nil
	m.suggIdx = -1
	if !m.isText(field) {
		return nil
	}
	m.inputs[field].Focus()
	return textinput.Blink
}

// Criteria builds the criteria from the form, snapping typed values onto
// the vocabulary where they match.
func (m SearchModel) Criteria() model.SearchCriteria {
	resolve := func(values []string, raw string) string {
		if v, ok := taxonomy.Resolve(values, raw); ok {
			return v
		}
		return strings.TrimSpace(raw)
	}

	city := m.resolvedCity()
	return model.SearchCriteria{
		City:          city,
		District:      resolve(m.tax.Districts(city), m.inputs[fieldDistrict].Value()),
		FoodCategory:  resolve(m.tax.FoodCategories, m.inputs[fieldFood].Value()),
		FreeTextName:  strings.TrimSpace(m.inputs[fieldName].Value()),
		MinRating:     m.ratings[m.ratingIdx],
		PersistResult: m.save,
	}
}

func (m *SearchModel) submit() tea.Cmd {
	c := m.Criteria()
	if err := session.Validate(c); err != nil {
		m.err = session.UserMessage(err)
		return nil
	}
	if !m.tax.HasCity(c.City) {
		m.err = fmt.Sprintf("Unknown city %q, type to search", c.City)
		return nil
	}
	m.err = ""
	return func() tea.Msg { return StartSearchMsg{Criteria: c} }
}

func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("New Search") + "\n\n")

	for _, f := range []struct {
		label string
		field int
	}{
		{"City:", fieldCity},
		{"District:", fieldDistrict},
		{"Food category:", fieldFood},
		{"Name:", fieldName},
	} {
		b.WriteString(m.renderField(f.label, f.field))
		if m.focused == f.field && len(m.suggestions) > 0 {
			b.WriteString(m.renderSuggestions())
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderRating())
	b.WriteString(m.renderSave())

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorText.Render("  " + m.err))
	}

	b.WriteString("\n\n")
	b.WriteString(styles.StatusBar.Render("enter search • tab next • ←→ change • esc back"))

	return styles.Border.Render(b.String())
}

func (m SearchModel) renderSuggestions() string {
	var sb strings.Builder
	for i, s := range m.suggestions {
		if i == m.suggIdx {
			sb.WriteString(styles.ActiveItem.Render("  > " + s))
		} else {
			sb.WriteString(styles.InactiveItem.Render("    " + s))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m SearchModel) renderRating() string {
	label := styles.Label.Render("Min rating:")
	inactive := lipgloss.NewStyle().Foreground(styles.Muted)

	parts := make([]string, len(m.ratings))
	for i, r := range m.ratings {
		if i == m.ratingIdx {
			parts[i] = styles.Rating.Bold(true).Render("< " + model.FormatRating(r) + " >")
		} else {
			parts[i] = inactive.Render(model.FormatRating(r))
		}
	}

	line := fmt.Sprintf("%s %s", label, strings.Join(parts, " "))
	if m.focused == fieldRating {
		line += lipgloss.NewStyle().Foreground(styles.Secondary).Render(" ←→")
	}
	return line + "\n"
}

func (m SearchModel) renderSave() string {
	label := styles.Label.Render("Save to sheet:")
	value := styles.InactiveItem.Render("[ ] no")
	if m.save {
		value = styles.ActiveItem.Render("[x] yes")
	}
	line := fmt.Sprintf("%s %s", label, value)
	if m.focused == fieldSave {
		line += lipgloss.NewStyle().Foreground(styles.Secondary).Render(" space")
	}
	return line + "\n"
}

func (m SearchModel) renderField(label string, idx int) string {
	l := styles.Label.Render(label)
	v := m.inputs[idx].View()
	return fmt.Sprintf("%s %s\n", l, v)
}
