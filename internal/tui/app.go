// Package tui is the interactive front end. It only renders controller
// snapshots and turns key presses into controller calls.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/rendis/restfinder/internal/engine/history"
	"github.com/rendis/restfinder/internal/engine/session"
	"github.com/rendis/restfinder/internal/engine/taxonomy"
	"github.com/rendis/restfinder/internal/model"
	"github.com/rendis/restfinder/internal/tui/views"
)

type viewID int

const (
	viewHome viewID = iota
	viewSearch
	viewResults
	viewHistory
)

// Deps are the engine components the UI drives.
type Deps struct {
	Controller *session.Controller
	History    *history.Store
	Taxonomy   *taxonomy.Loader
	Logger     zerolog.Logger
	Version    string
	APIURL     string
}

// App is the root bubbletea model.
type App struct {
	ctx         context.Context
	deps        Deps
	log         zerolog.Logger
	tax         model.Taxonomy
	currentView viewID
	width       int
	height      int
	home        views.HomeModel
	search      views.SearchModel
	results     views.ResultsModel
	history     views.HistoryModel
}

type taxonomyLoadedMsg struct {
	taxonomy model.Taxonomy
}

func NewApp(ctx context.Context, deps Deps) App {
	tax := deps.Taxonomy.Current()
	return App{
		ctx:         ctx,
		deps:        deps,
		log:         deps.Logger.With().Str("component", "tui").Logger(),
		tax:         tax,
		currentView: viewHome,
		home:        views.NewHomeModel(deps.Version, deps.APIURL),
		search:      views.NewSearchModel(tax, nil),
		results:     views.NewResultsModel(deps.Controller.Session()),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.home.Init(), a.loadTaxonomy(false))
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		var m tea.Model
		m, _ = a.results.Update(msg)
		a.results = m.(views.ResultsModel)
		return a, nil

	case taxonomyLoadedMsg:
		a.tax = msg.taxonomy
		a.home.SetTaxonomySource(msg.taxonomy.Source)
		a.search.SetTaxonomy(msg.taxonomy)
		return a, nil
	case views.RefreshTaxonomyMsg:
		return a, a.loadTaxonomy(true)

	case views.NavigateToHome:
		a.currentView = viewHome
		return a, nil
	case views.NavigateToSearch:
		a.currentView = viewSearch
		prefill := msg.Prefill
		if prefill == nil {
			if c := a.deps.Controller.Session().Criteria; c.City != "" {
				prefill = &c
			}
		}
		a.search = views.NewSearchModel(a.tax, prefill)
		return a, a.search.Init()
	case views.NavigateToResults:
		a.currentView = viewResults
		snap := a.deps.Controller.Session()
		a.results.SetSession(snap, snap.Err)
		return a, tea.Batch(a.results.Init(), a.sizeCmd())
	case views.NavigateToHistory:
		a.currentView = viewHistory
		a.history = views.NewHistoryModel(a.deps.History.Entries())
		return a, a.history.Init()

	case views.StartSearchMsg:
		a.currentView = viewResults
		cmd := a.results.Begin()
		return a, tea.Batch(cmd, a.sizeCmd(), a.startSearch(msg.Criteria))
	case views.LoadMoreMsg:
		cmd := a.results.Begin()
		return a, tea.Batch(cmd, a.loadMore())
	case views.SetSortMsg:
		snap := a.deps.Controller.SetSortOrder(msg.Order)
		a.results.SetSession(snap, snap.Err)
		return a, nil
	case views.AbandonMsg:
		snap := a.deps.Controller.Abandon()
		a.results.SetSession(snap, snap.Err)
		return a, nil
	case views.SessionMsg:
		if errors.Is(msg.Err, session.ErrStale) {
			return a, nil
		}
		a.results.SetSession(msg.Session, msg.Err)
		return a, nil
	case views.ClearHistoryMsg:
		if err := a.deps.History.Clear(); err != nil {
			a.log.Warn().Err(err).Msg("clearing history")
		}
		return a, nil
	}

	var cmd tea.Cmd
	var m tea.Model
	switch a.currentView {
	case viewHome:
		m, cmd = a.home.Update(msg)
		a.home = m.(views.HomeModel)
	case viewSearch:
		m, cmd = a.search.Update(msg)
		a.search = m.(views.SearchModel)
	case viewResults:
		m, cmd = a.results.Update(msg)
		a.results = m.(views.ResultsModel)
	case viewHistory:
		m, cmd = a.history.Update(msg)
		a.history = m.(views.HistoryModel)
	}

	return a, cmd
}

func (a App) View() string {
	var content string
	switch a.currentView {
	case viewHome:
		content = a.home.View()
	case viewSearch:
		content = a.search.View()
	case viewResults:
		content = a.results.View()
	case viewHistory:
		content = a.history.View()
	}

	return lipgloss.Place(
		a.width, a.height,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

func (a App) startSearch(c model.SearchCriteria) tea.Cmd {
	ctx, ctrl := a.ctx, a.deps.Controller
	return func() tea.Msg {
		sess, err := ctrl.StartNewSearch(ctx, c)
		return views.SessionMsg{Session: sess, Err: err}
	}
}

func (a App) loadMore() tea.Cmd {
	ctx, ctrl := a.ctx, a.deps.Controller
	return func() tea.Msg {
		sess, err := ctrl.LoadNextPage(ctx)
		return views.SessionMsg{Session: sess, Err: err}
	}
}

func (a App) loadTaxonomy(refresh bool) tea.Cmd {
	ctx, loader := a.ctx, a.deps.Taxonomy
	return func() tea.Msg {
		if refresh {
			return taxonomyLoadedMsg{taxonomy: loader.Refresh(ctx)}
		}
		return taxonomyLoadedMsg{taxonomy: loader.Load(ctx)}
	}
}

// sizeCmd sends a WindowSizeMsg so newly shown views get the current terminal size.
func (a App) sizeCmd() tea.Cmd {
	w, h := a.width, a.height
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: w, Height: h}
	}
}

// Run starts the TUI and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(NewApp(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
