package views

import "github.com/rendis/restfinder/internal/model"

// Navigation
type NavigateToHome struct{}

type NavigateToResults struct{}

type NavigateToHistory struct{}

// NavigateToSearch opens the form, optionally filled from a past search.
type NavigateToSearch struct {
	Prefill *model.SearchCriteria
}

// Requests to the session controller

type StartSearchMsg struct {
	Criteria model.SearchCriteria
}

type LoadMoreMsg struct{}

type SetSortMsg struct {
	Order model.SortOrder
}

type AbandonMsg struct{}

type RefreshTaxonomyMsg struct{}

type ClearHistoryMsg struct{}

// SessionMsg carries the controller's answer back to the UI.
type SessionMsg struct {
	Session model.SearchSession
	Err     error
}
