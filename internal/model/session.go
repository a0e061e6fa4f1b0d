package model

// Status is the single-flight gate of a search session.
type Status int

const (
	StatusIdle Status = iota
	StatusLoadingFirstPage
	StatusLoadingNextPage
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoadingFirstPage:
		return "loading"
	case StatusLoadingNextPage:
		return "loading-more"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Loading reports whether a request is outstanding.
func (s Status) Loading() bool {
	return s == StatusLoadingFirstPage || s == StatusLoadingNextPage
}

// SearchSession is the state of the live search.
type SearchSession struct {
	Criteria   SearchCriteria
	Page       int
	Items      []ResultItem
	TotalCount int
	HasMore    bool
	SortOrder  SortOrder
	Status     Status

	// SheetName is set when the service persisted the results remotely.
	SheetName string
	// Err is the last error, kept for display until the next request starts.
	Err error
}

// Clone returns a copy that shares no item storage with s.
func (s SearchSession) Clone() SearchSession {
	if s.Items != nil {
		items := make([]ResultItem, len(s.Items))
		copy(items, s.Items)
		s.Items = items
	}
	return s
}
