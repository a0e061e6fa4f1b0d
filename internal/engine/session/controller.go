// Package session owns the live search: it validates criteria, fetches
// pages, merges them into one sorted result set and records history.
//
// The session status is the single-flight gate. While a request is
// outstanding every other StartNewSearch or LoadNextPage is rejected with
// ErrBusy; nothing is queued. Each request carries a tag, and a response
// whose tag is no longer the one the controller waits for (see Abandon) is
// dropped with ErrStale.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rendis/restfinder/internal/engine/api"
	"github.com/rendis/restfinder/internal/engine/results"
	"github.com/rendis/restfinder/internal/model"
)

// Searcher fetches one page of results. *api.Client implements it.
type Searcher interface {
	FetchPage(ctx context.Context, criteria model.SearchCriteria, page int) (*api.Page, error)
}

// Recorder receives successful new searches. *history.Store implements it.
type Recorder interface {
	RecordSearch(criteria model.SearchCriteria, resultCount int)
}

// Archive keeps a local copy of every received page. *storage.Archive implements it.
type Archive interface {
	SaveResults(criteria model.SearchCriteria, items []model.ResultItem) (int, error)
}

// Options holds the optional collaborators of a Controller.
type Options struct {
	History Recorder
	Archive Archive
	Logger  zerolog.Logger
}

type requestTag struct {
	id       string
	criteria model.SearchCriteria
	page     int
}

type pendingRequest struct {
	tag        requestTag
	cancel     context.CancelFunc
	prevStatus model.Status
	prevErr    error
}

// Controller is safe for concurrent use. The lock is never held while a
// request is in flight.
type Controller struct {
	searcher Searcher
	history  Recorder
	archive  Archive
	log      zerolog.Logger

	mu      sync.Mutex
	sess    model.SearchSession
	pending *pendingRequest
}

func New(searcher Searcher, opts Options) *Controller {
	return &Controller{
		searcher: searcher,
		history:  opts.History,
		archive:  opts.Archive,
		log:      opts.Logger.With().Str("component", "session").Logger(),
		sess: model.SearchSession{
			SortOrder: model.RatingDesc,
			Status:    model.StatusIdle,
		},
	}
}

// Session returns a snapshot of the live session.
func (c *Controller) Session() model.SearchSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.Clone()
}

// Validate checks criteria the same way StartNewSearch does.
func Validate(criteria model.SearchCriteria) error {
	criteria = criteria.Trimmed()
	if criteria.City == "" {
		return &ValidationError{Field: "city", Message: "please select a city"}
	}
	if !criteria.HasNarrowingFilter() {
		return &ValidationError{
			Field:   "filters",
			Message: "please set at least one of district, food category or restaurant name",
		}
	}
	// Written so that NaN fails the check.
	if !(criteria.MinRating >= model.MinRatingFloor && criteria.MinRating <= model.MinRatingCeiling) {
		return &ValidationError{
			Field: "minRating",
			Message: "minimum rating must be between " + model.FormatRating(model.MinRatingFloor) +
				" and " + model.FormatRating(model.MinRatingCeiling),
		}
	}
	return nil
}

// StartNewSearch replaces the session with page 1 of criteria. The previous
// items stay visible in snapshots until page 1 arrives. On failure the
// session ends up in StatusError with no items.
func (c *Controller) StartNewSearch(ctx context.Context, criteria model.SearchCriteria) (model.SearchSession, error) {
	criteria = criteria.Trimmed()
	if err := Validate(criteria); err != nil {
		return c.Session(), err
	}

	c.mu.Lock()
	if c.sess.Status.Loading() {
		snap := c.sess.Clone()
		c.mu.Unlock()
		return snap, ErrBusy
	}
	ctx, req := c.begin(ctx, criteria, 1, model.StatusLoadingFirstPage)
	c.mu.Unlock()
	defer req.cancel()

	c.log.Debug().Str("request", req.tag.id).Str("criteria", criteria.Label()).Msg("new search")
	page, fetchErr := c.searcher.FetchPage(ctx, criteria, 1)

	c.mu.Lock()
	if !c.finish(req) {
		snap := c.sess.Clone()
		c.mu.Unlock()
		c.log.Debug().Str("request", req.tag.id).Msg("dropping stale first page")
		return snap, ErrStale
	}

	if fetchErr != nil {
		c.sess = model.SearchSession{
			Criteria:  criteria,
			Page:      1,
			SortOrder: c.sess.SortOrder,
			Status:    model.StatusError,
			Err:       fetchErr,
		}
		snap := c.sess.Clone()
		c.mu.Unlock()
		c.log.Warn().Err(fetchErr).Str("request", req.tag.id).Msg("new search failed")
		return snap, fetchErr
	}

	items := results.Sort(page.Items, c.sess.SortOrder)
	c.sess = model.SearchSession{
		Criteria:   criteria,
		Page:       1,
		Items:      items,
		TotalCount: totalCount(page, len(items)),
		HasMore:    page.HasMore,
		SortOrder:  c.sess.SortOrder,
		Status:     model.StatusIdle,
		SheetName:  page.SheetName,
	}
	snap := c.sess.Clone()
	c.mu.Unlock()

	c.log.Info().Str("request", req.tag.id).Int("items", len(items)).Int("total", snap.TotalCount).
		Bool("has_more", snap.HasMore).Msg("search completed")

	if c.history != nil {
		c.history.RecordSearch(criteria, snap.TotalCount)
	}
	c.archivePage(criteria, page.Items)
	return snap, nil
}

// LoadNextPage appends the next page to the session and re-sorts the whole
// set. On failure the existing items are kept and the error is retained in
// the session.
func (c *Controller) LoadNextPage(ctx context.Context) (model.SearchSession, error) {
	c.mu.Lock()
	if c.sess.Status.Loading() {
		snap := c.sess.Clone()
		c.mu.Unlock()
		return snap, ErrBusy
	}
	if !c.sess.HasMore || c.sess.Status == model.StatusError {
		snap := c.sess.Clone()
		c.mu.Unlock()
		return snap, ErrNoMorePages
	}
	criteria, next := c.sess.Criteria, c.sess.Page+1
	ctx, req := c.begin(ctx, criteria, next, model.StatusLoadingNextPage)
	c.mu.Unlock()
	defer req.cancel()

	c.log.Debug().Str("request", req.tag.id).Int("page", next).Msg("loading next page")
	page, fetchErr := c.searcher.FetchPage(ctx, criteria, next)

	c.mu.Lock()
	if !c.finish(req) {
		snap := c.sess.Clone()
		c.mu.Unlock()
		c.log.Debug().Str("request", req.tag.id).Msg("dropping stale page")
		return snap, ErrStale
	}

	if fetchErr != nil {
		c.sess.Status = model.StatusIdle
		c.sess.Err = fetchErr
		snap := c.sess.Clone()
		c.mu.Unlock()
		c.log.Warn().Err(fetchErr).Str("request", req.tag.id).Int("page", next).Msg("loading next page failed")
		return snap, fetchErr
	}

	merged := make([]model.ResultItem, 0, len(c.sess.Items)+len(page.Items))
	merged = append(merged, c.sess.Items...)
	merged = append(merged, page.Items...)

	c.sess.Items = results.Sort(merged, c.sess.SortOrder)
	c.sess.Page = next
	c.sess.HasMore = page.HasMore
	c.sess.TotalCount = totalCount(page, len(merged))
	c.sess.Status = model.StatusIdle
	if page.SheetName != "" {
		c.sess.SheetName = page.SheetName
	}
	snap := c.sess.Clone()
	c.mu.Unlock()

	c.log.Info().Str("request", req.tag.id).Int("page", next).Int("items", len(snap.Items)).
		Bool("has_more", snap.HasMore).Msg("page loaded")

	c.archivePage(criteria, page.Items)
	return snap, nil
}

// SetSortOrder reorders the accumulated items. It makes no request and
// leaves the pagination cursor alone.
func (c *Controller) SetSortOrder(order model.SortOrder) model.SearchSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sess.SortOrder = order
	if c.sess.Items != nil {
		c.sess.Items = results.Sort(c.sess.Items, order)
	}
	return c.sess.Clone()
}

// Abandon gives up on the outstanding request, if any. The gate reopens
// and the response, when it arrives, is discarded.
func (c *Controller) Abandon() model.SearchSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return c.sess.Clone()
	}

	c.log.Debug().Str("request", c.pending.tag.id).Msg("abandoning request")
	c.pending.cancel()
	c.sess.Status = c.pending.prevStatus
	c.sess.Err = c.pending.prevErr
	c.pending = nil
	return c.sess.Clone()
}

// begin must be called with mu held and the gate open. It closes the gate
// and registers a new outstanding request.
func (c *Controller) begin(ctx context.Context, criteria model.SearchCriteria, page int, status model.Status) (context.Context, *pendingRequest) {
	ctx, cancel := context.WithCancel(ctx)
	req := &pendingRequest{
		tag: requestTag{
			id:       uuid.NewString(),
			criteria: criteria,
			page:     page,
		},
		cancel:     cancel,
		prevStatus: c.sess.Status,
		prevErr:    c.sess.Err,
	}
	c.pending = req
	c.sess.Status = status
	c.sess.Err = nil
	return ctx, req
}

// finish must be called with mu held. It reports whether req is still the
// request the controller waits for and, if so, clears it. Requests are
// matched by identity; the tag's criteria may hold values that never
// compare equal, such as NaN.
func (c *Controller) finish(req *pendingRequest) bool {
	if c.pending != req {
		return false
	}
	c.pending = nil
	return true
}

func (c *Controller) archivePage(criteria model.SearchCriteria, items []model.ResultItem) {
	if c.archive == nil || len(items) == 0 {
		return
	}
	n, err := c.archive.SaveResults(criteria, items)
	if err != nil {
		c.log.Warn().Err(err).Msg("archiving results")
		return
	}
	c.log.Debug().Int("inserted", n).Msg("results archived")
}

// totalCount falls back to the number of items held when the service
// omits the total.
func totalCount(page *api.Page, held int) int {
	if page.TotalCount != nil {
		return *page.TotalCount
	}
	return held
}
