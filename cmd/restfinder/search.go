package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rendis/restfinder/internal/engine/session"
	"github.com/rendis/restfinder/internal/model"
)

// sortFlag adapts model.SortOrder to pflag.Value.
type sortFlag struct {
	order model.SortOrder
}

var _ pflag.Value = (*sortFlag)(nil)

func (f *sortFlag) String() string {
	return f.order.String()
}

func (f *sortFlag) Set(s string) error {
	o, err := model.ParseSortOrder(s)
	if err != nil {
		return err
	}
	f.order = o
	return nil
}

func (f *sortFlag) Type() string {
	return "order"
}

type searchOptions struct {
	criteria   model.SearchCriteria
	pages      int
	sort       sortFlag
	outputJSON bool
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	var so searchOptions

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a search without the interactive interface",
		Example: `  restfinder search --city İstanbul --district Kadıköy
  restfinder search --city Ankara --food mantı --min-rating 4 --pages 3 --sort reviews
  restfinder search --city İzmir --name "Deniz" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, opts, true)
			if err != nil {
				return err
			}
			defer app.Close()
			return runSearch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), app.controller(), so.criteria, so.pages, so.sort.order, so.outputJSON)
		},
	}

	f := cmd.Flags()
	f.StringVar(&so.criteria.City, "city", "", "city (required)")
	f.StringVar(&so.criteria.District, "district", "", "district")
	f.StringVar(&so.criteria.FoodCategory, "food", "", "food category")
	f.StringVar(&so.criteria.FreeTextName, "name", "", "restaurant name")
	f.Float64Var(&so.criteria.MinRating, "min-rating", model.DefaultMinRating, "minimum rating, 1.0 to 5.0")
	f.BoolVar(&so.criteria.PersistResult, "save", false, "ask the service to save the results to a sheet")
	f.IntVar(&so.pages, "pages", 1, "number of pages to fetch")
	f.Var(&so.sort, "sort", "sort order: rating, rating-asc or reviews")
	f.BoolVar(&so.outputJSON, "json", false, "print JSON")

	return cmd
}

// runSearch fetches up to pages pages and prints the merged result set.
func runSearch(ctx context.Context, w, errw io.Writer, ctrl *session.Controller, c model.SearchCriteria, pages int, order model.SortOrder, outputJSON bool) error {
	ctrl.SetSortOrder(order)

	sess, err := ctrl.StartNewSearch(ctx, c)
	if err != nil {
		return errors.New(session.UserMessage(err))
	}
	for i := 1; i < pages && sess.HasMore; i++ {
		next, err := ctrl.LoadNextPage(ctx)
		if err != nil {
			// Keep what we have; the earlier pages are still valid.
			fmt.Fprintf(errw, "warning: page %d: %s\n", i+1, session.UserMessage(err))
			break
		}
		sess = next
	}

	if outputJSON {
		return printSessionJSON(w, sess)
	}
	printSession(w, sess)
	return nil
}

type sessionJSON struct {
	Criteria   model.SearchCriteria `json:"criteria"`
	Page       int                  `json:"page"`
	TotalCount int                  `json:"totalCount"`
	HasMore    bool                 `json:"hasMore"`
	Sort       string               `json:"sort"`
	SheetName  string               `json:"sheetName,omitempty"`
	Items      []model.ResultItem   `json:"items"`
}

func printSessionJSON(w io.Writer, sess model.SearchSession) error {
	items := sess.Items
	if items == nil {
		items = []model.ResultItem{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sessionJSON{
		Criteria:   sess.Criteria,
		Page:       sess.Page,
		TotalCount: sess.TotalCount,
		HasMore:    sess.HasMore,
		Sort:       sess.SortOrder.String(),
		SheetName:  sess.SheetName,
		Items:      items,
	})
}

func printSession(w io.Writer, sess model.SearchSession) {
	fmt.Fprintln(w, sess.Criteria.Label())
	if len(sess.Items) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	rows := make([][]string, len(sess.Items))
	for i, it := range sess.Items {
		rows[i] = []string{
			fmt.Sprintf("%d", i+1), it.Name, it.RatingText(), it.ReviewCountText(), it.Phone, it.Address,
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "NAME", "RATING", "REVIEWS", "PHONE", "ADDRESS").
		Rows(rows...)
	fmt.Fprintln(w, t.String())

	summary := fmt.Sprintf("%d of %d results, page %d", len(sess.Items), sess.TotalCount, sess.Page)
	if sess.HasMore {
		summary += ", more available"
	}
	fmt.Fprintln(w, summary)
	if sess.SheetName != "" {
		fmt.Fprintf(w, "Saved to sheet %s\n", sess.SheetName)
	}
}
