package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rendis/restfinder/internal/engine/history"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, opts, true)
			if err != nil {
				return err
			}
			defer app.Close()

			w := cmd.OutOrStdout()
			entries := app.history.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(w, "No recent searches.")
				return nil
			}
			for i, e := range entries {
				fmt.Fprintf(w, "%2d. %s\n    %s results, %s\n",
					i+1, e.Criteria.Label(), humanize.Comma(int64(e.ResultCount)), humanize.Time(e.Timestamp))
			}
			return nil
		},
	}

	cmd.AddCommand(newHistoryReplayCmd(opts))
	cmd.AddCommand(newHistoryClearCmd(opts))
	return cmd
}

func newHistoryReplayCmd(opts *globalOptions) *cobra.Command {
	var (
		pages      int
		sort       sortFlag
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "replay <n>",
		Short: "Run the n-th recent search again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid entry number %q", args[0])
			}

			app, err := setup(cmd, opts, true)
			if err != nil {
				return err
			}
			defer app.Close()

			entries := app.history.Entries()
			if n < 1 || n > len(entries) {
				return fmt.Errorf("no entry %d, history has %d", n, len(entries))
			}
			criteria := history.Replay(entries[n-1])
			return runSearch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), app.controller(), criteria, pages, sort.order, outputJSON)
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to fetch")
	cmd.Flags().Var(&sort, "sort", "sort order: rating, rating-asc or reviews")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "print JSON")
	return cmd
}

func newHistoryClearCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget all recent searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, opts, true)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.history.Clear(); err != nil {
				return fmt.Errorf("clearing history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}
}
