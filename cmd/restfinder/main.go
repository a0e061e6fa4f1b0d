package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rendis/restfinder/internal/tui"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:   "restfinder",
		Short: "Find the best rated restaurants by city, district and food",
		Long: `restfinder searches a restaurant service by city, district, food category
and name, and shows the results ranked by rating.

Run without a subcommand to open the interactive interface.

Configuration is read from <config dir>/restfinder/config.toml, then .env and
RESTFINDER_* environment variables, then flags.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, &opts)
		},
	}

	opts.register(rootCmd)

	rootCmd.AddCommand(newSearchCmd(&opts))
	rootCmd.AddCommand(newHistoryCmd(&opts))
	rootCmd.AddCommand(newTaxonomyCmd(&opts))
	rootCmd.AddCommand(newExportCmd(&opts))
	rootCmd.AddCommand(newHealthCmd(&opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func runTUI(cmd *cobra.Command, opts *globalOptions) error {
	app, err := setup(cmd, opts, false)
	if err != nil {
		return err
	}
	defer app.Close()

	app.log.Info().Str("version", version).Str("api_url", app.cfg.APIURL).Msg("starting tui")
	return tui.Run(cmd.Context(), tui.Deps{
		Controller: app.controller(),
		History:    app.history,
		Taxonomy:   app.taxonomy(),
		Logger:     app.log,
		Version:    version,
		APIURL:     app.cfg.APIURL,
	})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "restfinder "+version)
		},
	}
}
