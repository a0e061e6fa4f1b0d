package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the search service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, opts, true)
			if err != nil {
				return err
			}
			defer app.Close()

			h, err := app.client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("service at %s is unreachable: %w", app.cfg.APIURL, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", app.cfg.APIURL, h.Status, h.Message)
			return nil
		},
	}
}
