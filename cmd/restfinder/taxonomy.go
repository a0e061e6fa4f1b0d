package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rendis/restfinder/internal/model"
)

func newTaxonomyCmd(opts *globalOptions) *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Show the cities, districts and food categories offered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, opts, true)
			if err != nil {
				return err
			}
			defer app.Close()

			tax := app.taxonomy().Load(cmd.Context())
			w := cmd.OutOrStdout()

			if outputJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(taxonomyJSON{
					Source:         tax.Source,
					Cities:         tax.Cities,
					FoodCategories: tax.FoodCategories,
				})
			}

			if tax.Source == model.SourceFallback {
				fmt.Fprintln(w, "Service unavailable, showing the built-in list.")
				fmt.Fprintln(w)
			}
			for _, city := range tax.CityNames() {
				districts := tax.Districts(city)
				fmt.Fprintf(w, "%s (%d)\n", city, len(districts))
				fmt.Fprintf(w, "  %s\n", strings.Join(districts, ", "))
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Food categories (%d)\n", len(tax.FoodCategories))
			fmt.Fprintf(w, "  %s\n", strings.Join(tax.FoodCategories, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "print JSON")
	return cmd
}

type taxonomyJSON struct {
	Source         model.TaxonomySource `json:"source"`
	Cities         map[string][]string  `json:"cities"`
	FoodCategories []string             `json:"foodTypes"`
}
