// Package migrate provides the migrate command, which creates or updates the
// database schema without starting the server.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayushbarthwal/eatsafe/internal/app"
	"github.com/ayushbarthwal/eatsafe/internal/conf"
)

// Command creates and returns the migrate command
func Command(settings *conf.Settings) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("seed") {
				settings.Database.Seed = seed
			}
			a, err := app.New(cmd.Context(), settings)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date (%s %s)\n", a.Store.Type(), a.Store.Path()); err != nil {
				_ = a.Close()
				return err
			}
			return a.Close()
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "Insert demo data into an empty database")
	return cmd
}
