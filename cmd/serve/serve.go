// Package serve provides the serve command, which runs the HTTP API.
package serve

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ayushbarthwal/eatsafe/internal/app"
	"github.com/ayushbarthwal/eatsafe/internal/conf"
)

// Command creates and returns the serve command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the EatSafe HTTP API",
		Long:  "Open the database, apply migrations and serve the REST API until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func run(cmd *cobra.Command, settings *conf.Settings) error {
	ctx := cmd.Context()
	a, err := app.New(ctx, settings)
	if err != nil {
		return err
	}

	serveErr := a.Serve(ctx)
	closeErr := a.Close()
	if serveErr != nil {
		return serveErr
	}
	return closeErr
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Host, "host", viper.GetString("webserver.host"), "Listen address, empty for all interfaces")
	cmd.Flags().IntVarP(&settings.WebServer.Port, "port", "p", viper.GetInt("webserver.port"), "Listen port")
	cmd.Flags().BoolVar(&settings.Database.Seed, "seed", viper.GetBool("database.seed"), "Insert demo data into an empty database")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
