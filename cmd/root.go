// Package cmd defines the eatsafe command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ayushbarthwal/eatsafe/cmd/backup"
	"github.com/ayushbarthwal/eatsafe/cmd/migrate"
	"github.com/ayushbarthwal/eatsafe/cmd/predict"
	"github.com/ayushbarthwal/eatsafe/cmd/serve"
	"github.com/ayushbarthwal/eatsafe/internal/buildinfo"
	"github.com/ayushbarthwal/eatsafe/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings, build buildinfo.BuildInfo) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "eatsafe",
		Short:         "EatSafe food safety backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(
		serve.Command(settings),
		backup.Command(settings),
		predict.Command(settings),
		migrate.Command(settings),
		versionCommand(build),
	)

	return rootCmd
}

func versionCommand(build buildinfo.BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "eatsafe %s (commit %s, built %s)\n",
				build.GetVersion(), build.GetCommit(), build.GetBuildDate())
			return err
		},
	}
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Database.Type, "dbtype", viper.GetString("database.type"), "Database backend (sqlite, mysql, postgres)")
	rootCmd.PersistentFlags().StringVar(&settings.Database.SQLite.Path, "dbpath", viper.GetString("database.sqlite.path"), "Path to the SQLite database file")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
