package main

import (
	"fmt"
	"os"

	"github.com/ayushbarthwal/eatsafe/cmd"
	"github.com/ayushbarthwal/eatsafe/internal/buildinfo"
	"github.com/ayushbarthwal/eatsafe/internal/conf"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	build := buildinfo.Current()
	settings.Version = build.GetVersion()

	rootCmd := cmd.RootCommand(settings, build)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
