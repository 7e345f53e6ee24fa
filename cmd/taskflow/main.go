package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set during build with ldflags.
var Version = "dev"

func main() {
	app := &cli.App{
		Name:    "taskflow",
		Usage:   "personal tasks and appointments with reminders",
		Version: Version,
		Commands: []*cli.Command{
			newServeCommand(),
			newSeedCommand(),
			newImportCommand(),
			newExportCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
