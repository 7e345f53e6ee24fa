package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"taskflow/internal/importer"
)

func newSeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Create the default categories that are missing",
		Action: func(c *cli.Context) error {
			st, err := openStack(c.Context)
			if err != nil {
				return err
			}
			defer st.Close()

			created, err := st.categories.EnsureDefaults(c.Context)
			if err != nil {
				return err
			}
			fmt.Printf("✅ %d categories created\n", created)
			return nil
		},
	}
}

func newImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Create tasks and appointments from a YAML file",
		ArgsUsage: "<file.yaml>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("YAML file is required")
			}
			f, err := os.Open(c.Args().First())
			if err != nil {
				return err
			}
			defer f.Close()

			st, err := openStack(c.Context)
			if err != nil {
				return err
			}
			defer st.Close()

			result, err := importer.Import(c.Context, st.tasks, st.appointments, f)
			fmt.Printf("📥 Imported %d tasks and %d appointments\n", result.Tasks, result.Appointments)
			return err
		},
	}
}

func newExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write all tasks and appointments as YAML",
		ArgsUsage: "<file.yaml>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("output file is required")
			}

			st, err := openStack(c.Context)
			if err != nil {
				return err
			}
			defer st.Close()

			f, err := os.Create(c.Args().First())
			if err != nil {
				return err
			}
			defer f.Close()

			result, err := importer.Export(c.Context, st.tasks, st.appointments, f)
			if err != nil {
				return err
			}
			fmt.Printf("📤 Exported %d tasks and %d appointments\n", result.Tasks, result.Appointments)
			return nil
		},
	}
}
