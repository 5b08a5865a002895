package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"MetricRecipes/internal/pantry"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load readings from a YAML data file into the SQLite source",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ingredients, err := pantry.LoadFile(args[0])
	if err != nil {
		return err
	}
	src, err := pantry.NewSQLiteSource(sqlitePath(cfg))
	if err != nil {
		return err
	}
	defer src.Close()

	n, err := src.Import(cmd.Context(), ingredients)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d readings for %d ingredients\n", n, len(ingredients))
	return nil
}
