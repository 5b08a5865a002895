package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"MetricRecipes/internal/model"
	"MetricRecipes/internal/pantry"
	"MetricRecipes/internal/recipe"
)

var evalCmd = &cobra.Command{
	Use:   "eval <recipe> [date]",
	Short: "Evaluate one configured recipe for a date",
	Long: `Evaluate one configured recipe for a date key. Without a date the
key the scheduler would use right now is evaluated.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runEval,
}

var postfixCmd = &cobra.Command{
	Use:   "postfix <formula | recipe>",
	Short: "Print the evaluation order of a formula",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostfix,
}

func init() {
	rootCmd.AddCommand(evalCmd, postfixCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	def, ok := cfg.Recipe(args[0])
	if !ok {
		return fmt.Errorf("unknown recipe %q", args[0])
	}
	dateKey := cfg.DateKey(time.Now())
	if len(args) == 2 {
		dateKey = args[1]
	}

	source, closeSource, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	ingredients, err := pantry.New(source).Gather(ctx, def)
	if err != nil {
		return err
	}
	r, err := recipe.New(def.Formula, ingredients)
	if err != nil {
		return fmt.Errorf("%s: %w", def.Name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s @ %s: %s\n", def.Name, dateKey, r.ValueFor(dateKey))
	return nil
}

// runPostfix accepts either a configured recipe name or a raw formula. Every
// bracketed name in a raw formula is treated as an ingredient.
func runPostfix(cmd *cobra.Command, args []string) error {
	formula := args[0]
	var names []string
	if cfg, err := loadConfig(); err == nil {
		if def, ok := cfg.Recipe(formula); ok {
			formula, names = def.Formula, def.Ingredients
		}
	}
	if names == nil {
		_, names = recipe.Tokenize(formula, nil)
	}

	ingredients := make([]model.Ingredient, len(names))
	for i, name := range names {
		ingredients[i] = model.Ingredient{Name: name}
	}
	r, err := recipe.New(formula, ingredients)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "infix:   %s\n", recipe.FormatSteps(r.Steps()))
	fmt.Fprintf(out, "postfix: %s\n", recipe.FormatSteps(r.Postfix()))
	return nil
}
