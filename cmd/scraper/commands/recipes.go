package commands

import (
	"fmt"
	"log/slog"
	"os/signal"
	"slices"
	"syscall"

	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/langfile"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/lodestone"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/output"
	"github.com/spf13/cobra"
)

var (
	recipesConcurrency int
	recipeClasses      []string
)

// resolveClasses expands "all" and validates every requested class name.
func resolveClasses(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return nil, fmt.Errorf("no classes requested, use --recipes CLASS or --recipes all")
	}
	if slices.Contains(requested, "all") {
		return lodestone.Classes, nil
	}
	for _, class := range requested {
		if !lodestone.ValidClass(class) {
			return nil, fmt.Errorf("unknown class %q, valid classes: %v", class, lodestone.Classes)
		}
	}
	return requested, nil
}

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Harvest crafting recipes from the Lodestone database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		classes, err := resolveClasses(recipeClasses)
		if err != nil {
			return err
		}
		overrides, err := langfile.Load(langFiles)
		if err != nil {
			return err
		}

		rt, err := newRuntime(ctx, concurrencyFor(cmd, recipesConcurrency))
		if err != nil {
			return err
		}
		defer rt.Close()

		harvester := lodestone.New(rt.fetch)
		for _, class := range classes {
			recipes, err := harvester.HarvestClass(ctx, class, overrides)
			if err != nil {
				return err
			}
			if err := output.WriteJSON(outDir, class, recipes); err != nil {
				return err
			}
			if rt.sink != nil {
				if err := rt.sink.StoreRecipes(ctx, class, recipes); err != nil {
					return err
				}
			}
			slog.Info("Wrote class dataset", "class", class, "recipes", len(recipes))
		}
		return nil
	},
}

func init() {
	recipesCmd.Flags().IntVarP(&recipesConcurrency, "concurrency", "c", 8,
		"Max number of concurrent requests to the Lodestone servers.")
	recipesCmd.Flags().StringArrayVarP(&recipeClasses, "recipes", "r", nil,
		"Crafting class to scrape. Repeatable, or 'all' for every class.")
	rootCmd.AddCommand(recipesCmd)
}
