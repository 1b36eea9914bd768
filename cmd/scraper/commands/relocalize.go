package commands

import (
	"log/slog"

	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/domain"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/langfile"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/output"
	"github.com/spf13/cobra"
)

var relocalizeClasses []string

var relocalizeCmd = &cobra.Command{
	Use:   "relocalize",
	Short: "Rewrite already-written class datasets with additional language overrides.",
	RunE: func(cmd *cobra.Command, args []string) error {
		classes, err := resolveClasses(relocalizeClasses)
		if err != nil {
			return err
		}
		overrides, err := langfile.Load(langFiles)
		if err != nil {
			return err
		}

		for _, class := range classes {
			var recipes []domain.Recipe
			if err := output.ReadJSON(outDir, class, &recipes); err != nil {
				return err
			}
			for _, r := range recipes {
				overrides.Apply(r.Name)
			}
			if err := output.WriteJSON(outDir, class, recipes); err != nil {
				return err
			}
			slog.Info("Relocalized class dataset", "class", class, "recipes", len(recipes))
		}
		return nil
	},
}

func init() {
	relocalizeCmd.Flags().StringArrayVarP(&relocalizeClasses, "recipes", "r", nil,
		"Crafting class dataset to rewrite. Repeatable, or 'all' for every class.")
	rootCmd.AddCommand(relocalizeCmd)
}
