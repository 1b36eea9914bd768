package commands

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/domain"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/langfile"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/output"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/xivdb"
	"github.com/spf13/cobra"
)

var buffsConcurrency int

var buffsCmd = &cobra.Command{
	Use:   "buffs",
	Short: "Harvest crafting consumables (Food, Medicine) from the item database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Override tables load before any network activity; a bad spec
		// aborts the run here.
		overrides, err := langfile.Load(langFiles)
		if err != nil {
			return err
		}

		rt, err := newRuntime(ctx, concurrencyFor(cmd, buffsConcurrency))
		if err != nil {
			return err
		}
		defer rt.Close()

		harvester := xivdb.New(rt.fetch)
		for _, cat := range domain.Categories {
			records, err := harvester.HarvestCategory(ctx, cat, overrides)
			if err != nil {
				return err
			}
			if err := output.WriteJSON(outDir, cat.Label, records); err != nil {
				return err
			}
			if rt.sink != nil {
				if err := rt.sink.StoreRecords(ctx, cat.Label, records); err != nil {
					return err
				}
			}
			slog.Info("Wrote category dataset", "category", cat.Label, "records", len(records))
		}
		return nil
	},
}

func init() {
	buffsCmd.Flags().IntVarP(&buffsConcurrency, "concurrency", "c", 4,
		"Max number of concurrent requests to the item database.")
	rootCmd.AddCommand(buffsCmd)
}
