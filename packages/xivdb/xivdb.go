// Package xivdb harvests crafting consumables from the xivdb search API.
// Listing pages are walked sequentially per category (the page count is
// only known from the previous response); item detail pages fan out
// concurrently under the shared limiter.
package xivdb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/domain"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/fetch"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/langfile"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/metrics"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/progress"
)

const defaultSearchURL = "http://api.xivdb.com/search"

// attributeFilter selects items carrying at least one of the crafting
// stats (control, craftsmanship, CP).
const attributeFilter = "71|gt|1|0,70|gt|1|0,11|gt|1|0"

type Harvester struct {
	client *fetch.Client
	// searchURL exists so tests can point the harvester at a local server.
	searchURL string
}

func New(client *fetch.Client) *Harvester {
	return &Harvester{client: client, searchURL: defaultSearchURL}
}

// EnumerateURLs walks a category's listing pages in order and returns
// every item detail URL. The loop stops once the just-fetched page number
// reaches the total the API reported on that same page.
func (h *Harvester) EnumerateURLs(ctx context.Context, cat domain.Category) ([]string, error) {
	var urls []string
	page := int64(1)
	for {
		target := fetch.Target{
			URL: h.searchURL,
			Query: map[string]string{
				"attributes":          attributeFilter,
				"item_ui_category|et": strconv.Itoa(cat.FilterID),
				"attributes_andor":    "or",
				"one":                 "items",
				"page":                strconv.FormatInt(page, 10),
			},
		}
		p, err := fetch.Get(ctx, h.client, target, parseListPage)
		if err != nil {
			return nil, err
		}
		urls = append(urls, p.urls...)
		if page >= p.totalPages {
			return urls, nil
		}
		page++
	}
}

// Harvest fans out one detail fetch per URL and returns the flattened
// (nq, hq) record pairs in completion order. Ordering is restored by
// Finalize, never assumed here.
func (h *Harvester) Harvest(ctx context.Context, cat domain.Category, urls []string) ([]domain.Record, error) {
	tasks := make([]progress.Task[[2]domain.Record], len(urls))
	for i, u := range urls {
		target := fetch.Target{URL: u, Cacheable: true}
		tasks[i] = func(ctx context.Context) ([2]domain.Record, error) {
			return fetch.Get(ctx, h.client, target, parseItemPair)
		}
	}

	pairs, err := progress.Run(ctx, fmt.Sprintf("Fetching %s", cat.Label), tasks)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(pairs)*2)
	for _, pair := range pairs {
		records = append(records, pair[0], pair[1])
	}
	metrics.RecordsHarvested.WithLabelValues(cat.Label).Add(float64(len(records)))
	return records, nil
}

// HarvestCategory runs the full pipeline for one category: enumerate,
// harvest, sort, localize. The result is ready for persistence.
func (h *Harvester) HarvestCategory(ctx context.Context, cat domain.Category, overrides langfile.Tables) ([]domain.Record, error) {
	enumerate := []progress.Task[[]string]{
		func(ctx context.Context) ([]string, error) {
			return h.EnumerateURLs(ctx, cat)
		},
	}
	urlLists, err := progress.Run(ctx, fmt.Sprintf("Fetching %s URLs", cat.Label), enumerate)
	if err != nil {
		return nil, err
	}
	var urls []string
	for _, list := range urlLists {
		urls = append(urls, list...)
	}

	records, err := h.Harvest(ctx, cat, urls)
	if err != nil {
		return nil, err
	}
	Finalize(records, overrides)
	return records, nil
}

// Finalize sorts a harvested record list into its canonical order and
// merges the language overrides in place.
func Finalize(records []domain.Record, overrides langfile.Tables) {
	domain.SortRecords(records)
	for _, r := range records {
		overrides.Apply(r.Name)
	}
}
