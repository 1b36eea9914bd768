// Package lodestone harvests the Lodestone crafting recipe database. Each
// crafting class is enumerated through the recipe list pages of every
// level-range and expansion category, then each recipe's detail page is
// fetched from all four language hosts and normalized into one record.
package lodestone

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/domain"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/fetch"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/langfile"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/metrics"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/progress"
)

const defaultListURL = "http://na.finalfantasyxiv.com/lodestone/playguide/db/recipe/"

// langHost pairs a language code with the Lodestone host serving it.
// Order matters: "en" must come first so tests and callers can rely on
// the English page being fetched before the rest.
type langHost struct {
	code string
	host string
}

var defaultLangHosts = []langHost{
	{"en", "na.finalfantasyxiv.com"},
	{"ja", "jp.finalfantasyxiv.com"},
	{"fr", "fr.finalfantasyxiv.com"},
	{"de", "de.finalfantasyxiv.com"},
}

// Classes lists every crafting class, in the order the list endpoint's
// category2 filter indexes them.
var Classes = []string{
	"carpenter",
	"blacksmith",
	"armorer",
	"goldsmith",
	"leatherworker",
	"weaver",
	"alchemist",
	"culinarian",
}

const maxLevel = 80

// numLevelRanges is the count of five-level list categories (1-5 through
// 76-80).
const numLevelRanges = maxLevel / 5

// numExpansionCategories is the count of c1..cN expansion categories.
const numExpansionCategories = 6

// linkCategories returns every category3 filter value to enumerate for a
// class: one per level range, then one per expansion category.
func linkCategories() []string {
	categories := make([]string, 0, numLevelRanges+numExpansionCategories)
	for i := 0; i < numLevelRanges; i++ {
		categories = append(categories, strconv.Itoa(i))
	}
	for i := 1; i <= numExpansionCategories; i++ {
		categories = append(categories, "c"+strconv.Itoa(i))
	}
	return categories
}

type Harvester struct {
	client *fetch.Client
	// listURL and hosts exist so tests can point the harvester at a
	// local server.
	listURL string
	hosts   []langHost
}

func New(client *fetch.Client) *Harvester {
	return &Harvester{client: client, listURL: defaultListURL, hosts: defaultLangHosts}
}

// ValidClass reports whether name is a known crafting class.
func ValidClass(name string) bool {
	return slices.Contains(Classes, name)
}

func classLabel(class string) string {
	if class == "" {
		return class
	}
	return strings.ToUpper(class[:1]) + class[1:]
}

// enumerateCategory pages through one list category sequentially,
// collecting recipe links until the page's show_end reaches its total.
func (h *Harvester) enumerateCategory(ctx context.Context, class, category string) ([]string, error) {
	classIndex := slices.Index(Classes, class)
	if classIndex < 0 {
		return nil, fmt.Errorf("unknown class %q", class)
	}

	var links []string
	page := 1
	for {
		target := fetch.Target{
			URL: h.listURL,
			Query: map[string]string{
				"category2": strconv.Itoa(classIndex),
				"category3": category,
				"page":      strconv.Itoa(page),
			},
		}
		p, err := fetch.Get(ctx, h.client, target, parseListPage)
		if err != nil {
			return nil, err
		}
		links = append(links, p.links...)
		if p.showEnd >= p.total {
			return links, nil
		}
		page++
	}
}

// EnumerateLinks fans the class's list categories out concurrently and
// returns every recipe detail link.
func (h *Harvester) EnumerateLinks(ctx context.Context, class string) ([]string, error) {
	categories := linkCategories()
	tasks := make([]progress.Task[[]string], len(categories))
	for i, category := range categories {
		category := category
		tasks[i] = func(ctx context.Context) ([]string, error) {
			return h.enumerateCategory(ctx, class, category)
		}
	}

	lists, err := progress.Run(ctx, fmt.Sprintf("Fetching %s links", classLabel(class)), tasks)
	if err != nil {
		return nil, err
	}
	var links []string
	for _, list := range lists {
		links = append(links, list...)
	}
	return links, nil
}

func (h *Harvester) recipeURL(host, relLink string) string {
	return "http://" + host + relLink
}

// fetchRecipe pulls one recipe's page from every language host and
// normalizes the set into a single record. The English page carries the
// stats; the others only contribute names.
func (h *Harvester) fetchRecipe(ctx context.Context, relLink string) (domain.Recipe, error) {
	pages := make(map[string]*recipePage, len(h.hosts))
	for _, lh := range h.hosts {
		target := fetch.Target{URL: h.recipeURL(lh.host, relLink), Cacheable: true}
		page, err := fetch.Get(ctx, h.client, target, parseRecipePage)
		if err != nil {
			return domain.Recipe{}, err
		}
		pages[lh.code] = page
	}
	return buildRecipe(pages)
}

// HarvestClass runs the full pipeline for one crafting class: enumerate
// links, fetch and normalize every recipe, sort, localize.
func (h *Harvester) HarvestClass(ctx context.Context, class string, overrides langfile.Tables) ([]domain.Recipe, error) {
	links, err := h.EnumerateLinks(ctx, class)
	if err != nil {
		return nil, err
	}

	tasks := make([]progress.Task[domain.Recipe], len(links))
	for i, link := range links {
		link := link
		tasks[i] = func(ctx context.Context) (domain.Recipe, error) {
			return h.fetchRecipe(ctx, link)
		}
	}
	recipes, err := progress.Run(ctx, fmt.Sprintf("Fetching %s recipes", classLabel(class)), tasks)
	if err != nil {
		return nil, err
	}

	domain.SortRecipes(recipes)
	for _, r := range recipes {
		overrides.Apply(r.Name)
	}
	metrics.RecordsHarvested.WithLabelValues(class).Add(float64(len(recipes)))
	return recipes, nil
}
