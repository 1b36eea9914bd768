package lodestone

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/domain"
	"github.com/PuerkitoBio/goquery"
)

var (
	embedCodeRe = regexp.MustCompile(`\[db:recipe=([0-9a-f]+)\]`)
	aspectRe    = regexp.MustCompile(`Aspect: (.+)`)
)

type listPage struct {
	links   []string
	showEnd int
	total   int
}

// parseListPage pulls the recipe links and the pagination counters out of
// one list page. A page missing either counter is treated the same as a
// network failure and refetched.
func parseListPage(body []byte) (listPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return listPage{}, err
	}

	var p listPage
	doc.Find("div[data-ldst-href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("data-ldst-href"); ok {
			p.links = append(p.links, href)
		}
	})
	if p.showEnd, err = intText(doc, "span.show_end"); err != nil {
		return listPage{}, err
	}
	if p.total, err = intText(doc, "span.total"); err != nil {
		return listPage{}, err
	}
	return p, nil
}

// recipePage is one fetched detail page. Name is validated during the
// fetch so a truncated page triggers a refetch; everything else is read
// lazily from the document by buildRecipe.
type recipePage struct {
	doc  *goquery.Document
	name string
}

func parseRecipePage(body []byte) (*recipePage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(doc.Find("h2[class*='db-view__item__text__name']").First().Text())
	if name == "" {
		return nil, fmt.Errorf("recipe page missing item name")
	}
	return &recipePage{doc: doc, name: name}, nil
}

// buildRecipe normalizes one recipe from its per-language pages. The
// English page carries all stat data.
func buildRecipe(pages map[string]*recipePage) (domain.Recipe, error) {
	en, ok := pages["en"]
	if !ok {
		return domain.Recipe{}, fmt.Errorf("missing english recipe page")
	}
	doc := en.doc

	id, err := recipeID(doc)
	if err != nil {
		return domain.Recipe{}, err
	}

	baseLevel, err := intText(doc, "span.db-view__item__text__level__num")
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("recipe %s: %w", id, err)
	}
	stars := doc.Find(".db-view__item__text__level span[class*='star']").Length()
	// Star markup only carries meaning on levels with star-adjusted
	// tiers; anywhere else it is decoration and is not recorded.
	if _, ok := levelDiff[baseLevel]; !ok {
		stars = 0
	}

	difficulty, err := craftdataValue(doc, "Difficulty")
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("recipe %s: %w", id, err)
	}
	durability, err := craftdataValue(doc, "Durability")
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("recipe %s: %w", id, err)
	}
	maxQuality, err := craftdataValue(doc, "Maximum Quality")
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("recipe %s: %w", id, err)
	}

	level, err := effectiveLevel(baseLevel, stars, difficulty)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("recipe %s: %w", id, err)
	}

	recipe := domain.Recipe{
		ID:         id,
		Name:       make(map[string]string, len(pages)),
		BaseLevel:  baseLevel,
		Level:      level,
		Difficulty: difficulty,
		Durability: durability,
		MaxQuality: maxQuality,
		Stars:      stars,
		Aspect:     aspect(doc),
	}
	for lang, page := range pages {
		recipe.Name[lang] = page.name
	}
	return recipe, nil
}

func recipeID(doc *goquery.Document) (string, error) {
	var id string
	doc.Find("div.embed_code_txt div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := embedCodeRe.FindStringSubmatch(s.Text()); m != nil {
			id = m[1]
			return false
		}
		return true
	})
	if id == "" {
		return "", fmt.Errorf("recipe id not found in embed code")
	}
	return id, nil
}

// craftdataValue reads the numeric text of the craftdata entry whose span
// label matches, e.g. <li><span>Difficulty</span>55</li>.
func craftdataValue(doc *goquery.Document, label string) (int, error) {
	var raw string
	doc.Find("ul.db-view__recipe__craftdata li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Find("span").First().Text()) == label {
			raw = strings.TrimSpace(s.Contents().Not("span").Text())
			return false
		}
		return true
	})
	if raw == "" {
		return 0, fmt.Errorf("craftdata %q not found", label)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("craftdata %q: %w", label, err)
	}
	return v, nil
}

// aspect returns the recipe's aspect characteristic, or "" when it has
// none.
func aspect(doc *goquery.Document) string {
	var found string
	doc.Find("dl.db-view__recipe__crafting_conditions").Each(func(_ int, dl *goquery.Selection) {
		hasCharacteristics := false
		dl.Find("dt").Each(func(_ int, dt *goquery.Selection) {
			if strings.TrimSpace(dt.Text()) == "Characteristics" {
				hasCharacteristics = true
			}
		})
		if !hasCharacteristics {
			return
		}
		dl.Find("dd").Each(func(_ int, dd *goquery.Selection) {
			if m := aspectRe.FindStringSubmatch(strings.TrimSpace(dd.Text())); m != nil {
				found = m[1]
			}
		})
	})
	return found
}

func intText(doc *goquery.Document, selector string) (int, error) {
	raw := strings.TrimSpace(doc.Find(selector).First().Text())
	if raw == "" {
		return 0, fmt.Errorf("no text for selector %q", selector)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("selector %q: %w", selector, err)
	}
	return v, nil
}
