package lodestone

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

const listPageHTML = `<html><body>
<div class="db-table__wrapper">
	<div data-ldst-href="/lodestone/playguide/db/recipe/aaa111/"></div>
	<div data-ldst-href="/lodestone/playguide/db/recipe/bbb222/"></div>
</div>
<p>Displaying <span class="show_start">1</span>-<span class="show_end">20</span> of <span class="total">43</span></p>
</body></html>`

func TestParseListPage(t *testing.T) {
	p, err := parseListPage([]byte(listPageHTML))
	require.NoError(t, err)
	require.Equal(t, []string{
		"/lodestone/playguide/db/recipe/aaa111/",
		"/lodestone/playguide/db/recipe/bbb222/",
	}, p.links)
	require.Equal(t, 20, p.showEnd)
	require.Equal(t, 43, p.total)
}

func TestParseListPageRejectsMissingCounters(t *testing.T) {
	_, err := parseListPage([]byte(`<html><body><div data-ldst-href="/x/"></div></body></html>`))
	require.Error(t, err)
}

func recipePageHTML(name string, level, stars int) string {
	starSpans := ""
	for i := 0; i < stars; i++ {
		starSpans += `<span class="ic_star"></span>`
	}
	return fmt.Sprintf(`<html><body>
<div class="recipe_detail item_detail_box">
	<h2 class="db-view__item__text__name">%s</h2>
	<div class="db-view__item__text__level">
		Lv. <span class="db-view__item__text__level__num">%d</span>%s
	</div>
</div>
<ul class="db-view__recipe__craftdata">
	<li><span>Difficulty</span>55</li>
	<li><span>Durability</span>80</li>
	<li><span>Maximum Quality</span>2646</li>
</ul>
<dl class="db-view__recipe__crafting_conditions">
	<dt>Craftsmanship Required</dt><dd>392</dd>
	<dt>Characteristics</dt><dd>Aspect: Water</dd>
</dl>
<div class="embed_code_txt"><div>[db:recipe=abc123def45]</div></div>
</body></html>`, name, level, starSpans)
}

func TestBuildRecipe(t *testing.T) {
	en, err := parseRecipePage([]byte(recipePageHTML("Water Draught", 50, 2)))
	require.NoError(t, err)
	ja, err := parseRecipePage([]byte(recipePageHTML("ウォータードラフト", 50, 2)))
	require.NoError(t, err)

	recipe, err := buildRecipe(map[string]*recipePage{"en": en, "ja": ja})
	require.NoError(t, err)

	require.Equal(t, "abc123def45", recipe.ID)
	require.Equal(t, "Water Draught", recipe.Name["en"])
	require.Equal(t, "ウォータードラフト", recipe.Name["ja"])
	require.Equal(t, 50, recipe.BaseLevel)
	require.Equal(t, 2, recipe.Stars)
	require.Equal(t, 70, recipe.Level, "level 50 with two stars adjusts to 70")
	require.Equal(t, 55, recipe.Difficulty)
	require.Equal(t, 80, recipe.Durability)
	require.Equal(t, 2646, recipe.MaxQuality)
	require.Equal(t, "Water", recipe.Aspect)
}

func TestBuildRecipeIgnoresStarsOutsideAdjustedLevels(t *testing.T) {
	en, err := parseRecipePage([]byte(recipePageHTML("Maple Lumber", 23, 2)))
	require.NoError(t, err)

	recipe, err := buildRecipe(map[string]*recipePage{"en": en})
	require.NoError(t, err)
	require.Equal(t, 0, recipe.Stars)
	require.Equal(t, 23, recipe.Level)
}

func TestParseRecipePageRejectsMissingName(t *testing.T) {
	_, err := parseRecipePage([]byte(`<html><body><p>maintenance</p></body></html>`))
	require.Error(t, err)
}

func TestEffectiveLevel(t *testing.T) {
	testCases := []struct {
		baseLevel, stars, difficulty int
		expected                     int
	}{
		{baseLevel: 23, stars: 0, difficulty: 100, expected: 23},
		{baseLevel: 50, stars: 0, difficulty: 100, expected: 50},
		{baseLevel: 50, stars: 4, difficulty: 100, expected: 110},
		{baseLevel: 51, stars: 0, difficulty: 300, expected: 120},
		// Level 51 recipes of difficulty 169 or 339 sit five levels lower.
		{baseLevel: 51, stars: 0, difficulty: 169, expected: 115},
		{baseLevel: 51, stars: 0, difficulty: 339, expected: 115},
		{baseLevel: 61, stars: 0, difficulty: 1116, expected: 255},
		{baseLevel: 61, stars: 0, difficulty: 558, expected: 255},
		// The three-star level 60 outlier.
		{baseLevel: 60, stars: 3, difficulty: 1764, expected: 220},
		{baseLevel: 60, stars: 3, difficulty: 1000, expected: 210},
		{baseLevel: 80, stars: 1, difficulty: 100, expected: 430},
	}
	for _, tc := range testCases {
		level, err := effectiveLevel(tc.baseLevel, tc.stars, tc.difficulty)
		require.NoError(t, err)
		require.Equal(t, tc.expected, level, "base %d stars %d difficulty %d", tc.baseLevel, tc.stars, tc.difficulty)
	}
}

func TestEffectiveLevelRejectsUnsupportedStars(t *testing.T) {
	_, err := effectiveLevel(51, 1, 300)
	require.Error(t, err)
	_, err = effectiveLevel(80, 2, 100)
	require.Error(t, err)
}
