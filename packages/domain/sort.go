package domain

import (
	"cmp"
	"slices"
)

func boolKey(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SortRecords orders records descending by (ilvl, English name, hq). The
// key is a strict total order over a category's records, so the output is
// stable no matter what order the detail fetches completed in.
func SortRecords(records []Record) {
	slices.SortFunc(records, func(a, b Record) int {
		if c := cmp.Compare(b.ILvl, a.ILvl); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Name["en"], a.Name["en"]); c != 0 {
			return c
		}
		return cmp.Compare(boolKey(b.HQ), boolKey(a.HQ))
	})
}

// SortRecipes orders recipes ascending by (effective level, English name).
func SortRecipes(recipes []Recipe) {
	slices.SortFunc(recipes, func(a, b Recipe) int {
		if c := cmp.Compare(a.Level, b.Level); c != 0 {
			return c
		}
		return cmp.Compare(a.Name["en"], b.Name["en"])
	})
}
