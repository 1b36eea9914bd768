package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func rec(name string, ilvl int, hq bool) Record {
	return Record{Name: map[string]string{"en": name}, ILvl: ilvl, HQ: hq}
}

func TestSortRecordsDescendingOrder(t *testing.T) {
	records := []Record{
		rec("Baked Eggplant", 430, false),
		rec("Apple Tart", 510, false),
		rec("Apple Tart", 510, true),
		rec("Chili Crab", 510, false),
		rec("Baked Eggplant", 430, true),
		rec("Zefir", 570, false),
	}
	SortRecords(records)

	for i := 1; i < len(records); i++ {
		a, b := records[i-1], records[i]
		require.GreaterOrEqual(t, a.ILvl, b.ILvl, "ilvl must be descending")
		if a.ILvl == b.ILvl {
			require.GreaterOrEqual(t, a.Name["en"], b.Name["en"])
			if a.Name["en"] == b.Name["en"] {
				require.True(t, a.HQ && !b.HQ, "hq variant sorts before nq under the descending key")
			}
		}
	}

	require.Equal(t, "Zefir", records[0].Name["en"])
	require.Equal(t, rec("Chili Crab", 510, false), records[1])
	require.Equal(t, rec("Apple Tart", 510, true), records[2])
	require.Equal(t, rec("Apple Tart", 510, false), records[3])
}

func TestSortRecipesAscendingByLevelThenName(t *testing.T) {
	mk := func(name string, level int) Recipe {
		return Recipe{Name: map[string]string{"en": name}, Level: level}
	}
	recipes := []Recipe{
		mk("Walnut Lumber", 20),
		mk("Ash Lumber", 10),
		mk("Maple Lumber", 10),
	}
	SortRecipes(recipes)

	require.Equal(t, "Ash Lumber", recipes[0].Name["en"])
	require.Equal(t, "Maple Lumber", recipes[1].Name["en"])
	require.Equal(t, "Walnut Lumber", recipes[2].Name["en"])
}
