package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/domain"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	value := 46
	records := []domain.Record{
		{
			Name:    map[string]string{"en": "Baked Onion Soup", "ja": "ベイクドオニオンスープ"},
			HQ:      true,
			ILvl:    430,
			CPValue: &value,
		},
	}

	require.NoError(t, WriteJSON(dir, "Food", records))

	var back []domain.Record
	require.NoError(t, ReadJSON(dir, "Food", &back))
	require.Equal(t, records, back)
}

func TestWriteJSONKeepsNonASCIIUnescaped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteJSON(dir, "Food", []domain.Record{
		{Name: map[string]string{"en": "Sauté", "ja": "ソテー"}, ILvl: 1},
	}))

	raw, err := os.ReadFile(filepath.Join(dir, "Food.json"))
	require.NoError(t, err)
	content := string(raw)
	require.Contains(t, content, "ソテー")
	require.Contains(t, content, "Sauté")
	require.NotContains(t, content, `\u`, "non-ASCII text must not be escaped")
}

func TestWriteJSONOmitsAbsentStatFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteJSON(dir, "Medicine", []domain.Record{
		{Name: map[string]string{"en": "Potion"}, ILvl: 5},
	}))

	raw, err := os.ReadFile(filepath.Join(dir, "Medicine.json"))
	require.NoError(t, err)
	content := string(raw)
	for _, field := range []string{"craftsmanship_value", "control_value", "cp_value"} {
		require.False(t, strings.Contains(content, field), "absent attribute %s must be omitted", field)
	}
}

func TestWriteJSONCreatesOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	require.NoError(t, WriteJSON(dir, "Food", []domain.Record{}))
	_, err := os.Stat(filepath.Join(dir, "Food.json"))
	require.NoError(t, err)
}

func TestReadJSONMissingFile(t *testing.T) {
	var recipes []domain.Recipe
	require.Error(t, ReadJSON(t.TempDir(), "carpenter", &recipes))
}
