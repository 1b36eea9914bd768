// Package langfile
package langfile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Table maps canonical English names to one language's override names.
type Table map[string]string

// Tables holds every configured override language, keyed by language
// code. Read-only once loaded.
type Tables map[string]Table

// Load reads every LANG=FILE spec into an override table. Any malformed
// spec or unreadable file is a configuration error; the caller is
// expected to abort before any network activity starts.
func Load(specs []string) (Tables, error) {
	tables := make(Tables, len(specs))
	for _, spec := range specs {
		lang, path, ok := strings.Cut(spec, "=")
		if !ok || lang == "" || path == "" {
			return nil, fmt.Errorf("malformed lang-file spec %q, want LANG=FILE", spec)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read lang file for %q: %w", lang, err)
		}
		var table Table
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parse lang file %s: %w", path, err)
		}
		slog.Info("Loaded language overrides", "lang", lang, "path", path, "names", len(table))
		tables[lang] = table
	}
	return tables, nil
}

// Apply sets names[lang] for every override language: the table's entry
// for the English name when one exists, the English name itself
// otherwise. The tables are never modified.
func (t Tables) Apply(names map[string]string) {
	en := names["en"]
	for lang, table := range t {
		if override := table[en]; override != "" {
			names[lang] = override
		} else {
			names[lang] = en
		}
	}
}
