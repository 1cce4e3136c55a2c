package weights

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed labels.yaml
var defaultLabels []byte

// Catalog holds metal label tables per language.
type Catalog struct {
	tags    []language.Tag
	tables  map[language.Tag]Labels
	matcher language.Matcher
}

type catalogFile struct {
	Languages map[string]map[Metal][]string `yaml:"languages"`
}

// DefaultCatalog returns the built-in English and Japanese tables.
func DefaultCatalog() *Catalog {
	catalog, err := LoadCatalog(bytes.NewReader(defaultLabels))
	if err != nil {
		panic(fmt.Sprintf("weights: embedded labels invalid: %v", err))
	}
	return catalog
}

// LoadCatalogFile reads a YAML label catalog from disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("weights: open catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// LoadCatalog parses a YAML label catalog. The first language listed in
// canonical tag order is used when nothing matches.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("weights: decode catalog: %w", err)
	}
	if len(file.Languages) == 0 {
		return nil, fmt.Errorf("weights: catalog defines no languages")
	}

	catalog := &Catalog{tables: make(map[language.Tag]Labels, len(file.Languages))}
	for code, metals := range file.Languages {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("weights: language %q: %w", code, err)
		}
		table := make(Labels)
		for metal, labels := range metals {
			if !knownMetal(metal) {
				return nil, fmt.Errorf("weights: language %q: unknown metal %q", code, metal)
			}
			for _, label := range labels {
				label = strings.TrimSpace(label)
				if label == "" {
					continue
				}
				table[label] = metal
			}
		}
		catalog.tables[tag] = table
		catalog.tags = append(catalog.tags, tag)
	}

	// English first so it is the matcher's fallback when present.
	sortTags(catalog.tags)
	catalog.matcher = language.NewMatcher(catalog.tags)
	return catalog, nil
}

// Labels returns the table best matching the requested language.
func (c *Catalog) Labels(lang string) Labels {
	_, index := language.MatchStrings(c.matcher, lang)
	if index < 0 || index >= len(c.tags) {
		index = 0
	}
	return c.tables[c.tags[index]]
}

// Languages lists the configured language tags.
func (c *Catalog) Languages() []language.Tag {
	return append([]language.Tag(nil), c.tags...)
}

// Covers reports whether the catalog defines labels for the base language of lang.
func (c *Catalog) Covers(lang string) bool {
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	for _, candidate := range c.Languages() {
		if b, _ := candidate.Base(); b == base {
			return true
		}
	}
	return false
}

func sortTags(tags []language.Tag) {
	rank := func(tag language.Tag) string {
		if tag == language.English {
			return ""
		}
		return tag.String()
	}
	sort.Slice(tags, func(i, j int) bool {
		return rank(tags[i]) < rank(tags[j])
	})
}

func knownMetal(metal Metal) bool {
	for _, m := range Metals {
		if m == metal {
			return true
		}
	}
	return false
}
