package aggregate

import (
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// Category is one named grouping in the industry catalog, mapped to the
// free-form equipment labels the marketing side writes.
type Category struct {
	Name   string   `yaml:"name"`
	Labels []string `yaml:"labels"`
}

// Catalog is the static industry catalog: an ordered list of categories
// plus the synonym table resolving labels to concrete equipment-type
// filter values.
type Catalog struct {
	Categories []Category          `yaml:"categories"`
	Synonyms   map[string][]string `yaml:"synonyms"`
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat Catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return nil, err
	}
	if len(cat.Categories) == 0 {
		return nil, ErrEmptyCatalog
	}
	return &cat, nil
}

// TypesFor resolves a category's labels to equipment-type filter values.
// Labels are looked up in the synonym table case-insensitively; a label
// with no synonym entry stands for itself. Duplicates are removed, first
// occurrence wins, order is preserved.
func (c *Catalog) TypesFor(cat Category) []string {
	seen := make(map[string]bool)
	types := make([]string, 0, len(cat.Labels))

	add := func(t string) {
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		types = append(types, t)
	}

	for _, label := range cat.Labels {
		if mapped, ok := c.Synonyms[strings.ToLower(strings.TrimSpace(label))]; ok {
			for _, t := range mapped {
				add(t)
			}
			continue
		}
		add(strings.TrimSpace(label))
	}

	return types
}

// DefaultCatalog returns the built-in industry catalog used when no catalog
// file is supplied.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Categories: []Category{
			{Name: "Construction", Labels: []string{"earthmoving", "compaction", "dozer"}},
			{Name: "Landscaping", Labels: []string{"skid steer", "mini excavator", "trencher"}},
			{Name: "Agriculture", Labels: []string{"tractor", "telehandler"}},
			{Name: "Road & Bridge", Labels: []string{"grader", "paver", "compaction"}},
			{Name: "Material Handling", Labels: []string{"forklift", "telehandler", "manlift"}},
		},
		Synonyms: map[string][]string{
			"earthmoving":    {"Excavator", "Dozer", "Wheel Loader"},
			"compaction":     {"Smooth Drum Roller", "Padfoot Roller"},
			"dozer":          {"Dozer"},
			"skid steer":     {"Skid Steer", "Compact Track Loader"},
			"mini excavator": {"Mini Excavator"},
			"trencher":       {"Trencher"},
			"tractor":        {"Tractor"},
			"telehandler":    {"Telehandler"},
			"grader":         {"Motor Grader"},
			"paver":          {"Asphalt Paver"},
			"forklift":       {"Forklift"},
			"manlift":        {"Boom Lift", "Scissor Lift"},
		},
	}
}
