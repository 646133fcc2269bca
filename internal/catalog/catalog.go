package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed classics.yaml
var classicsYAML []byte

// Entry identifies one work to ingest.
type Entry struct {
	ExternalID int    `yaml:"id"`
	Title      string `yaml:"title"`
	Author     string `yaml:"author"`
}

// Placeholder returns the entry used for ids outside the curated set.
func Placeholder(id int) Entry {
	return Entry{
		ExternalID: id,
		Title:      fmt.Sprintf("Unknown Book %d", id),
		Author:     "Unknown Author",
	}
}

// Catalog is an ordered, deduplicated registry of entries.
type Catalog struct {
	entries []Entry
	index   map[int]int
}

type seedFile struct {
	Works []Entry `yaml:"works"`
}

// New builds a catalog from entries in curation order. When an id appears
// more than once the first definition wins and later ones are dropped.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[int]int, len(entries)),
	}
	for _, entry := range entries {
		if _, ok := c.index[entry.ExternalID]; ok {
			continue
		}
		c.index[entry.ExternalID] = len(c.entries)
		c.entries = append(c.entries, entry)
	}
	return c
}

// Default returns the embedded curated classics.
func Default() (*Catalog, error) {
	return parse(classicsYAML, "embedded catalog")
}

// Load reads a catalog seed file with the same layout as the embedded one.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return parse(data, path)
}

func parse(data []byte, source string) (*Catalog, error) {
	var seed seedFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	for i, entry := range seed.Works {
		if entry.ExternalID <= 0 {
			return nil, fmt.Errorf("parse %s: works[%d]: id must be positive", source, i)
		}
		if entry.Title == "" {
			return nil, fmt.Errorf("parse %s: works[%d]: title is required", source, i)
		}
	}
	return New(seed.Works), nil
}

// Len reports the number of unique entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// List returns the first limit entries in curation order. A limit of zero or
// less returns every entry.
func (c *Catalog) List(limit int) []Entry {
	n := len(c.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, n)
	copy(out, c.entries[:n])
	return out
}

// ByIDs resolves ids in request order. Ids outside the catalog yield a
// placeholder entry so callers can ingest arbitrary works.
func (c *Catalog) ByIDs(ids []int) []Entry {
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		if entry, ok := c.ByID(id); ok {
			out = append(out, entry)
			continue
		}
		out = append(out, Placeholder(id))
	}
	return out
}

// ByID looks up a single entry.
func (c *Catalog) ByID(id int) (Entry, bool) {
	pos, ok := c.index[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[pos], true
}
