package seed

// Catalog represents the top-level structure of the seed file.
// Each element maps a category name to its entries.
type Catalog []map[string][]Entry

// Entry contains one curated resource.
type Entry struct {
	Title       string   `yaml:"title"`
	URL         string   `yaml:"url"`
	Platforms   []string `yaml:"platforms,omitempty"`
	Languages   []string `yaml:"languages,omitempty"`
	Description string   `yaml:"description,omitempty"`
}
