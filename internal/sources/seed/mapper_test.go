package seed

import (
	"testing"

	"github.com/MrSnakeDoc/guide/internal/domain"
)

func TestMapperMapDrafts(t *testing.T) {
	catalog := Catalog{
		{
			"package": []Entry{
				{
					Title:     "Remix Auth",
					URL:       "https://example.com/remix-auth",
					Platforms: []string{"cloudflare"},
					Languages: []string{"typescript"},
				},
				{
					Title: "Remix Utils",
					URL:   "https://example.com/remix-utils",
				},
			},
		},
		{
			"tutorial": []Entry{
				{
					Title: "Up and Running",
					URL:   "https://example.com/up-and-running",
				},
			},
		},
	}

	mapper := NewMapper()
	drafts, err := mapper.MapDrafts(catalog)
	if err != nil {
		t.Fatalf("MapDrafts() error = %v", err)
	}

	if len(drafts) != 3 {
		t.Fatalf("MapDrafts() returned %v drafts, want 3", len(drafts))
	}

	found := false
	for _, d := range drafts {
		if d.URL == "https://example.com/remix-auth" {
			found = true
			if d.Category != domain.CategoryPackage {
				t.Errorf("draft Category = %v, want package", d.Category)
			}
		}
	}
	if !found {
		t.Error("MapDrafts() did not map the remix-auth entry")
	}
}

func TestMapperMapDraftsUnknownCategory(t *testing.T) {
	catalog := Catalog{
		{
			"screencast": []Entry{
				{Title: "Deep Dive", URL: "https://example.com/deep-dive"},
			},
		},
	}

	mapper := NewMapper()
	drafts, err := mapper.MapDrafts(catalog)
	if err != nil {
		t.Fatalf("MapDrafts() error = %v", err)
	}
	if len(drafts) != 1 || drafts[0].Category != domain.CategoryOther {
		t.Errorf("MapDrafts() = %+v, unknown category must fall back to other", drafts)
	}
}

func TestMapperMapDraftsSkipsIncompleteAndDuplicates(t *testing.T) {
	catalog := Catalog{
		{
			"example": []Entry{
				{Title: "", URL: "https://example.com/untitled"},
				{Title: "No URL"},
				{Title: "Kept", URL: "https://example.com/kept"},
				{Title: "Duplicate", URL: "https://example.com/kept"},
			},
		},
	}

	mapper := NewMapper()
	drafts, err := mapper.MapDrafts(catalog)
	if err != nil {
		t.Fatalf("MapDrafts() error = %v", err)
	}
	if len(drafts) != 1 || drafts[0].Title != "Kept" {
		t.Errorf("MapDrafts() = %+v, want only the first complete entry per URL", drafts)
	}
}

func TestMapperMapDraftsEmptyCatalog(t *testing.T) {
	mapper := NewMapper()
	drafts, err := mapper.MapDrafts(Catalog{})

	if err == nil {
		t.Error("MapDrafts() with empty catalog should return error")
	}
	if drafts != nil {
		t.Errorf("MapDrafts() with empty catalog should return nil drafts, got %v", len(drafts))
	}
}
