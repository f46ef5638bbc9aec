// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cocontrib/pkg/types"
)

// URLLookup resolves a project to its canonical url. *metadata.Catalog
// satisfies it.
type URLLookup interface {
	URL(p types.ProjectID) (string, bool)
}

// ExportEntry is one user's recommendations with project urls attached.
type ExportEntry struct {
	User     types.UserID    `json:"user" yaml:"user"`
	Projects []ExportProject `json:"projects" yaml:"projects"`
}

// ExportProject is a recommended project as it appears in an export.
type ExportProject struct {
	ID  types.ProjectID `json:"id" yaml:"id"`
	URL string          `json:"url,omitempty" yaml:"url,omitempty"`
}

// Entries attaches urls from lookup to recs. lookup may be nil.
func Entries(recs []types.Recommendation, lookup URLLookup) []ExportEntry {
	entries := make([]ExportEntry, len(recs))
	for i, rec := range recs {
		entries[i] = ExportEntry{User: rec.User, Projects: make([]ExportProject, len(rec.Projects))}
		for j, p := range rec.Projects {
			entries[i].Projects[j].ID = p
			if lookup != nil {
				if url, ok := lookup.URL(p); ok {
					entries[i].Projects[j].URL = url
				}
			}
		}
	}
	return entries
}

// ExportYAML writes recs to path as YAML.
func ExportYAML(path string, recs []types.Recommendation, lookup URLLookup) error {
	data, err := yaml.Marshal(Entries(recs, lookup))
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes recs to path as indented JSON.
func ExportJSON(path string, recs []types.Recommendation, lookup URLLookup) error {
	data, err := json.MarshalIndent(Entries(recs, lookup), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
