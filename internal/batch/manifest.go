package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one model in the output manifest.
type ManifestEntry struct {
	Name      string   `json:"name"`
	Source    string   `json:"source,omitempty"`
	Images    []string `json:"images"`
	Meshes    int      `json:"meshes"`
	Skipped   int      `json:"skipped,omitempty"`
	Triangles int      `json:"triangles"`
	Error     string   `json:"error,omitempty"`
}

// WriteManifest writes the results of a run as indented JSON.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		images := r.Images
		if images == nil {
			images = []string{}
		}
		entries[i] = ManifestEntry{
			Name:      r.Name,
			Source:    r.Source,
			Images:    images,
			Meshes:    r.Meshes,
			Skipped:   r.Skipped,
			Triangles: r.Triangles,
			Error:     r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
