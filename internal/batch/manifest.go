package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Summary is the document written by WriteManifest.
type Summary struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Results   []Result `json:"results"`
}

// Summarize counts the outcomes in results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results), Results: results}
	for _, r := range results {
		if r.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// WriteManifest writes the run results as indented JSON. Output paths under
// the manifest's directory are stored relative to it.
func WriteManifest(path string, results []Result) error {
	dir := filepath.Dir(path)
	rel := make([]Result, len(results))
	for i, r := range results {
		if r.Output != "" {
			if p, err := filepath.Rel(dir, r.Output); err == nil && filepath.IsLocal(p) {
				r.Output = filepath.ToSlash(p)
			}
		}
		rel[i] = r
	}

	data, err := json.MarshalIndent(Summarize(rel), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
