package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pfrederiksen/compilation-harvester/internal/compilation"
	"github.com/pfrederiksen/compilation-harvester/internal/scraper"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates a --format value
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format: %s (use text, json or yaml)", s)
	}
}

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt time.Time             `json:"checked_at" yaml:"checked_at"`
	RunID     string                `json:"run_id" yaml:"run_id"`
	Range     string                `json:"range" yaml:"range"`
	Count     int                   `json:"count" yaml:"count"`
	Items     []compilation.Result  `json:"items" yaml:"items"`
	NewItems  []compilation.Result  `json:"new_items,omitempty" yaml:"new_items,omitempty"`
	Failures  []scraper.PostFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Snapshot  string                `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	Saved     bool                  `json:"-" yaml:"-"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatYAML:
		return writeYAML(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeYAML outputs results as YAML
func writeYAML(w io.Writer, result *OutputResult) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(result); err != nil {
		return err
	}
	return encoder.Close()
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	fresh := make(map[string]bool, len(result.NewItems))
	for _, item := range result.NewItems {
		fresh[item.Link] = true
	}

	if result.Count == 0 {
		fmt.Fprintln(w, "No compilations found.")
	}

	for _, item := range result.Items {
		if result.Saved && fresh[item.Link] {
			fmt.Fprintf(w, "NEW: %s\n", item.Title)
		} else {
			fmt.Fprintln(w, item.Title)
		}

		published := item.PublishedAtString()
		if published == "" {
			published = "unknown"
		}
		fmt.Fprintf(w, "     Published: %s\n", published)
		if verbose {
			fmt.Fprintf(w, "     Link: %s\n", item.Link)
		}
		if len(item.DownloadLinks) == 0 {
			fmt.Fprintln(w, "     Downloads: none")
			continue
		}
		fmt.Fprintln(w, "     Downloads:")
		for _, link := range item.DownloadLinks {
			fmt.Fprintf(w, "       %s\n", link)
		}
	}

	for _, failure := range result.Failures {
		fmt.Fprintf(w, "FAILED: %s (%s)\n", failure.Title, failure.Error)
	}

	if result.Count > 0 {
		if result.Saved {
			fmt.Fprintf(w, "\nTotal: %d compilations (%d new)\n", result.Count, len(result.NewItems))
		} else {
			fmt.Fprintf(w, "\nTotal: %d compilations\n", result.Count)
		}
	}

	if verbose {
		fmt.Fprintf(w, "Run: %s  Range: %s\n", result.RunID, result.Range)
		if result.Snapshot != "" {
			fmt.Fprintf(w, "Snapshot: %s\n", result.Snapshot)
		}
	}

	return nil
}
