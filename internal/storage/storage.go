package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/compilation-harvester/internal/compilation"
	"github.com/pfrederiksen/compilation-harvester/internal/scraper"
)

// Snapshot is a stored harvest report
type Snapshot struct {
	RunID    string                `json:"run_id"`
	SavedAt  string                `json:"saved_at"` // RFC3339 timestamp
	Range    string                `json:"range"`
	Items    []compilation.Result  `json:"items"`
	Failures []scraper.PostFailure `json:"failures,omitempty"`
}

// Storage handles persistence of harvest snapshots
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// SnapshotPath returns the file a range's snapshot is stored in
func (s *Storage) SnapshotPath(r compilation.DateRange) string {
	bound := func(t *time.Time) string {
		if t == nil {
			return "any"
		}
		return t.UTC().Format("2006-01")
	}
	return filepath.Join(s.dataDir, fmt.Sprintf("harvest_%s_%s.json", bound(r.Start), bound(r.End)))
}

// Load reads the snapshot for r. A missing file yields an empty snapshot.
func (s *Storage) Load(r compilation.DateRange) (*Snapshot, error) {
	data, err := os.ReadFile(s.SnapshotPath(r))
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{Range: r.String(), Items: []compilation.Result{}}, nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snapshot.Items == nil {
		snapshot.Items = []compilation.Result{}
	}

	return &snapshot, nil
}

// Save writes report as the snapshot for r and returns the file path
func (s *Storage) Save(report *scraper.Report, r compilation.DateRange) (string, error) {
	path := s.SnapshotPath(r)

	snapshot := Snapshot{
		RunID:    report.RunID,
		SavedAt:  time.Now().UTC().Format(time.RFC3339),
		Range:    r.String(),
		Items:    report.Items,
		Failures: report.Failures,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}

	return path, nil
}

// NewSince returns the items whose link is absent from previous, in order
func NewSince(previous *Snapshot, items []compilation.Result) []compilation.Result {
	seen := make(map[string]bool)
	if previous != nil {
		for _, item := range previous.Items {
			seen[item.Link] = true
		}
	}

	fresh := make([]compilation.Result, 0)
	for _, item := range items {
		if !seen[item.Link] {
			fresh = append(fresh, item)
		}
	}
	return fresh
}
