// Package store persists the worker's documents as flat JSON and markdown
// files under a single output directory. Writes are atomic: content goes to
// a temp file in the same directory, then renames into place.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"editiongen/internal/config"
	"editiongen/internal/models"
)

// ErrNoPriorSnapshot indicates no previous snapshot exists on disk. A first
// run is expected to hit this.
var ErrNoPriorSnapshot = errors.New("no prior snapshot")

// Store reads and writes the worker's documents under the output directory.
type Store struct {
	dir           string
	rawFile       string
	priorFile     string
	catalogFile   string
	changelogFile string
}

// New creates a store for the configured output locations, creating the
// output directory if needed.
func New(cfg config.OutputConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Store{
		dir:           cfg.Dir,
		rawFile:       cfg.RawFile,
		priorFile:     cfg.PriorFile,
		catalogFile:   cfg.CatalogFile,
		changelogFile: cfg.ChangelogFile,
	}, nil
}

// RawPath returns the location of the current raw snapshot file.
func (s *Store) RawPath() string {
	return filepath.Join(s.dir, s.rawFile)
}

// PriorPath returns the location of the previous-run snapshot file.
func (s *Store) PriorPath() string {
	return filepath.Join(s.dir, s.priorFile)
}

// CatalogPath returns the location of the published catalog file.
func (s *Store) CatalogPath() string {
	return filepath.Join(s.dir, s.catalogFile)
}

// ChangelogPath returns the location of the changelog file.
func (s *Store) ChangelogPath() string {
	return filepath.Join(s.dir, s.changelogFile)
}

// SaveRaw writes the current snapshot to the raw file.
func (s *Store) SaveRaw(snap *models.Snapshot) error {
	return s.writeJSON(s.RawPath(), snap)
}

// LoadRaw reads the current raw snapshot back from disk.
func (s *Store) LoadRaw() (*models.Snapshot, error) {
	return s.readSnapshot(s.RawPath())
}

// LoadPrior reads the previous-run snapshot. A missing file returns
// ErrNoPriorSnapshot; an unreadable or unparseable file returns a wrapped
// error so the caller can decide to treat the run as first-time.
func (s *Store) LoadPrior() (*models.Snapshot, error) {
	snap, err := s.readSnapshot(s.PriorPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoPriorSnapshot, s.PriorPath())
	}

	return snap, err
}

// SaveCatalog writes the published normalized catalog.
func (s *Store) SaveCatalog(catalog models.Catalog) error {
	return s.writeJSON(s.CatalogPath(), catalog)
}

// SaveChangelog writes the rendered changelog document.
func (s *Store) SaveChangelog(markdown string) error {
	if err := s.writeAtomic(s.ChangelogPath(), []byte(markdown)); err != nil {
		return fmt.Errorf("failed to write changelog: %w", err)
	}

	return nil
}

// PromoteRaw makes the current raw snapshot the prior one for the next run.
// Called only after the whole pipeline has succeeded.
func (s *Store) PromoteRaw() error {
	if err := os.Rename(s.RawPath(), s.PriorPath()); err != nil {
		return fmt.Errorf("failed to promote raw snapshot: %w", err)
	}

	return nil
}

// DiscardRaw removes the current raw snapshot, leaving the prior one as the
// comparison baseline for the next run. A missing file is not an error.
func (s *Store) DiscardRaw() error {
	if err := os.Remove(s.RawPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to discard raw snapshot: %w", err)
	}

	return nil
}

func (s *Store) readSnapshot(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	return &snap, nil
}

func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	if err := s.writeAtomic(path, append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	return nil
}

func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)

		return err
	}

	return nil
}
