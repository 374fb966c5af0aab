package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/flashmark/flashmark/internal/domain"
)

// imageVersion is bumped when the serialized layout changes shape.
const imageVersion = 1

// backupTimeFormat keeps backup names lexically sortable by age.
// Nanoseconds disambiguate writes landing within the same second.
const backupTimeFormat = "20060102T150405.000000000"

// image is the serialized form of the whole catalog.
type image struct {
	Version   int              `json:"version"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Decks     []*domain.Deck   `json:"decks"`
	Cards     []*domain.Card   `json:"cards"`
	Reviews   []*domain.Review `json:"reviews"`
}

// catalogFile owns the primary file and its backup rotation.
type catalogFile struct {
	path       string
	maxBackups int
}

func newCatalogFile(path string, maxBackups int) (*catalogFile, error) {
	if path == "" {
		return nil, errors.New("catalog path cannot be empty")
	}
	if maxBackups < 1 {
		return nil, fmt.Errorf("max backups must be at least 1, got %d", maxBackups)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving catalog path: %w", err)
	}
	return &catalogFile{path: abs, maxBackups: maxBackups}, nil
}

// load reads and decodes the catalog. A missing file is not an error;
// it returns (nil, nil) so the caller can start fresh.
func (f *catalogFile) load() (*image, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var img image
	if err := json.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("decoding catalog %s: %w", f.path, err)
	}
	if img.Version != imageVersion {
		return nil, fmt.Errorf("unsupported catalog version %d in %s", img.Version, f.path)
	}
	return &img, nil
}

// save persists the image durably: the previous version is copied aside
// into a timestamped backup, the new image is written to a temp file in
// the same directory, synced, and renamed over the primary. A failure
// anywhere before the rename leaves the previous file intact.
func (f *catalogFile) save(img *image) error {
	data, err := json.MarshalIndent(img, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}

	if err := f.backupCurrent(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("replacing catalog: %w", err)
	}

	return f.pruneBackups()
}

// backupCurrent copies the current primary file, if any, into a
// timestamped backup slot next to it.
func (f *catalogFile) backupCurrent() error {
	src, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening catalog for backup: %w", err)
	}
	defer src.Close()

	name := f.backupName(time.Now().UTC())
	dst, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating backup %s: %w", name, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(name)
		return fmt.Errorf("copying backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("closing backup: %w", err)
	}
	return nil
}

// backupName derives the backup path for a given moment, e.g.
// flashmark.json -> flashmark.backup-20240131T120000.000000000.json.
func (f *catalogFile) backupName(at time.Time) string {
	base := filepath.Base(f.path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := fmt.Sprintf("%s.backup-%s%s", stem, at.Format(backupTimeFormat), ext)
	return filepath.Join(filepath.Dir(f.path), name)
}

// backups lists existing backup paths, oldest first.
func (f *catalogFile) backups() ([]string, error) {
	base := filepath.Base(f.path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	pattern := filepath.Join(filepath.Dir(f.path), stem+".backup-*"+ext)

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}
	// Timestamps in the names sort lexically by age.
	sort.Strings(matches)
	return matches, nil
}

// pruneBackups removes the oldest backups beyond the retention limit.
func (f *catalogFile) pruneBackups() error {
	matches, err := f.backups()
	if err != nil {
		return err
	}
	if len(matches) <= f.maxBackups {
		return nil
	}
	for _, stale := range matches[:len(matches)-f.maxBackups] {
		if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("pruning backup %s: %w", stale, err)
		}
	}
	return nil
}
