// Package backup copies the catalog file into timestamped backup files.
package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	pkgErrors "github.com/pkg/errors"

	inErrors "github.com/Alturino/medstore/internal/errors"
)

const (
	KindAuto      = "Auto"
	KindManual    = "Manual"
	KindScheduled = "Scheduled"

	timestampLayout = "20060102_150405"
	filePrefix      = "backup_"
	fileExt         = ".dat"
)

type Backup struct {
	Dir    string
	Source string
	Now    func() time.Time
}

func New(dir string, source string) *Backup {
	return &Backup{Dir: dir, Source: source, Now: time.Now}
}

type Entry struct {
	Path      string    `json:"path"`
	Kind      string    `json:"kind"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidKind reports whether kind can be a field of a backup file name.
func ValidKind(kind string) bool {
	return kind != "" && !strings.ContainsAny(kind, `/\_`) && kind != "." && kind != ".."
}

// Create copies the source file to <dir>/backup_<kind>_<yyyyMMdd_HHmmss>.dat.
// A name already taken within the same second gets a _2, _3, ... suffix, so
// an existing backup is never overwritten.
func (b *Backup) Create(kind string) (string, error) {
	if !ValidKind(kind) {
		return "", fmt.Errorf("kind=%q: %w", kind, inErrors.ErrInvalidBackupKind)
	}

	src, err := os.Open(b.Source)
	if errors.Is(err, fs.ErrNotExist) {
		return "", pkgErrors.WithStack(fmt.Errorf(
			"%w: source=%s: %w", inErrors.ErrBackupSourceMissing, b.Source, inErrors.ErrPersistenceUnavailable,
		))
	}
	if err != nil {
		return "", pkgErrors.WithStack(fmt.Errorf(
			"%w: failed opening source=%s with error=%w", inErrors.ErrPersistenceUnavailable, b.Source, err,
		))
	}
	defer src.Close()

	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return "", pkgErrors.WithStack(fmt.Errorf(
			"%w: failed creating backup dir=%s with error=%w", inErrors.ErrPersistenceUnavailable, b.Dir, err,
		))
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	base := filePrefix + kind + "_" + now().Format(timestampLayout)
	dst, path, err := b.createExclusive(base)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", pkgErrors.WithStack(fmt.Errorf(
			"%w: failed copying to=%s with error=%w", inErrors.ErrPersistenceUnavailable, path, err,
		))
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", pkgErrors.WithStack(fmt.Errorf(
			"%w: failed closing=%s with error=%w", inErrors.ErrPersistenceUnavailable, path, err,
		))
	}
	return path, nil
}

func (b *Backup) createExclusive(base string) (*os.File, string, error) {
	for n := 1; ; n++ {
		name := base + fileExt
		if n > 1 {
			name = base + "_" + strconv.Itoa(n) + fileExt
		}
		path := filepath.Join(b.Dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", pkgErrors.WithStack(fmt.Errorf(
				"%w: failed creating=%s with error=%w", inErrors.ErrPersistenceUnavailable, path, err,
			))
		}
		return f, path, nil
	}
}

// ParseName extracts kind and timestamp from a backup file name.
func ParseName(name string) (kind string, createdAt time.Time, ok bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
		return "", time.Time{}, false
	}
	parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt), "_")
	if len(parts) != 3 && len(parts) != 4 {
		return "", time.Time{}, false
	}
	createdAt, err := time.ParseInLocation(timestampLayout, parts[1]+"_"+parts[2], time.Local)
	if err != nil {
		return "", time.Time{}, false
	}
	if len(parts) == 4 {
		if _, err := strconv.Atoi(parts[3]); err != nil {
			return "", time.Time{}, false
		}
	}
	return parts[0], createdAt, true
}

// List returns the backups in the directory, newest first. A missing
// directory yields an empty list.
func (b *Backup) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(b.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, pkgErrors.WithStack(fmt.Errorf(
			"%w: failed reading backup dir=%s with error=%w", inErrors.ErrPersistenceUnavailable, b.Dir, err,
		))
	}

	entries := []Entry{}
	for _, d := range dirEntries {
		if d.IsDir() {
			continue
		}
		kind, createdAt, ok := ParseName(d.Name())
		if !ok {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Path:      filepath.Join(b.Dir, d.Name()),
			Kind:      kind,
			Size:      info.Size(),
			CreatedAt: createdAt,
		})
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.Path, a.Path)
	})
	return entries, nil
}
