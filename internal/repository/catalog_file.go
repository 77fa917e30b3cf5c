package repository

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	pkgErrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"

	inErrors "github.com/Alturino/medstore/internal/errors"
)

// Catalog file layout, all integers big-endian:
//
//	uint32 count
//	count x { int32 id, string name, float64 price, int32 stock, string expiry, string company }
//
// A string is a uint32 byte length followed by UTF-16BE code units; the
// length 0xFFFFFFFF marks a null string and decodes as "". This matches the
// QDataStream encoding of QVector<Medicine>, so files written by the desktop
// edition load unchanged.
const nullString = math.MaxUint32

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

type CatalogFile struct {
	Path string
}

func NewCatalogFile(path string) *CatalogFile {
	return &CatalogFile{Path: path}
}

// Save replaces the file contents with medicines. The bytes are written to a
// sibling temp file first and renamed over the target.
func (f *CatalogFile) Save(medicines []Medicine) error {
	buf := bytes.Buffer{}
	if err := EncodeCatalog(&buf, medicines); err != nil {
		return pkgErrors.WithStack(
			fmt.Errorf("%w: failed encoding catalog with error=%w", inErrors.ErrPersistenceUnavailable, err),
		)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return pkgErrors.WithStack(
			fmt.Errorf("%w: failed creating directory=%s with error=%w", inErrors.ErrPersistenceUnavailable, dir, err),
		)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return pkgErrors.WithStack(
			fmt.Errorf("%w: failed creating temp file with error=%w", inErrors.ErrPersistenceUnavailable, err),
		)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return pkgErrors.WithStack(
			fmt.Errorf("%w: failed writing catalog with error=%w", inErrors.ErrPersistenceUnavailable, err),
		)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return pkgErrors.WithStack(
			fmt.Errorf("%w: failed syncing catalog with error=%w", inErrors.ErrPersistenceUnavailable, err),
		)
	}
	if err := tmp.Close(); err != nil {
		return pkgErrors.WithStack(
			fmt.Errorf("%w: failed closing catalog with error=%w", inErrors.ErrPersistenceUnavailable, err),
		)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		return pkgErrors.WithStack(
			fmt.Errorf("%w: failed replacing catalog file=%s with error=%w", inErrors.ErrPersistenceUnavailable, f.Path, err),
		)
	}
	return nil
}

// Load reads the whole catalog. On any failure it returns an empty catalog
// together with an error matching ErrCatalogNotFound (no file yet) or
// ErrPersistenceUnavailable (unreadable or malformed file).
func (f *CatalogFile) Load() ([]Medicine, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Medicine{}, pkgErrors.WithStack(
			fmt.Errorf("%w: file=%s", inErrors.ErrCatalogNotFound, f.Path),
		)
	}
	if err != nil {
		return []Medicine{}, pkgErrors.WithStack(
			fmt.Errorf("%w: failed reading file=%s with error=%w", inErrors.ErrPersistenceUnavailable, f.Path, err),
		)
	}

	medicines, err := DecodeCatalog(data)
	if err != nil {
		return []Medicine{}, pkgErrors.WithStack(
			fmt.Errorf("%w: failed decoding file=%s with error=%w", inErrors.ErrPersistenceUnavailable, f.Path, err),
		)
	}
	return medicines, nil
}

func EncodeCatalog(w io.Writer, medicines []Medicine) error {
	if uint64(len(medicines)) >= nullString {
		return fmt.Errorf("too many medicines=%d", len(medicines))
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(medicines))); err != nil {
		return err
	}
	for _, m := range medicines {
		if err := binary.Write(w, binary.BigEndian, m.ID); err != nil {
			return err
		}
		if err := writeString(w, m.Name); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, m.Price.InexactFloat64()); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, m.Stock); err != nil {
			return err
		}
		if err := writeString(w, m.Expiry); err != nil {
			return err
		}
		if err := writeString(w, m.Company); err != nil {
			return err
		}
	}
	return nil
}

func DecodeCatalog(data []byte) ([]Medicine, error) {
	r := bytes.NewReader(data)

	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("failed reading entry count with error=%w", err)
	}

	medicines := make([]Medicine, 0, min(count, 1024))
	seen := make(map[int32]struct{}, min(count, 1024))
	for i := uint32(0); i < count; i++ {
		m, err := readMedicine(r)
		if err != nil {
			return nil, fmt.Errorf("failed reading entry=%d with error=%w", i, err)
		}
		if _, ok := seen[m.ID]; ok {
			return nil, fmt.Errorf("entry=%d id=%d: %w", i, m.ID, inErrors.ErrDuplicateId)
		}
		seen[m.ID] = struct{}{}
		medicines = append(medicines, m)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("unexpected %d trailing bytes", r.Len())
	}
	return medicines, nil
}

func readMedicine(r *bytes.Reader) (Medicine, error) {
	m := Medicine{}
	var err error
	if err = binary.Read(r, binary.BigEndian, &m.ID); err != nil {
		return Medicine{}, err
	}
	if m.Name, err = readString(r); err != nil {
		return Medicine{}, err
	}
	var price float64
	if err = binary.Read(r, binary.BigEndian, &price); err != nil {
		return Medicine{}, err
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return Medicine{}, fmt.Errorf("invalid price=%v", price)
	}
	m.Price = decimal.NewFromFloat(price)
	if err = binary.Read(r, binary.BigEndian, &m.Stock); err != nil {
		return Medicine{}, err
	}
	if m.Expiry, err = readString(r); err != nil {
		return Medicine{}, err
	}
	if m.Company, err = readString(r); err != nil {
		return Medicine{}, err
	}
	return m, nil
}

func writeString(w io.Writer, s string) error {
	encoded, err := utf16be.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(encoded))); err != nil {
		return err
	}
	_, err = w.Write(encoded)
	return err
}

func readString(r *bytes.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", err
	}
	if length == nullString {
		return "", nil
	}
	if length%2 != 0 {
		return "", fmt.Errorf("odd string length=%d", length)
	}
	if int64(length) > int64(r.Len()) {
		return "", io.ErrUnexpectedEOF
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", err
	}
	decoded, err := utf16be.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
