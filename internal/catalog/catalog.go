// Package catalog holds the in-memory list of medicines. It enforces id
// uniqueness and keeps insertion order; it is not safe for concurrent use.
package catalog

import (
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	inErrors "github.com/Alturino/medstore/internal/errors"
	"github.com/Alturino/medstore/internal/repository"
)

type Catalog struct {
	medicines []repository.Medicine
}

func New() *Catalog {
	return &Catalog{medicines: []repository.Medicine{}}
}

// FromMedicines builds a catalog from a loaded list, rejecting duplicate ids.
func FromMedicines(medicines []repository.Medicine) (*Catalog, error) {
	c := New()
	if err := c.Replace(medicines); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) indexOf(id int32) int {
	return slices.IndexFunc(c.medicines, func(m repository.Medicine) bool { return m.ID == id })
}

func (c *Catalog) Add(m repository.Medicine) error {
	if c.indexOf(m.ID) >= 0 {
		return fmt.Errorf("id=%d: %w", m.ID, inErrors.ErrDuplicateId)
	}
	c.medicines = append(c.medicines, m)
	return nil
}

// Update replaces every field but the id. It reports false and changes
// nothing when id is unknown.
func (c *Catalog) Update(id int32, fields repository.MedicineFields) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.medicines[i] = fields.Medicine(id)
	return true
}

func (c *Catalog) Delete(id int32) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.medicines = slices.Delete(c.medicines, i, i+1)
	return true
}

func (c *Catalog) Find(id int32) (repository.Medicine, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return repository.Medicine{}, false
	}
	return c.medicines[i], true
}

// AdjustStock adds delta to the stock of id without any bounds check.
func (c *Catalog) AdjustStock(id int32, delta int32) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.medicines[i].Stock += delta
	return true
}

// Matches reports whether m is selected by a search for query: empty query,
// case-insensitive name substring, or substring of the decimal id.
func Matches(m repository.Medicine, query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(m.Name), strings.ToLower(query)) {
		return true
	}
	return strings.Contains(strconv.FormatInt(int64(m.ID), 10), query)
}

// Search yields matching medicines in insertion order. The sequence reads the
// catalog when iterated, so it can be ranged over again after mutations.
func (c *Catalog) Search(query string) iter.Seq[repository.Medicine] {
	return func(yield func(repository.Medicine) bool) {
		for _, m := range c.medicines {
			if !Matches(m, query) {
				continue
			}
			if !yield(m) {
				return
			}
		}
	}
}

func (c *Catalog) LowStock() []repository.Medicine {
	low := []repository.Medicine{}
	for _, m := range c.medicines {
		if m.IsLowStock() {
			low = append(low, m)
		}
	}
	return low
}

// All returns a copy of the catalog in insertion order.
func (c *Catalog) All() []repository.Medicine {
	return slices.Clone(c.medicines)
}

// Replace swaps the whole content. On duplicate ids nothing changes.
func (c *Catalog) Replace(medicines []repository.Medicine) error {
	seen := make(map[int32]struct{}, len(medicines))
	for _, m := range medicines {
		if _, ok := seen[m.ID]; ok {
			return fmt.Errorf("id=%d: %w", m.ID, inErrors.ErrDuplicateId)
		}
		seen[m.ID] = struct{}{}
	}
	c.medicines = slices.Clone(medicines)
	if c.medicines == nil {
		c.medicines = []repository.Medicine{}
	}
	return nil
}

func (c *Catalog) Len() int {
	return len(c.medicines)
}
