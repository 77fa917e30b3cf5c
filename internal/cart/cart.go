// Package cart keeps the pending sale lines. Lines reference medicines by id
// and carry the name and price seen when they were added.
package cart

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/medstore/internal/errors"
	"github.com/Alturino/medstore/internal/repository"
)

// Stock resolves catalog entries for stock checks. *catalog.Catalog satisfies it.
type Stock interface {
	Find(id int32) (repository.Medicine, bool)
}

type Item struct {
	MedicineID int32           `json:"medicine_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int32           `json:"quantity"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt32(i.Quantity))
}

type Cart struct {
	items []Item
}

func New() *Cart {
	return &Cart{items: []Item{}}
}

// Quantity is the total quantity already in the cart for medicineID.
func (c *Cart) Quantity(medicineID int32) int32 {
	var total int32
	for _, item := range c.items {
		if item.MedicineID == medicineID {
			total += item.Quantity
		}
	}
	return total
}

// Add puts qty units of medicineID in the cart, merging into an existing
// line. The medicine is looked up again on every call since the catalog may
// have changed since the previous one.
func (c *Cart) Add(stock Stock, medicineID int32, qty int32) error {
	if qty < 1 {
		return fmt.Errorf("quantity=%d: %w", qty, inErrors.ErrInvalidQuantity)
	}
	medicine, ok := stock.Find(medicineID)
	if !ok {
		return fmt.Errorf("id=%d: %w", medicineID, inErrors.ErrMedicineNotFound)
	}
	inCart := c.Quantity(medicineID)
	if int64(qty)+int64(inCart) > int64(medicine.Stock) {
		return fmt.Errorf(
			"requested=%d in cart=%d stock=%d: %w",
			qty, inCart, medicine.Stock, inErrors.ErrInsufficientStock,
		)
	}

	i := slices.IndexFunc(c.items, func(item Item) bool { return item.MedicineID == medicineID })
	if i >= 0 {
		c.items[i].Quantity += qty
		return nil
	}
	c.items = append(c.items, Item{
		MedicineID: medicine.ID,
		Name:       medicine.Name,
		Price:      medicine.Price,
		Quantity:   qty,
	})
	return nil
}

func (c *Cart) Remove(index int) (Item, error) {
	if index < 0 || index >= len(c.items) {
		return Item{}, fmt.Errorf("index=%d lines=%d: %w", index, len(c.items), inErrors.ErrInvalidSelection)
	}
	removed := c.items[index]
	c.items = slices.Delete(c.items, index, index+1)
	return removed, nil
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Items returns a copy of the lines in the order they were added.
func (c *Cart) Items() []Item {
	return slices.Clone(c.items)
}

func (c *Cart) Restore(items []Item) {
	c.items = slices.Clone(items)
	if c.items == nil {
		c.items = []Item{}
	}
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) Clear() {
	c.items = []Item{}
}
