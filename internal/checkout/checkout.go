// Package checkout commits a cart against the catalog and builds the receipt.
package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/medstore/internal/cart"
)

// Inventory is the part of the catalog checkout mutates.
type Inventory interface {
	AdjustStock(id int32, delta int32) bool
}

type Options struct {
	Store    string
	Currency string
	Now      func() time.Time
	NewID    func() uuid.UUID
}

func (o Options) withDefaults() Options {
	if o.Store == "" {
		o.Store = "MEDICAL STORE"
	}
	if o.Currency == "" {
		o.Currency = "Rs"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.New
	}
	return o
}

// Commit decrements stock for every line and returns the receipt for items.
// Stock is not validated again here: the cart checked it when each line was
// added, and a medicine deleted in the meantime is skipped. Commit does not
// persist anything and does not touch the cart; an empty items list yields
// ok == false.
func Commit(inventory Inventory, items []cart.Item, opts Options) (receipt Receipt, ok bool) {
	if len(items) == 0 {
		return Receipt{}, false
	}
	opts = opts.withDefaults()

	receipt = Receipt{
		ID:       opts.NewID(),
		IssuedAt: opts.Now(),
		Store:    opts.Store,
		Currency: opts.Currency,
		Lines:    make([]ReceiptLine, 0, len(items)),
		Total:    decimal.Zero,
	}
	for _, item := range items {
		inventory.AdjustStock(item.MedicineID, -item.Quantity)

		subtotal := item.Subtotal()
		receipt.Total = receipt.Total.Add(subtotal)
		receipt.Lines = append(receipt.Lines, ReceiptLine{
			MedicineID: item.MedicineID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   item.Quantity,
			Subtotal:   subtotal,
		})
	}
	return receipt, true
}
