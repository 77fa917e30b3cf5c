package repository

import (
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock level below which a medicine is flagged.
const LowStockThreshold = 10

type Medicine struct {
	ID      int32           `json:"id"`
	Name    string          `json:"name"    validate:"required"`
	Price   decimal.Decimal `json:"price"   validate:"price"`
	Stock   int32           `json:"stock"   validate:"gte=0"`
	Expiry  string          `json:"expiry"`
	Company string          `json:"company"`
}

func (m Medicine) IsLowStock() bool {
	return m.Stock < LowStockThreshold
}

// MedicineFields is everything an update may replace; the id never changes.
type MedicineFields struct {
	Name    string
	Price   decimal.Decimal
	Stock   int32
	Expiry  string
	Company string
}

func (m Medicine) Fields() MedicineFields {
	return MedicineFields{
		Name:    m.Name,
		Price:   m.Price,
		Stock:   m.Stock,
		Expiry:  m.Expiry,
		Company: m.Company,
	}
}

func (f MedicineFields) Medicine(id int32) Medicine {
	return Medicine{
		ID:      id,
		Name:    f.Name,
		Price:   f.Price,
		Stock:   f.Stock,
		Expiry:  f.Expiry,
		Company: f.Company,
	}
}
