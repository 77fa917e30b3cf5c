package request

import (
	"github.com/shopspring/decimal"

	"github.com/Alturino/medstore/internal/repository"
)

type Medicine struct {
	ID      int32           `json:"id"`
	Name    string          `json:"name"    validate:"required"`
	Price   decimal.Decimal `json:"price"   validate:"price"`
	Stock   int32           `json:"stock"   validate:"gte=0"`
	Expiry  string          `json:"expiry"`
	Company string          `json:"company"`
}

func (m Medicine) Medicine() repository.Medicine {
	return repository.Medicine{
		ID:      m.ID,
		Name:    m.Name,
		Price:   m.Price,
		Stock:   m.Stock,
		Expiry:  m.Expiry,
		Company: m.Company,
	}
}

type UpdateMedicine struct {
	Name    string          `json:"name"    validate:"required"`
	Price   decimal.Decimal `json:"price"   validate:"price"`
	Stock   int32           `json:"stock"   validate:"gte=0"`
	Expiry  string          `json:"expiry"`
	Company string          `json:"company"`
}

func (m UpdateMedicine) Fields() repository.MedicineFields {
	return repository.MedicineFields{
		Name:    m.Name,
		Price:   m.Price,
		Stock:   m.Stock,
		Expiry:  m.Expiry,
		Company: m.Company,
	}
}
