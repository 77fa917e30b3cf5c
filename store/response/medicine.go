package response

import (
	"github.com/shopspring/decimal"
)

type Medicine struct {
	ID       int32           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int32           `json:"stock"`
	Expiry   string          `json:"expiry"`
	Company  string          `json:"company"`
	LowStock bool            `json:"low_stock"`
}

type CartItem struct {
	Index      int             `json:"index"`
	MedicineID int32           `json:"medicine_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int32           `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type RejectedRow struct {
	Line    int    `json:"line"`
	ID      int32  `json:"id"`
	Message string `json:"message"`
}

type Import struct {
	Imported int           `json:"imported"`
	Rejected []RejectedRow `json:"rejected"`
}
