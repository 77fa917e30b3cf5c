package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	receiptRule       = "---------------------------------"
	receiptTimeLayout = "2006-01-02 15:04"
	receiptNameWidth  = 15
)

type ReceiptLine struct {
	MedicineID int32           `json:"medicine_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int32           `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

type Receipt struct {
	ID       uuid.UUID       `json:"id"`
	IssuedAt time.Time       `json:"issued_at"`
	Store    string          `json:"store"`
	Currency string          `json:"currency"`
	Lines    []ReceiptLine   `json:"lines"`
	Total    decimal.Decimal `json:"total"`
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func padRight(s string, n int) string {
	if gap := n - len([]rune(s)); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// Text renders the fixed-width printable receipt.
func (r Receipt) Text() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "      %s RECEIPT\n", r.Store)
	b.WriteString(receiptRule + "\n")
	fmt.Fprintf(&b, "Receipt: %s\n", r.ID)
	fmt.Fprintf(&b, "Date: %s\n", r.IssuedAt.Format(receiptTimeLayout))
	b.WriteString(receiptRule + "\n")
	fmt.Fprintf(&b, "%-15s %6s %4s %7s\n", "ITEM", "PRICE", "QTY", "TOTAL")
	b.WriteString(receiptRule + "\n")
	for _, line := range r.Lines {
		fmt.Fprintf(
			&b,
			"%s %6s %4d %7s\n",
			padRight(truncate(line.Name, receiptNameWidth), receiptNameWidth),
			line.Price.StringFixed(0),
			line.Quantity,
			line.Subtotal.StringFixed(1),
		)
	}
	b.WriteString(receiptRule + "\n")
	fmt.Fprintf(&b, "GRAND TOTAL: %s %s\n", r.Currency, r.Total.StringFixed(2))
	b.WriteString(receiptRule + "\n")
	b.WriteString("   Thank you for your purchase!\n")
	return b.String()
}
