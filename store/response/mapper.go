package response

import (
	"github.com/Alturino/medstore/internal/repository"
	"github.com/Alturino/medstore/internal/service"
)

func FromMedicine(m repository.Medicine) Medicine {
	return Medicine{
		ID:       m.ID,
		Name:     m.Name,
		Price:    m.Price,
		Stock:    m.Stock,
		Expiry:   m.Expiry,
		Company:  m.Company,
		LowStock: m.IsLowStock(),
	}
}

func FromMedicines(medicines []repository.Medicine) []Medicine {
	result := make([]Medicine, 0, len(medicines))
	for _, m := range medicines {
		result = append(result, FromMedicine(m))
	}
	return result
}

func FromCart(view service.CartView) Cart {
	items := make([]CartItem, 0, len(view.Items))
	for i, item := range view.Items {
		items = append(items, CartItem{
			Index:      i,
			MedicineID: item.MedicineID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   item.Quantity,
			Subtotal:   item.Subtotal(),
		})
	}
	return Cart{Items: items, Total: view.Total}
}

func FromImport(result service.ImportResult) Import {
	rejected := make([]RejectedRow, 0, len(result.Rejected))
	for _, row := range result.Rejected {
		rejected = append(rejected, RejectedRow{Line: row.Line, ID: row.ID, Message: row.Message()})
	}
	return Import{Imported: result.Imported, Rejected: rejected}
}
