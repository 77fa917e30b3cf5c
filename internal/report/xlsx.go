package report

import (
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize"

	"github.com/Alturino/medstore/internal/repository"
)

const inventorySheet = "Inventory"

var xlsxHeader = []string{"ID", "Name", "Price", "Stock", "Expiry", "Company", "Low Stock"}

func cell(col int, row int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row)
}

// WriteXLSX writes the catalog as a one-sheet workbook.
func WriteXLSX(w io.Writer, medicines []repository.Medicine) error {
	xlsx := excelize.NewFile()
	xlsx.SetSheetName("Sheet1", inventorySheet)

	for col, title := range xlsxHeader {
		xlsx.SetCellValue(inventorySheet, cell(col, 1), title)
	}
	for i, m := range medicines {
		row := i + 2
		xlsx.SetCellValue(inventorySheet, cell(0, row), m.ID)
		xlsx.SetCellValue(inventorySheet, cell(1, row), m.Name)
		xlsx.SetCellValue(inventorySheet, cell(2, row), m.Price.InexactFloat64())
		xlsx.SetCellValue(inventorySheet, cell(3, row), m.Stock)
		xlsx.SetCellValue(inventorySheet, cell(4, row), m.Expiry)
		xlsx.SetCellValue(inventorySheet, cell(5, row), m.Company)
		xlsx.SetCellValue(inventorySheet, cell(6, row), m.IsLowStock())
	}

	if err := xlsx.Write(w); err != nil {
		return fmt.Errorf("failed writing xlsx with error=%w", err)
	}
	return nil
}
