// Package report converts the catalog to and from spreadsheet formats and
// builds the expiry report.
package report

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/Alturino/medstore/internal/common/validate"
	inErrors "github.com/Alturino/medstore/internal/errors"
	"github.com/Alturino/medstore/internal/repository"
)

type MedicineRow struct {
	ID      int32  `csv:"id"`
	Name    string `csv:"name"    validate:"required"`
	Price   string `csv:"price"   validate:"required,price"`
	Stock   int32  `csv:"stock"   validate:"gte=0"`
	Expiry  string `csv:"expiry"`
	Company string `csv:"company"`
}

func RowFromMedicine(m repository.Medicine) MedicineRow {
	return MedicineRow{
		ID:      m.ID,
		Name:    m.Name,
		Price:   m.Price.String(),
		Stock:   m.Stock,
		Expiry:  m.Expiry,
		Company: m.Company,
	}
}

func (r MedicineRow) Medicine() (repository.Medicine, error) {
	if err := validate.New().Struct(r); err != nil {
		return repository.Medicine{}, fmt.Errorf("%w: %w", inErrors.ErrInvalidMedicine, err)
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return repository.Medicine{}, fmt.Errorf("%w: price=%q: %w", inErrors.ErrInvalidMedicine, r.Price, err)
	}
	return repository.Medicine{
		ID:      r.ID,
		Name:    r.Name,
		Price:   price,
		Stock:   r.Stock,
		Expiry:  r.Expiry,
		Company: r.Company,
	}, nil
}

func WriteCSV(w io.Writer, medicines []repository.Medicine) error {
	rows := make([]MedicineRow, 0, len(medicines))
	for _, m := range medicines {
		rows = append(rows, RowFromMedicine(m))
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed writing csv with error=%w", err)
	}
	return nil
}

// RowError describes one CSV row that could not be used. Line is the 1-based
// line number in the file, counting the header.
type RowError struct {
	Line int   `json:"line"`
	ID   int32 `json:"id"`
	Err  error `json:"-"`
}

func (e RowError) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e RowError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("line=%d id=%d", e.Line, e.ID)
	}
	return fmt.Sprintf("line=%d id=%d: %s", e.Line, e.ID, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

type ParsedRow struct {
	Line     int
	Medicine repository.Medicine
}

// ReadCSV parses medicines from r. Rows that fail validation are reported
// in rowErrs and left out of parsed.
func ReadCSV(r io.Reader) (parsed []ParsedRow, rowErrs []RowError, err error) {
	rows := []MedicineRow{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, fmt.Errorf("%w: failed reading csv with error=%w", inErrors.ErrInvalidMedicine, err)
	}

	parsed = make([]ParsedRow, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		m, err := row.Medicine()
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, ID: row.ID, Err: err})
			continue
		}
		parsed = append(parsed, ParsedRow{Line: line, Medicine: m})
	}
	return parsed, rowErrs, nil
}
