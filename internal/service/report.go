package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/Alturino/medstore/internal/log"
	inOtel "github.com/Alturino/medstore/internal/otel"
	"github.com/Alturino/medstore/internal/report"
)

type ImportResult struct {
	Imported int               `json:"imported"`
	Rejected []report.RowError `json:"rejected"`
}

func (s *StoreService) ExportCSV(c context.Context, w io.Writer) error {
	c, span := inOtel.Tracer.Start(c, "StoreService ExportCSV")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService ExportCSV").
		Logger()

	s.mu.Lock()
	medicines := s.catalog.All()
	s.mu.Unlock()

	if err := report.WriteCSV(w, medicines); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Int(log.KeyMedicines, len(medicines)).Msg("exported catalog as csv")
	return nil
}

func (s *StoreService) ExportXLSX(c context.Context, w io.Writer) error {
	c, span := inOtel.Tracer.Start(c, "StoreService ExportXLSX")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService ExportXLSX").
		Logger()

	s.mu.Lock()
	medicines := s.catalog.All()
	s.mu.Unlock()

	if err := report.WriteXLSX(w, medicines); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Int(log.KeyMedicines, len(medicines)).Msg("exported catalog as xlsx")
	return nil
}

// ImportCSV adds every valid row of r to the catalog and persists once.
// Rows that fail validation or reuse an existing id are rejected one by
// one; the rest are still imported. If the catalog cannot be saved nothing
// is imported.
func (s *StoreService) ImportCSV(c context.Context, r io.Reader) (ImportResult, error) {
	c, span := inOtel.Tracer.Start(c, "StoreService ImportCSV")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService ImportCSV").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "reading csv").Logger()
	logger.Trace().Msg("reading csv")
	parsed, rejected, err := report.ReadCSV(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return ImportResult{}, err
	}
	result := ImportResult{Rejected: rejected}
	if result.Rejected == nil {
		result.Rejected = []report.RowError{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger = logger.With().Str(log.KeyProcess, "adding medicines to catalog").Logger()
	logger.Trace().Msg("adding medicines to catalog")
	snapshot := s.catalog.All()
	for _, row := range parsed {
		if err := s.catalog.Add(row.Medicine); err != nil {
			result.Rejected = append(result.Rejected, report.RowError{
				Line: row.Line,
				ID:   row.Medicine.ID,
				Err:  err,
			})
			continue
		}
		result.Imported++
	}

	if result.Imported > 0 {
		if err := s.persistLocked(c); err != nil {
			_ = s.catalog.Replace(snapshot)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return ImportResult{}, err
		}
	}
	s.updateGaugesLocked()

	if len(result.Rejected) > 0 {
		logger.Warn().
			Err(errors.Join(rowErrors(result.Rejected)...)).
			Msg(fmt.Sprintf("rejected %d csv rows", len(result.Rejected)))
	}
	logger.Info().Int(log.KeyMedicines, result.Imported).Msg("imported medicines from csv")
	return result, nil
}

func rowErrors(rows []report.RowError) []error {
	errs := make([]error, 0, len(rows))
	for _, row := range rows {
		errs = append(errs, row)
	}
	return errs
}
