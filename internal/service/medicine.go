package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alturino/medstore/internal/common/validate"
	inErrors "github.com/Alturino/medstore/internal/errors"
	"github.com/Alturino/medstore/internal/log"
	inOtel "github.com/Alturino/medstore/internal/otel"
	"github.com/Alturino/medstore/internal/report"
	"github.com/Alturino/medstore/internal/repository"
)

func validateMedicine(c context.Context, m repository.Medicine) error {
	if err := validate.New().StructCtx(c, m); err != nil {
		return fmt.Errorf("%w: %w", inErrors.ErrInvalidMedicine, err)
	}
	return nil
}

func (s *StoreService) AddMedicine(c context.Context, m repository.Medicine) error {
	c, span := inOtel.Tracer.Start(c, "StoreService AddMedicine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService AddMedicine").
		Int32(log.KeyMedicineID, m.ID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating medicine").Logger()
	logger.Trace().Msg("validating medicine")
	if err := validateMedicine(c, m); err != nil {
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger = logger.With().Str(log.KeyProcess, "adding medicine to catalog").Logger()
	logger.Trace().Msg("adding medicine to catalog")
	span.AddEvent("adding medicine to catalog")
	if err := s.catalog.Add(m); err != nil {
		err = fmt.Errorf("failed adding medicine with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return err
	}

	if err := s.persistLocked(c); err != nil {
		s.catalog.Delete(m.ID)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	s.updateGaugesLocked()

	span.AddEvent("added medicine to catalog")
	logger.Info().Any(log.KeyMedicine, m).Msg("added medicine to catalog")
	return nil
}

func (s *StoreService) UpdateMedicine(
	c context.Context,
	id int32,
	fields repository.MedicineFields,
) (repository.Medicine, error) {
	c, span := inOtel.Tracer.Start(c, "StoreService UpdateMedicine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService UpdateMedicine").
		Int32(log.KeyMedicineID, id).
		Logger()

	updated := fields.Medicine(id)
	logger = logger.With().Str(log.KeyProcess, "validating medicine").Logger()
	logger.Trace().Msg("validating medicine")
	if err := validateMedicine(c, updated); err != nil {
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return repository.Medicine{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger = logger.With().Str(log.KeyProcess, "updating medicine in catalog").Logger()
	logger.Trace().Msg("updating medicine in catalog")
	span.AddEvent("updating medicine in catalog")
	previous, found := s.catalog.Find(id)
	if !found {
		err := fmt.Errorf("failed updating medicine id=%d with error=%w", id, inErrors.ErrMedicineNotFound)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return repository.Medicine{}, err
	}
	s.catalog.Update(id, fields)

	if err := s.persistLocked(c); err != nil {
		s.catalog.Update(id, previous.Fields())
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return repository.Medicine{}, err
	}
	s.updateGaugesLocked()

	span.AddEvent("updated medicine in catalog")
	logger.Info().Any(log.KeyMedicine, updated).Msg("updated medicine in catalog")
	return updated, nil
}

func (s *StoreService) DeleteMedicine(c context.Context, id int32) error {
	c, span := inOtel.Tracer.Start(c, "StoreService DeleteMedicine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService DeleteMedicine").
		Int32(log.KeyMedicineID, id).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	logger = logger.With().Str(log.KeyProcess, "deleting medicine from catalog").Logger()
	logger.Trace().Msg("deleting medicine from catalog")
	span.AddEvent("deleting medicine from catalog")
	snapshot := s.catalog.All()
	if !s.catalog.Delete(id) {
		err := fmt.Errorf("failed deleting medicine id=%d with error=%w", id, inErrors.ErrMedicineNotFound)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return err
	}

	if err := s.persistLocked(c); err != nil {
		_ = s.catalog.Replace(snapshot)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	s.updateGaugesLocked()

	span.AddEvent("deleted medicine from catalog")
	logger.Info().Msg("deleted medicine from catalog")
	return nil
}

func (s *StoreService) FindMedicine(c context.Context, id int32) (repository.Medicine, error) {
	c, span := inOtel.Tracer.Start(c, "StoreService FindMedicine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService FindMedicine").
		Int32(log.KeyMedicineID, id).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Trace().Msg("finding medicine in catalog")
	m, found := s.catalog.Find(id)
	if !found {
		err := fmt.Errorf("failed finding medicine id=%d with error=%w", id, inErrors.ErrMedicineNotFound)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return repository.Medicine{}, err
	}
	return m, nil
}

// SearchMedicines collects the lazy catalog search while holding the lock,
// so callers never iterate over a catalog another goroutine is mutating.
func (s *StoreService) SearchMedicines(c context.Context, query string) []repository.Medicine {
	c, span := inOtel.Tracer.Start(c, "StoreService SearchMedicines")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService SearchMedicines").
		Str(log.KeyQuery, query).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	result := []repository.Medicine{}
	for m := range s.catalog.Search(query) {
		result = append(result, m)
	}
	logger.Trace().Int(log.KeyMedicines, len(result)).Msg("searched catalog")
	return result
}

func (s *StoreService) Medicines(c context.Context) []repository.Medicine {
	return s.SearchMedicines(c, "")
}

func (s *StoreService) LowStock(c context.Context) []repository.Medicine {
	_, span := inOtel.Tracer.Start(c, "StoreService LowStock")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.LowStock()
}

// ExpiringMedicines reports medicines expired or expiring within window of
// the service clock. Expiry stays free text in the catalog, so entries that
// cannot be parsed as a date are reported separately.
func (s *StoreService) ExpiringMedicines(c context.Context, window time.Duration) report.ExpiryReport {
	c, span := inOtel.Tracer.Start(c, "StoreService ExpiringMedicines")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService ExpiringMedicines").
		Dur("window", window).
		Logger()

	s.mu.Lock()
	medicines := s.catalog.All()
	s.mu.Unlock()

	result := report.Expiring(medicines, s.now(), window)
	logger.Trace().
		Int("expired", len(result.Expired)).
		Int("expiring_soon", len(result.ExpiringSoon)).
		Int("unparseable", len(result.Unparseable)).
		Msg("built expiry report")
	return result
}
