package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/medstore/internal/backup"
	"github.com/Alturino/medstore/internal/cart"
	"github.com/Alturino/medstore/internal/catalog"
	"github.com/Alturino/medstore/internal/checkout"
	"github.com/Alturino/medstore/internal/config"
	inErrors "github.com/Alturino/medstore/internal/errors"
	"github.com/Alturino/medstore/internal/log"
	"github.com/Alturino/medstore/internal/metrics"
	inOtel "github.com/Alturino/medstore/internal/otel"
	"github.com/Alturino/medstore/internal/repository"
)

type Options struct {
	DataFile   string
	BackupDir  string
	StoreName  string
	Currency   string
	ReceiptDir string
	AutoBackup bool
	Now        func() time.Time
	NewID      func() uuid.UUID
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DataFile:   cfg.Store.DataFile,
		BackupDir:  cfg.Backup.Dir,
		StoreName:  cfg.Store.Name,
		Currency:   cfg.Store.Currency,
		ReceiptDir: cfg.Store.ReceiptDir,
		AutoBackup: cfg.Backup.AutoOnStart,
	}
}

// Startup records what happened while the service was opened.
type Startup struct {
	LoadErr        error
	AutoBackupPath string
	AutoBackupErr  error
}

// StoreService is the inventory session: it owns the catalog and the active
// cart and persists the catalog after every change. A single mutex makes
// each operation atomic with respect to the in-memory state.
type StoreService struct {
	mu           sync.Mutex
	catalog      *catalog.Catalog
	cart         *cart.Cart
	file         *repository.CatalogFile
	backup       *backup.Backup
	checkoutOpts checkout.Options
	receiptDir   string
	now          func() time.Time
	startup      Startup
}

// NewStoreService loads the catalog and, when enabled, takes the Auto
// backup. Neither failure is fatal: a catalog that cannot be loaded starts
// empty and both outcomes are kept in Startup.
func NewStoreService(c context.Context, opts Options) *StoreService {
	c, span := inOtel.Tracer.Start(c, "StoreService NewStoreService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService NewStoreService").
		Str(log.KeyDataFile, opts.DataFile).
		Logger()

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	b := backup.New(opts.BackupDir, opts.DataFile)
	b.Now = now

	svc := &StoreService{
		catalog: catalog.New(),
		cart:    cart.New(),
		file:    repository.NewCatalogFile(opts.DataFile),
		backup:  b,
		checkoutOpts: checkout.Options{
			Store:    opts.StoreName,
			Currency: opts.Currency,
			Now:      now,
			NewID:    opts.NewID,
		},
		receiptDir: opts.ReceiptDir,
		now:        now,
	}

	logger = logger.With().Str(log.KeyProcess, "loading catalog").Logger()
	logger.Trace().Msg("loading catalog")
	span.AddEvent("loading catalog")
	medicines, err := svc.file.Load()
	switch {
	case errors.Is(err, inErrors.ErrCatalogNotFound):
		logger.Info().Msg("no catalog file yet, starting with empty catalog")
		svc.startup.LoadErr = err
	case err != nil:
		err = fmt.Errorf("failed loading catalog with error=%w", err)
		inOtel.RecordError(err, span)
		metrics.PersistenceFailures.WithLabelValues("load").Inc()
		logger.Error().Err(err).Msg(err.Error())
		svc.startup.LoadErr = err
	default:
		if err := svc.catalog.Replace(medicines); err != nil {
			err = fmt.Errorf("%w: %w", inErrors.ErrPersistenceUnavailable, err)
			logger.Error().Err(err).Msg(err.Error())
			svc.startup.LoadErr = err
			break
		}
		logger.Info().Int(log.KeyMedicines, svc.catalog.Len()).Msg("loaded catalog")
	}
	svc.updateGaugesLocked()

	if opts.AutoBackup {
		svc.startup.AutoBackupPath, svc.startup.AutoBackupErr = svc.Backup(c, backup.KindAuto)
	}
	return svc
}

func (s *StoreService) Startup() Startup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startup
}

// LoadError is the error met while loading the catalog at startup, nil when
// the file was read successfully.
func (s *StoreService) LoadError() error {
	return s.Startup().LoadErr
}

func (s *StoreService) persistLocked(c context.Context) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyProcess, "saving catalog").
		Str(log.KeyDataFile, s.file.Path).
		Logger()

	logger.Trace().Msg("saving catalog")
	if err := s.file.Save(s.catalog.All()); err != nil {
		metrics.PersistenceFailures.WithLabelValues("save").Inc()
		return fmt.Errorf("failed saving catalog with error=%w", err)
	}
	logger.Trace().Msg("saved catalog")
	return nil
}

func (s *StoreService) updateGaugesLocked() {
	metrics.CatalogMedicines.Set(float64(s.catalog.Len()))
	metrics.LowStockMedicines.Set(float64(len(s.catalog.LowStock())))
	metrics.CartLines.Set(float64(s.cart.Len()))
}
