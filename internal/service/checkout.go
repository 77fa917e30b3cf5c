package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	pkgErrors "github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Alturino/medstore/internal/cart"
	"github.com/Alturino/medstore/internal/checkout"
	inErrors "github.com/Alturino/medstore/internal/errors"
	"github.com/Alturino/medstore/internal/log"
	"github.com/Alturino/medstore/internal/metrics"
	inOtel "github.com/Alturino/medstore/internal/otel"
)

// Checkout commits the cart: stock is decremented for every line, the
// catalog is persisted and the cart is cleared. When persisting fails the
// catalog is rolled back and the cart is kept so the sale can be retried.
// An empty cart is a no-op reported with ok == false.
func (s *StoreService) Checkout(c context.Context) (receipt checkout.Receipt, ok bool, err error) {
	c, span := inOtel.Tracer.Start(c, "StoreService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService Checkout").
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.IsEmpty() {
		logger.Info().Msg("cart is empty, nothing to checkout")
		return checkout.Receipt{}, false, nil
	}

	logger = logger.With().Str(log.KeyProcess, "committing cart").Logger()
	logger.Trace().Msg("committing cart")
	span.AddEvent("committing cart")
	snapshot := s.catalog.All()
	items := s.cart.Items()
	receipt, ok = checkout.Commit(s.catalog, items, s.checkoutOpts)
	if !ok {
		return checkout.Receipt{}, false, nil
	}
	logger = logger.With().Str(log.KeyReceiptID, receipt.ID.String()).Logger()

	if err := s.persistLocked(c); err != nil {
		_ = s.catalog.Replace(snapshot)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return checkout.Receipt{}, false, err
	}
	s.cart.Clear()
	s.updateGaugesLocked()

	metrics.Checkouts.Inc()
	metrics.UnitsSold.Add(float64(unitsSold(items)))
	metrics.Revenue.Add(receipt.Total.InexactFloat64())

	span.AddEvent("committed cart")
	logger.Info().Str(log.KeyCartTotal, receipt.Total.String()).Msg("committed cart")

	if s.receiptDir != "" {
		path, err := s.writeReceipt(receipt)
		if err != nil {
			// the sale is already persisted, so a lost receipt copy is only logged
			inOtel.RecordError(err, span)
			logger.Warn().Err(err).Msg(err.Error())
		} else {
			logger.Info().Str(log.KeyFilePath, path).Msg("wrote receipt file")
		}
	}
	return receipt, true, nil
}

// unitsSold sums in int64, several lines near MaxInt32 would overflow int32.
func unitsSold(items []cart.Item) int64 {
	var units int64
	for _, item := range items {
		units += int64(item.Quantity)
	}
	return units
}

func (s *StoreService) writeReceipt(receipt checkout.Receipt) (string, error) {
	if err := os.MkdirAll(s.receiptDir, 0o755); err != nil {
		return "", pkgErrors.WithStack(fmt.Errorf(
			"%w: failed creating receipt dir=%s with error=%w", inErrors.ErrPersistenceUnavailable, s.receiptDir, err,
		))
	}
	path := filepath.Join(s.receiptDir, "receipt_"+receipt.ID.String()+".txt")
	if err := os.WriteFile(path, []byte(receipt.Text()), 0o644); err != nil {
		return "", pkgErrors.WithStack(fmt.Errorf(
			"%w: failed writing receipt=%s with error=%w", inErrors.ErrPersistenceUnavailable, path, err,
		))
	}
	return path, nil
}
