package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/medstore/internal/cart"
	"github.com/Alturino/medstore/internal/log"
	inOtel "github.com/Alturino/medstore/internal/otel"
)

type CartView struct {
	Items []cart.Item     `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (s *StoreService) cartViewLocked() CartView {
	return CartView{Items: s.cart.Items(), Total: s.cart.Total()}
}

func (s *StoreService) AddToCart(c context.Context, medicineID int32, qty int32) (CartView, error) {
	c, span := inOtel.Tracer.Start(c, "StoreService AddToCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService AddToCart").
		Int32(log.KeyMedicineID, medicineID).
		Int32(log.KeyQuantity, qty).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	logger = logger.With().Str(log.KeyProcess, "adding medicine to cart").Logger()
	logger.Trace().Msg("adding medicine to cart")
	span.AddEvent("adding medicine to cart")
	if err := s.cart.Add(s.catalog, medicineID, qty); err != nil {
		err = fmt.Errorf("failed adding medicine to cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return s.cartViewLocked(), err
	}
	s.updateGaugesLocked()

	view := s.cartViewLocked()
	span.AddEvent("added medicine to cart")
	logger.Info().
		Int(log.KeyCartItems, len(view.Items)).
		Str(log.KeyCartTotal, view.Total.String()).
		Msg("added medicine to cart")
	return view, nil
}

func (s *StoreService) RemoveFromCart(c context.Context, index int) (cart.Item, error) {
	c, span := inOtel.Tracer.Start(c, "StoreService RemoveFromCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService RemoveFromCart").
		Int(log.KeyCartIndex, index).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.cart.Remove(index)
	if err != nil {
		err = fmt.Errorf("failed removing cart line with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return cart.Item{}, err
	}
	s.updateGaugesLocked()

	logger.Info().Int32(log.KeyMedicineID, removed.MedicineID).Msg("removed cart line")
	return removed, nil
}

func (s *StoreService) Cart(c context.Context) CartView {
	_, span := inOtel.Tracer.Start(c, "StoreService Cart")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartViewLocked()
}

func (s *StoreService) ClearCart(c context.Context) {
	c, span := inOtel.Tracer.Start(c, "StoreService ClearCart")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	s.updateGaugesLocked()
	zerolog.Ctx(c).Info().Str(log.KeyTag, "StoreService ClearCart").Msg("cleared cart")
}
