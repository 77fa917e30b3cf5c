package controller

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inHttp "github.com/Alturino/medstore/internal/http"
	"github.com/Alturino/medstore/internal/log"
	"github.com/Alturino/medstore/internal/middleware"
	inOtel "github.com/Alturino/medstore/internal/otel"
	"github.com/Alturino/medstore/internal/service"
	"github.com/Alturino/medstore/store/pkg/request"
	"github.com/Alturino/medstore/store/response"
)

type CartController struct {
	service *service.StoreService
}

func AttachCartController(mux *mux.Router, service *service.StoreService) {
	controller := CartController{service: service}

	router := mux.PathPrefix("/cart").Subrouter()
	router.Use(middleware.RecoverPanic)
	router.HandleFunc("", controller.FindCart).Methods(http.MethodGet)
	router.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	router.HandleFunc("/items", controller.InsertCartItem).Methods(http.MethodPost)
	router.HandleFunc("/items/{index:[0-9]+}", controller.RemoveCartItem).Methods(http.MethodDelete)
	router.HandleFunc("/checkout", controller.CheckoutCart).Methods(http.MethodPost)
}

func (t CartController) FindCart(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "CartController FindCart")
	defer span.End()

	view := t.service.Cart(c)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully found cart",
		"data":       map[string]interface{}{"cart": response.FromCart(view)},
	})
}

func (t CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	t.service.ClearCart(c)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully cleared cart",
	})
}

func (t CartController) InsertCartItem(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "CartController InsertCartItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController InsertCartItem").
		Logger()

	c = logger.WithContext(c)
	reqBody := request.CartItem{}
	if err := decodeRequestBody(c, r, &reqBody); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "adding medicine to cart").
		Int32(log.KeyMedicineID, reqBody.MedicineID).
		Int32(log.KeyQuantity, reqBody.Quantity).
		Logger()
	logger.Info().Msg("adding medicine to cart")
	c = logger.WithContext(c)
	view, err := t.service.AddToCart(c, reqBody.MedicineID, reqBody.Quantity)
	if err != nil {
		err = fmt.Errorf("failed adding medicine to cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("added medicine to cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully added medicine to cart",
		"data":       map[string]interface{}{"cart": response.FromCart(view)},
	})
}

func (t CartController) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "CartController RemoveCartItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveCartItem").
		Logger()

	index, err := pathInt(r, "index", 0)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	c = logger.WithContext(c)
	removed, err := t.service.RemoveFromCart(c, int(index))
	if err != nil {
		err = fmt.Errorf("failed removing cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully removed cart item",
		"data": map[string]interface{}{
			"removed": removed,
			"cart":    response.FromCart(t.service.Cart(c)),
		},
	})
}

func (t CartController) CheckoutCart(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "CartController CheckoutCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController CheckoutCart").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "checking out cart").Logger()
	logger.Info().Msg("checking out cart")
	c = logger.WithContext(c)
	receipt, ok, err := t.service.Checkout(c)
	if err != nil {
		err = fmt.Errorf("failed checking out cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	if !ok {
		logger.Info().Msg("cart is empty")
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "success",
			"statusCode": http.StatusOK,
			"message":    "cart is empty, nothing to checkout",
		})
		return
	}
	logger.Info().Str(log.KeyReceiptID, receipt.ID.String()).Msg("checked out cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully checked out cart",
		"data": map[string]interface{}{
			"receipt": receipt,
			"text":    receipt.Text(),
		},
	})
}
