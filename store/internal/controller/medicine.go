package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	inHttp "github.com/Alturino/medstore/internal/http"
	"github.com/Alturino/medstore/internal/log"
	"github.com/Alturino/medstore/internal/middleware"
	inOtel "github.com/Alturino/medstore/internal/otel"
	"github.com/Alturino/medstore/internal/service"
	"github.com/Alturino/medstore/store/pkg/request"
	"github.com/Alturino/medstore/store/response"
)

const defaultExpiryDays = 30

type MedicineController struct {
	service *service.StoreService
}

func AttachMedicineController(mux *mux.Router, service *service.StoreService) {
	controller := MedicineController{service: service}

	router := mux.PathPrefix("/medicines").Subrouter()
	router.Use(middleware.RecoverPanic)
	router.HandleFunc("", controller.SearchMedicines).Methods(http.MethodGet)
	router.HandleFunc("", controller.InsertMedicine).Methods(http.MethodPost)
	router.HandleFunc("/low-stock", controller.LowStock).Methods(http.MethodGet)
	router.HandleFunc("/expiring", controller.Expiring).Methods(http.MethodGet)
	router.HandleFunc("/{medicineId:-?[0-9]+}", controller.FindMedicineById).Methods(http.MethodGet)
	router.HandleFunc("/{medicineId:-?[0-9]+}", controller.UpdateMedicine).Methods(http.MethodPut)
	router.HandleFunc("/{medicineId:-?[0-9]+}", controller.RemoveMedicine).Methods(http.MethodDelete)
}

func (m MedicineController) SearchMedicines(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "MedicineController SearchMedicines")
	defer span.End()

	query := r.URL.Query().Get("q")
	span.SetAttributes(attribute.String(log.KeyQuery, query))
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MedicineController SearchMedicines").
		Str(log.KeyQuery, query).
		Logger()

	c = logger.WithContext(c)
	medicines := m.service.SearchMedicines(c, query)
	logger.Info().Int(log.KeyMedicines, len(medicines)).Msg("searched medicines")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully searched medicines",
		"data":       map[string]interface{}{"medicines": response.FromMedicines(medicines)},
	})
}

func (m MedicineController) InsertMedicine(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "MedicineController InsertMedicine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MedicineController InsertMedicine").
		Logger()

	c = logger.WithContext(c)
	reqBody := request.Medicine{}
	if err := decodeRequestBody(c, r, &reqBody); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "inserting medicine").Logger()
	logger.Info().Msg("inserting medicine")
	c = logger.WithContext(c)
	medicine := reqBody.Medicine()
	if err := m.service.AddMedicine(c, medicine); err != nil {
		err = fmt.Errorf("failed inserting medicine with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("inserted medicine")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "successfully inserted medicine",
		"data":       map[string]interface{}{"medicine": response.FromMedicine(medicine)},
	})
}

func (m MedicineController) FindMedicineById(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "MedicineController FindMedicineById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MedicineController FindMedicineById").
		Logger()

	id, err := pathInt(r, "medicineId", 32)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	span.SetAttributes(attribute.Int64(log.KeyMedicineID, id))

	c = logger.WithContext(c)
	medicine, err := m.service.FindMedicine(c, int32(id))
	if err != nil {
		err = fmt.Errorf("failed finding medicine with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully found medicine",
		"data":       map[string]interface{}{"medicine": response.FromMedicine(medicine)},
	})
}

func (m MedicineController) UpdateMedicine(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "MedicineController UpdateMedicine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MedicineController UpdateMedicine").
		Logger()

	id, err := pathInt(r, "medicineId", 32)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Int64(log.KeyMedicineID, id).Logger()

	c = logger.WithContext(c)
	reqBody := request.UpdateMedicine{}
	if err := decodeRequestBody(c, r, &reqBody); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "updating medicine").Logger()
	logger.Info().Msg("updating medicine")
	c = logger.WithContext(c)
	medicine, err := m.service.UpdateMedicine(c, int32(id), reqBody.Fields())
	if err != nil {
		err = fmt.Errorf("failed updating medicine with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("updated medicine")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully updated medicine",
		"data":       map[string]interface{}{"medicine": response.FromMedicine(medicine)},
	})
}

func (m MedicineController) RemoveMedicine(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "MedicineController RemoveMedicine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MedicineController RemoveMedicine").
		Logger()

	id, err := pathInt(r, "medicineId", 32)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Int64(log.KeyMedicineID, id).Logger()

	logger.Info().Msg("removing medicine")
	c = logger.WithContext(c)
	if err := m.service.DeleteMedicine(c, int32(id)); err != nil {
		err = fmt.Errorf("failed removing medicine with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("removed medicine")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully removed medicine",
	})
}

func (m MedicineController) LowStock(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "MedicineController LowStock")
	defer span.End()

	medicines := m.service.LowStock(c)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully found low stock medicines",
		"data":       map[string]interface{}{"medicines": response.FromMedicines(medicines)},
	})
}

func (m MedicineController) Expiring(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "MedicineController Expiring")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "MedicineController Expiring").
		Logger()

	days := defaultExpiryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			err = fmt.Errorf("invalid days=%q", raw)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusBadRequest,
				"message":    err.Error(),
			})
			return
		}
		days = parsed
	}

	c = logger.WithContext(c)
	result := m.service.ExpiringMedicines(c, time.Duration(days)*24*time.Hour)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully built expiry report",
		"data":       map[string]interface{}{"days": days, "report": result},
	})
}
