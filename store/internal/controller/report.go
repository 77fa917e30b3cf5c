package controller

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inHttp "github.com/Alturino/medstore/internal/http"
	"github.com/Alturino/medstore/internal/log"
	"github.com/Alturino/medstore/internal/middleware"
	inOtel "github.com/Alturino/medstore/internal/otel"
	"github.com/Alturino/medstore/internal/service"
	"github.com/Alturino/medstore/store/response"
)

type ReportController struct {
	service *service.StoreService
}

func AttachReportController(mux *mux.Router, service *service.StoreService) {
	controller := ReportController{service: service}

	router := mux.PathPrefix("/reports").Subrouter()
	router.Use(middleware.RecoverPanic)
	router.HandleFunc("/inventory.csv", controller.ExportCSV).Methods(http.MethodGet)
	router.HandleFunc("/inventory.csv", controller.ImportCSV).Methods(http.MethodPost)
	router.HandleFunc("/inventory.xlsx", controller.ExportXLSX).Methods(http.MethodGet)
}

func (p ReportController) ExportCSV(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ReportController ExportCSV")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ReportController ExportCSV").
		Logger()

	c = logger.WithContext(c)
	buf := &bytes.Buffer{}
	if err := p.service.ExportCSV(c, buf); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	w.Header().Set(inHttp.KEY_HEADER_CONTENT_TYPE, inHttp.VALUE_HEADER_TEXT_CSV)
	w.Header().Set(inHttp.KEY_HEADER_CONTENT_DISPOSITION, `attachment; filename="inventory.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
}

func (p ReportController) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ReportController ExportXLSX")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ReportController ExportXLSX").
		Logger()

	c = logger.WithContext(c)
	buf := &bytes.Buffer{}
	if err := p.service.ExportXLSX(c, buf); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	w.Header().Set(inHttp.KEY_HEADER_CONTENT_TYPE, inHttp.VALUE_HEADER_XLSX)
	w.Header().Set(inHttp.KEY_HEADER_CONTENT_DISPOSITION, `attachment; filename="inventory.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
}

func (p ReportController) ImportCSV(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ReportController ImportCSV")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ReportController ImportCSV").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "importing csv").Logger()
	logger.Info().Msg("importing csv")
	c = logger.WithContext(c)
	result, err := p.service.ImportCSV(c, r.Body)
	if err != nil {
		err = fmt.Errorf("failed importing csv with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int(log.KeyMedicines, result.Imported).Msg("imported csv")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully imported csv",
		"data":       map[string]interface{}{"import": response.FromImport(result)},
	})
}
