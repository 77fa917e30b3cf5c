package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/medstore/internal/errors"
	"github.com/Alturino/medstore/internal/otel"
)

func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	header map[string]string,
	body map[string]interface{},
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str("tag", "WriteJsonResponse").Logger()

	w.Header().Set(KEY_HEADER_CONTENT_TYPE, VALUE_HEADER_APPLICATION_JSON)
	for k, v := range header {
		w.Header().Add(k, v)
	}

	if v, ok := body["statusCode"]; ok {
		w.WriteHeader(v.(int))
	}

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
}

// WriteErrorResponse writes the failed envelope with the status code that
// matches err.
func WriteErrorResponse(c context.Context, w http.ResponseWriter, err error) {
	WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": StatusCode(err),
		"message":    err.Error(),
	})
}

func StatusCode(err error) int {
	switch {
	case errors.Is(err, inErrors.ErrDuplicateId),
		errors.Is(err, inErrors.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, inErrors.ErrMedicineNotFound):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrInvalidSelection),
		errors.Is(err, inErrors.ErrInvalidQuantity),
		errors.Is(err, inErrors.ErrInvalidMedicine),
		errors.Is(err, inErrors.ErrInvalidBackupKind):
		return http.StatusBadRequest
	case errors.Is(err, inErrors.ErrBackupSourceMissing),
		errors.Is(err, inErrors.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
