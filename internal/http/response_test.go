package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/Alturino/medstore/internal/errors"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected int
	}{
		{name: "duplicate id", input: inErrors.ErrDuplicateId, expected: http.StatusConflict},
		{name: "insufficient stock", input: inErrors.ErrInsufficientStock, expected: http.StatusConflict},
		{name: "not found", input: inErrors.ErrMedicineNotFound, expected: http.StatusNotFound},
		{name: "selection", input: inErrors.ErrInvalidSelection, expected: http.StatusBadRequest},
		{name: "quantity", input: inErrors.ErrInvalidQuantity, expected: http.StatusBadRequest},
		{name: "invalid medicine", input: inErrors.ErrInvalidMedicine, expected: http.StatusBadRequest},
		{name: "persistence", input: inErrors.ErrPersistenceUnavailable, expected: http.StatusServiceUnavailable},
		{
			name:     "wrapped not found",
			input:    fmt.Errorf("failed finding medicine with error=%w", inErrors.ErrMedicineNotFound),
			expected: http.StatusNotFound,
		},
		{name: "unknown", input: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, StatusCode(test.input))
		})
	}
}

func TestWriteErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteErrorResponse(context.Background(), rec, fmt.Errorf("id=7: %w", inErrors.ErrMedicineNotFound))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, VALUE_HEADER_APPLICATION_JSON, rec.Header().Get(KEY_HEADER_CONTENT_TYPE))
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed", body["status"])
	assert.EqualValues(t, http.StatusNotFound, body["statusCode"])
	assert.Equal(t, "id=7: medicine not found", body["message"])
}
