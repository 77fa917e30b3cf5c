package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/medstore/internal/common/validate"
	inErrors "github.com/Alturino/medstore/internal/errors"
	"github.com/Alturino/medstore/internal/log"
)

// decodeRequestBody decodes the json body into dst and validates it. Both
// failures are reported as ErrInvalidMedicine so they map to 400.
func decodeRequestBody(c context.Context, r *http.Request, dst interface{}) error {
	logger := zerolog.Ctx(c).With().Str(log.KeyProcess, "decoding request body").Logger()

	logger.Trace().Msg("decoding request body")
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: failed decoding request body with error=%w", inErrors.ErrInvalidMedicine, err)
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	if err := validate.New().StructCtx(c, dst); err != nil {
		return fmt.Errorf("%w: failed validating request body with error=%w", inErrors.ErrInvalidMedicine, err)
	}
	logger.Trace().Msg("validated request body")
	return nil
}

func pathInt(r *http.Request, name string, bitSize int) (int64, error) {
	raw := mux.Vars(r)[name]
	v, err := strconv.ParseInt(raw, 10, bitSize)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s=%q", inErrors.ErrInvalidSelection, name, raw)
	}
	return v, nil
}
