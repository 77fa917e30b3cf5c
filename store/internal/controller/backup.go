package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/medstore/internal/backup"
	inHttp "github.com/Alturino/medstore/internal/http"
	"github.com/Alturino/medstore/internal/log"
	"github.com/Alturino/medstore/internal/middleware"
	inOtel "github.com/Alturino/medstore/internal/otel"
	"github.com/Alturino/medstore/internal/service"
	"github.com/Alturino/medstore/store/pkg/request"
)

type BackupController struct {
	service *service.StoreService
}

func AttachBackupController(mux *mux.Router, service *service.StoreService) {
	controller := BackupController{service: service}

	router := mux.PathPrefix("/backups").Subrouter()
	router.Use(middleware.RecoverPanic)
	router.HandleFunc("", controller.FindBackups).Methods(http.MethodGet)
	router.HandleFunc("", controller.InsertBackup).Methods(http.MethodPost)
}

func (b BackupController) FindBackups(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "BackupController FindBackups")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "BackupController FindBackups").
		Logger()

	c = logger.WithContext(c)
	entries, err := b.service.Backups(c)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "successfully listed backups",
		"data":       map[string]interface{}{"backups": entries},
	})
}

// InsertBackup creates a Manual backup unless the body names another kind.
// An empty body is accepted.
func (b BackupController) InsertBackup(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "BackupController InsertBackup")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "BackupController InsertBackup").
		Logger()

	c = logger.WithContext(c)
	reqBody := request.Backup{}
	if err := decodeRequestBody(c, r, &reqBody); err != nil && !errors.Is(err, io.EOF) {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	if reqBody.Kind == "" {
		reqBody.Kind = backup.KindManual
	}

	logger = logger.With().
		Str(log.KeyProcess, "creating backup").
		Str(log.KeyBackupKind, reqBody.Kind).
		Logger()
	logger.Info().Msg("creating backup")
	c = logger.WithContext(c)
	path, err := b.service.Backup(c, reqBody.Kind)
	if err != nil {
		err = fmt.Errorf("failed creating backup with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Str(log.KeyBackupPath, path).Msg("created backup")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "successfully created backup",
		"data":       map[string]interface{}{"path": path},
	})
}
