package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alturino/medstore/internal/backup"
	"github.com/Alturino/medstore/internal/log"
	"github.com/Alturino/medstore/internal/metrics"
	inOtel "github.com/Alturino/medstore/internal/otel"
)

// Backup copies the current catalog file. It holds the service lock so a
// backup never observes a half written catalog, which makes it safe to call
// from the backup scheduler.
func (s *StoreService) Backup(c context.Context, kind string) (string, error) {
	c, span := inOtel.Tracer.Start(c, "StoreService Backup")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService Backup").
		Str(log.KeyBackupKind, kind).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	logger = logger.With().Str(log.KeyProcess, "creating backup").Logger()
	logger.Trace().Msg("creating backup")
	span.AddEvent("creating backup")
	label := backupKindLabel(kind)
	path, err := s.backup.Create(kind)
	if err != nil {
		metrics.Backups.WithLabelValues(label, "failure").Inc()
		err = fmt.Errorf("failed creating %s backup with error=%w", kind, err)
		inOtel.RecordError(err, span)
		if kind == backup.KindAuto {
			logger.Warn().Err(err).Msg(err.Error())
		} else {
			logger.Error().Err(err).Msg(err.Error())
		}
		return "", err
	}
	metrics.Backups.WithLabelValues(label, "success").Inc()

	span.AddEvent("created backup")
	logger.Info().Str(log.KeyBackupPath, path).Msg("created backup")
	return path, nil
}

// backupKindLabel keeps the metric label set bounded, kind comes from clients.
func backupKindLabel(kind string) string {
	switch {
	case kind == backup.KindAuto, kind == backup.KindManual, kind == backup.KindScheduled:
		return kind
	case backup.ValidKind(kind):
		return metrics.OtherBackupKind
	default:
		return metrics.InvalidBackupKind
	}
}

func (s *StoreService) Backups(c context.Context) ([]backup.Entry, error) {
	c, span := inOtel.Tracer.Start(c, "StoreService Backups")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StoreService Backups").
		Logger()

	entries, err := s.backup.List()
	if err != nil {
		err = fmt.Errorf("failed listing backups with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return entries, nil
}
