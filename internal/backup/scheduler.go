package backup

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Alturino/medstore/internal/common/constants"
	"github.com/Alturino/medstore/internal/log"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Runner performs one backup of the given kind. The store service satisfies
// it so that scheduled backups go through the same locking and metrics as
// manual ones.
type Runner interface {
	Backup(c context.Context, kind string) (string, error)
}

type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers a Scheduled backup on spec, e.g. "@daily" or
// "0 30 2 * * *".
func NewScheduler(c context.Context, spec string, runner Runner) (*Scheduler, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.APP_BACKUP_SCHEDULER).
		Str(log.KeyTag, "backup NewScheduler").
		Str("schedule", spec).
		Logger()

	sched := cron.New(cron.WithParser(cronParser))
	_, err := sched.AddFunc(spec, func() {
		c := logger.WithContext(context.Background())
		path, err := runner.Backup(c, KindScheduled)
		if err != nil {
			logger.Warn().Err(err).Msg("scheduled backup failed")
			return
		}
		logger.Info().Str(log.KeyBackupPath, path).Msg("scheduled backup created")
	})
	if err != nil {
		err = fmt.Errorf("failed parsing backup schedule=%s with error=%w", spec, err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	return &Scheduler{cron: sched}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running backup to finish.
func (s *Scheduler) Stop(c context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-c.Done():
		return c.Err()
	}
}
