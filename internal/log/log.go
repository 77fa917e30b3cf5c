package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// InitLogger builds the process logger once. Records go to stderr so that
// stdout stays clean for receipts and exported reports, and to a rotating
// file when filepath is set.
func InitLogger(filepath string, env string, level string) zerolog.Logger {
	once.Do(func() {
		logger = NewLogger(filepath, env, level)
		logger.Info().
			Str(KeyTag, "InitLogger").
			Str(KeyProcess, "InitLogger").
			Msg("finish initiating logging")
	})
	return logger
}

func NewLogger(filepath string, env string, level string) zerolog.Logger {
	zerolog.DurationFieldUnit = time.Microsecond
	zerolog.ErrorFieldName = "error"
	zerolog.ErrorStackFieldName = "stack-trace"
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"
	zerolog.TimestampFieldName = "timestamp"

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	if env == "development" {
		logLevel = zerolog.TraceLevel
	}

	writers := []io.Writer{os.Stderr}
	if filepath != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath,
			MaxSize:    10,
			MaxBackups: 5,
			Compress:   true,
		})
	}
	output := zerolog.MultiLevelWriter(writers...)

	return zerolog.New(output).
		Level(logLevel).
		With().
		Timestamp().
		Caller().
		Stack().
		Int("pid", os.Getpid()).
		Logger()
}
