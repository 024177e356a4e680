package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSize = 10
	maxBack = 5
	maxAge  = 30
)

// NewLogger builds a zerolog logger writing to both stdout and a rotated
// file, tagged with the service name.
func NewLogger(filePath, serviceName string) (zerolog.Logger, error) {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		NoColor:    false,
	}

	var writers []io.Writer
	writers = append(writers, consoleWriter)

	fileRotator := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    maxSize, // megabytes before rotation
		MaxBackups: maxBack,
		MaxAge:     maxAge, // days to retain rotated files
		Compress:   true,
	}

	writers = append(writers, fileRotator)

	multiWriter := zerolog.MultiLevelWriter(writers...)
	log := zerolog.New(multiWriter).With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger().
		Level(zerolog.DebugLevel)

	log.Info().
		Str("logsFilePath", filePath).
		Str("serviceName", serviceName).
		Msg("Logger initialized with file rotation")

	return log, nil
}
