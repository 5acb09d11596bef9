package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	initialSampling    = 100
	thereafterSampling = 100

	fileMaxSizeMB  = 100
	fileMaxBackups = 7
	fileMaxAgeDays = 7
)

type settings struct {
	config   *zap.Config
	opts     []zap.Option
	filePath string
}

// Option tunes the logger built by NewZapLogger.
type Option func(s *settings)

// WithFile duplicates log records into a size-rotated file.
func WithFile(path string) Option {
	return func(s *settings) {
		s.filePath = path
	}
}

// WithOutputPaths replaces the default stderr sink.
func WithOutputPaths(paths ...string) Option {
	return func(s *settings) {
		s.config.OutputPaths = paths
	}
}

func defaultSettings(level zap.AtomicLevel) *settings {
	config := &zap.Config{
		Level:       level,
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    initialSampling,
			Thereafter: thereafterSampling,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "message",
			LevelKey:       "level",
			TimeKey:        "@timestamp",
			NameKey:        "logger",
			CallerKey:      "caller",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return &settings{
		config: config,
		opts: []zap.Option{
			zap.AddCallerSkip(1),
		},
	}
}

func (s *settings) fileCore() zapcore.Core {
	writer := &lumberjack.Logger{
		Filename:   s.filePath,
		MaxSize:    fileMaxSizeMB,
		MaxBackups: fileMaxBackups,
		MaxAge:     fileMaxAgeDays,
		Compress:   true,
	}
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(s.config.EncoderConfig),
		zapcore.AddSync(writer),
		s.config.Level,
	)
}
