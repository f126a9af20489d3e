package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log общий логгер приложения
var Log *zap.Logger

func init() {
	Log = New(false)
}

// New создает консольный логгер. В режиме debug пишутся и отладочные сообщения.
func New(debug bool) *zap.Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		NameKey:      "logger",
		CallerKey:    "caller",
		MessageKey:   "msg",
		LineEnding:   zapcore.DefaultLineEnding,
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(os.Stdout),
		level,
	)

	return zap.New(core, zap.AddCaller())
}

// SetDebug пересоздает общий логгер с нужным уровнем
func SetDebug(debug bool) {
	Log = New(debug)
}

// Fatal пишет сообщение и завершает процесс
func Fatal(msg string, fields ...zap.Field) { Log.Fatal(msg, fields...) }
