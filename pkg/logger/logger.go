package logger

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceIdKey is the context key carrying the request trace id.
const TraceIdKey = "trace_id"

// Log is the process-wide logger instance.
var Log *zap.Logger

// Init sets up the JSON logger for a service.
// level: debug / info / warn / error.
func Init(serviceName string, level string) {
	InitWithFile(serviceName, level, "")
}

// InitWithFile is Init with an explicit log file path.
// Empty logFile falls back to logs/{serviceName}.log.
func InitWithFile(serviceName string, level string, logFile string) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zap.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.MessageKey = "msg"

	// stdout always; the file sink is best-effort so a bad log path never
	// blocks startup
	writeSyncers := []zapcore.WriteSyncer{
		zapcore.AddSync(os.Stdout),
	}

	if logFile == "" {
		logFile = filepath.Join("logs", serviceName+".log")
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err == nil {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			writeSyncers = append(writeSyncers, zapcore.AddSync(file))
		}
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(writeSyncers...),
		zapLevel,
	)

	// AddCallerSkip(1): callers go through the package-level wrappers below,
	// otherwise every line points at logger.go
	Log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	Log = Log.With(zap.String("service", serviceName))
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	if Log == nil {
		return
	}
	extractTrace(ctx, &fields)
	Log.Info(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	if Log == nil {
		return
	}
	extractTrace(ctx, &fields)
	Log.Error(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	if Log == nil {
		return
	}
	extractTrace(ctx, &fields)
	Log.Warn(msg, fields...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	if Log == nil {
		return
	}
	extractTrace(ctx, &fields)
	Log.Debug(msg, fields...)
}

func Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	if Log == nil {
		return
	}
	extractTrace(ctx, &fields)
	Log.Fatal(msg, fields...)
}

func extractTrace(ctx context.Context, fields *[]zap.Field) {
	if ctx == nil {
		return
	}
	if traceID, ok := ctx.Value(TraceIdKey).(string); ok && traceID != "" {
		*fields = append(*fields, zap.String("trace_id", traceID))
	}
}

// Sync flushes buffered entries; call from a defer in main.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
