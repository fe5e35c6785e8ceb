package log

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"bloglist/local-app/src/pkg/model"
)

// Fields carries structured key/value pairs attached to a log entry
type Fields map[string]interface{}

type requestIDKey struct{}

// ContextWithRequestID returns a context whose log entries carry the request id
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx, if any
func RequestID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// Logger writes JSON lines to separate command, error and info log files
type Logger struct {
	commandLogger *zap.Logger
	errorLogger   *zap.Logger
	infoLogger    *zap.Logger
	level         zap.AtomicLevel
	files         []*os.File
}

// NewLogger creates a new Logger writing into cfg.LogFolder
func NewLogger(cfg *model.Config, level LogLevel) (*Logger, error) {
	// Create log directory if it doesn't exist
	if err := os.MkdirAll(cfg.LogFolder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	var files []*os.File
	open := func(name string) (*os.File, error) {
		f, err := os.OpenFile(filepath.Join(cfg.LogFolder, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			for _, opened := range files {
				opened.Close()
			}
			return nil, err
		}
		files = append(files, f)
		return f, nil
	}

	commandFile, err := open(cfg.CommandLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open command log file: %w", err)
	}
	errorFile, err := open(cfg.ErrorLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log file: %w", err)
	}
	infoFile, err := open(cfg.InfoLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open info log file: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.MessageKey = "msg"
	encoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	atomicLevel := zap.NewAtomicLevelAt(level.toZapLevel())

	return &Logger{
		commandLogger: zap.New(zapcore.NewCore(encoder.Clone(), zapcore.AddSync(commandFile), zapcore.InfoLevel)),
		errorLogger:   zap.New(zapcore.NewCore(encoder.Clone(), zapcore.AddSync(errorFile), zapcore.ErrorLevel)),
		infoLogger:    zap.New(zapcore.NewCore(encoder.Clone(), zapcore.AddSync(infoFile), atomicLevel)),
		level:         atomicLevel,
		files:         files,
	}, nil
}

// NewNopLogger returns a Logger that discards everything
func NewNopLogger() *Logger {
	nop := zap.NewNop()
	return &Logger{
		commandLogger: nop,
		errorLogger:   nop,
		infoLogger:    nop,
		level:         zap.NewAtomicLevelAt(zapcore.InfoLevel),
	}
}

// SetLevel changes the minimum level written to the info log
func (l *Logger) SetLevel(level LogLevel) {
	l.level.SetLevel(level.toZapLevel())
}

// Command records a user command in the command log
func (l *Logger) Command(ctx context.Context, msg string, fields Fields) {
	l.commandLogger.Info(msg, toZapFields(ctx, fields)...)
}

// Error records an error in both the error log and the info log
func (l *Logger) Error(ctx context.Context, msg string, fields Fields) {
	zf := toZapFields(ctx, fields)
	l.errorLogger.Error(msg, zf...)
	l.infoLogger.Error(msg, zf...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields Fields) {
	l.infoLogger.Warn(msg, toZapFields(ctx, fields)...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields Fields) {
	l.infoLogger.Info(msg, toZapFields(ctx, fields)...)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields Fields) {
	l.infoLogger.Debug(msg, toZapFields(ctx, fields)...)
}

// Close flushes the loggers and closes all log files
func (l *Logger) Close() error {
	_ = l.commandLogger.Sync()
	_ = l.errorLogger.Sync()
	_ = l.infoLogger.Sync()

	for _, f := range l.files {
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close log file %s: %w", f.Name(), err)
		}
	}
	l.files = nil
	return nil
}

// toZapFields converts Fields in a stable key order, prefixed by the request id
func toZapFields(ctx context.Context, fields Fields) []zap.Field {
	zf := make([]zap.Field, 0, len(fields)+1)
	if id, ok := RequestID(ctx); ok {
		zf = append(zf, zap.String("requestID", id))
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := fields[k].(type) {
		case error:
			zf = append(zf, zap.NamedError(k, v))
		default:
			zf = append(zf, zap.Any(k, v))
		}
	}
	return zf
}
