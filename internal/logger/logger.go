// Package logger provides structured logging functionality
// using the Uber zap logging library. Logs go to stderr and, when a log file
// is configured, to a size-rotated file as well.
package logger

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is a global SugaredLogger instance from the zap logging library.
// It is a no-op logger until Init is called, so packages may log from tests
// without initializing anything.
var Log = zap.NewNop().Sugar()

type initOptions struct {
	logFile    string
	maxSizeMB  int
	maxBackups int
}

// InitOption configures Init.
type InitOption func(*initOptions)

// WithLogFile additionally writes JSON encoded entries to fileName,
// rotating it at maxSizeMB and keeping maxBackups old files.
func WithLogFile(fileName string, maxSizeMB, maxBackups int) InitOption {
	return func(options *initOptions) {
		options.logFile = fileName
		options.maxSizeMB = maxSizeMB
		options.maxBackups = maxBackups
	}
}

// Init initializes the global logger configuration.
// It sets the output destinations and global log level.
func Init(level string, optionsProto ...InitOption) error {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}

	if options.logFile != "" {
		rotated := zapcore.AddSync(&lumberjack.Logger{
			Filename:   options.logFile,
			MaxSize:    options.maxSizeMB,
			MaxBackups: options.maxBackups,
			Compress:   true,
		})
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			rotated,
			lvl,
		)
		zl = zl.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, fileCore)
		}))
	}

	Log = zl.Sugar()

	return nil
}

// Sync flushes any buffered log entries to the output.
// It should be called when shutting down to ensure all logs are written.
func Sync() error {
	if err := Log.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}

	return nil
}

// WithLoggingHTTPMiddleware logs method, URI, status, duration, response size
// and the chi request id of every request.
func WithLoggingHTTPMiddleware(h http.Handler) http.Handler {
	logFn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lw := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		h.ServeHTTP(lw, r)

		status := lw.Status()
		if status == 0 {
			status = http.StatusOK
		}

		Log.Infoln(
			"uri", r.RequestURI,
			"method", r.Method,
			"status", status,
			"duration", time.Since(start),
			"size", lw.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	}

	return http.HandlerFunc(logFn)
}
