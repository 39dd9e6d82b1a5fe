// Package logger owns the process-wide zap logger and the echo middleware
// that writes one structured line per HTTP request.
package logger

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// Config selects the encoder and level of the global logger.
type Config struct {
	Level       string
	Environment string
	ServiceName string
}

// InitLogger builds the global logger.  Production uses the JSON encoder;
// every other environment gets the colored console encoder.  An unknown
// level falls back to info.
func InitLogger(cfg Config) *zap.Logger {
	var logConfig zap.Config
	if cfg.Environment == "production" {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	logConfig.Level.SetLevel(level)

	built, err := logConfig.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	log = built.With(
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
	)
	log.Info("logger initialized", zap.String("level", level.String()))
	return log
}

// GetLogger returns the global logger, creating a production logger if
// InitLogger was never called.
func GetLogger() *zap.Logger {
	if log == nil {
		fallback, err := zap.NewProduction()
		if err != nil {
			panic("failed to create fallback logger: " + err.Error())
		}
		log = fallback
	}
	return log
}

// Middleware logs each request after it has been handled.  It expects
// RequestID to have run first so the request id is available; the
// request-scoped logger is stored on the echo context and on the request
// context so lower layers log with the same id.
func Middleware(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = c.Request().Header.Get(echo.HeaderXRequestID)
			}
			reqLogger := base.With(zap.String("request_id", requestID))
			c.Set(contextKey, reqLogger)
			req := c.Request()
			c.SetRequest(req.WithContext(WithContext(req.Context(), reqLogger)))

			err := next(c)

			fields := []zapcore.Field{
				zap.String("method", req.Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
				reqLogger.Error("http request failed", fields...)
			} else {
				reqLogger.Info("http request completed", fields...)
			}
			return err
		}
	}
}
