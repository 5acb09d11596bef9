package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"smm-market/pkg/logging"
)

type AccessLog struct {
	logger *logging.ZapLogger
}

func NewAccessLog(logger *logging.ZapLogger) *AccessLog {
	return &AccessLog{
		logger: logger,
	}
}

func (al *AccessLog) CreateHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		al.logger.DebugCtx(r.Context(), "request served",
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(started)),
		)
	})
}
