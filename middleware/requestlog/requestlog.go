// Package requestlog contém os middlewares de request ID, access log e recover.
package requestlog

import (
	"net/http"
	"runtime/debug"
	"time"

	"form-intake/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-ID"

// statusRecorder captura o status para o access log.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.wroteHeader {
		sr.status = code
		sr.wroteHeader = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	sr.wroteHeader = true
	return sr.ResponseWriter.Write(b)
}

// Middleware gera (ou reaproveita) o X-Request-ID, coloca um logger com
// request_id no context, registra o access log e converte panics em 500.
func Middleware(base *zap.Logger) func(next http.Handler) http.Handler {
	if base == nil {
		base = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rid := r.Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, rid)

			log := base.With(zap.String("request_id", rid))
			r = r.WithContext(logger.WithContext(r.Context(), log))

			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				if rec := recover(); rec != nil {
					log.Error("panic recovered",
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()),
					)
					if !sr.wroteHeader {
						sr.Header().Set("Content-Type", "application/json")
						sr.WriteHeader(http.StatusInternalServerError)
						_, _ = sr.Write([]byte(`{"error":"Internal server error"}` + "\n"))
					}
				}

				log.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", sr.status),
					zap.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(sr, r)
		})
	}
}
