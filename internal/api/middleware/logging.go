package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// AccessLog пишет строку на каждый запрос, уровень по коду ответа
func AccessLog(logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)

			next.ServeHTTP(sw, r)

			rid, _ := GetRequestID(r.Context())
			format := "%s %s - status=%d, bytes=%d, duration=%s, request_id=%s"
			args := []interface{}{r.Method, r.URL.Path, sw.status, sw.size, time.Since(start), rid}

			switch {
			case sw.status >= http.StatusInternalServerError:
				logger.Error(format, args...)
			case sw.status >= http.StatusBadRequest:
				logger.Warn(format, args...)
			default:
				logger.Info(format, args...)
			}
		})
	}
}
