package httpapi

import (
	"bytes"
	"net/http"
	"time"

	"flashquiz/internal/logger"
)

const maxLoggedBody = 512

func NewRouter(bank Bank, pageSize int, log *logger.Logger) http.Handler {
	api := NewAPI(bank, pageSize, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/questions", api.HandleQuestions)
	mux.HandleFunc("/revision_questions", api.HandleRevisionQuestions)
	mux.HandleFunc("/themes", api.HandleThemes)
	mux.HandleFunc("/achievements", api.HandleAchievements)
	mux.HandleFunc("/healthz", api.HandleHealth)

	return logRequests(api.log, mux)
}

// statusRecorder captures the status and a bounded prefix of the body for
// the request log.
type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
	logBody      bytes.Buffer
	maxLogBytes  int
	truncated    bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if room := r.maxLogBytes - r.logBody.Len(); room > 0 {
		if len(p) > room {
			r.logBody.Write(p[:room])
			r.truncated = true
		} else {
			r.logBody.Write(p)
		}
	} else if len(p) > 0 {
		r.truncated = true
	}

	written, err := r.ResponseWriter.Write(p)
	r.bytesWritten += written
	return written, err
}

func logRequests(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			maxLogBytes:    maxLoggedBody,
		}
		next.ServeHTTP(recorder, r)

		fields := []interface{}{
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"status", recorder.statusCode,
			"bytes", recorder.bytesWritten,
			"duration", time.Since(started),
		}
		if recorder.statusCode >= http.StatusBadRequest {
			fields = append(fields, "body", recorder.logBody.String(), "body_truncated", recorder.truncated)
			log.Warn("request failed", fields...)
			return
		}
		log.Debug("request served", fields...)
	})
}
