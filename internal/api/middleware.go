package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/UkralStul/academic-feed/internal/domain"
	"github.com/UkralStul/academic-feed/internal/logger"
)

// maxBodySize ограничивает тело запроса: картинки приходят как data URL.
const maxBodySize = 8 << 20

func (api *API) headerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (api *API) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := logger.New(w)
		defer func() {
			log.WithFields(log.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"status":     lw.Status(),
				"duration":   time.Since(start).Seconds(),
				"ip":         getClientIP(r),
			}).Infof("[api] %s %s", r.Method, r.URL.Path)
		}()
		next.ServeHTTP(lw, r)
	})
}

func getClientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := domain.HTTPStatus(err)
	resp := errorResponse{Error: domain.CodeOf(err), Message: err.Error()}

	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
	}
	if status == http.StatusInternalServerError {
		log.Errorf("[api][from:%v] %s %s: %v", r.RemoteAddr, r.Method, r.URL.Path, err)
		resp.Message = "internal error"
	}
	writeJSON(w, r, status, resp)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("[api][from:%v] error encoding response: %v", r.RemoteAddr, err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewAppError(domain.CodeInvalidInput, "invalid JSON", err)
	}
	return nil
}
