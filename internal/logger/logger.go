package logger

import (
	"bufio"
	"errors"
	"net"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// Setup настраивает формат и уровень глобального логгера.
func Setup(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("[logger] unknown log level %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// ResponseLogger запоминает код ответа для журнала запросов.
type ResponseLogger struct {
	w      http.ResponseWriter
	status int
}

func New(w http.ResponseWriter) *ResponseLogger {
	return &ResponseLogger{w, http.StatusOK}
}

func (l *ResponseLogger) WriteHeader(code int) {
	l.status = code
	l.w.WriteHeader(code)
}

func (l *ResponseLogger) Write(b []byte) (int, error) {
	return l.w.Write(b)
}

func (l *ResponseLogger) Header() http.Header {
	return l.w.Header()
}

func (l *ResponseLogger) Status() int {
	return l.status
}

// Hijack нужен для перехода на websocket.
func (l *ResponseLogger) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := l.w.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	l.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
