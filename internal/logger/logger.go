package logger

import (
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Entry
}

var (
	mu    sync.RWMutex
	level = os.Getenv("LOG_LEVEL")
	env   = os.Getenv("ENVIRONMENT")
)

var output io.Writer = os.Stdout

// Setup overrides the level and environment picked up from the process env.
// Empty values keep the current setting.
func Setup(logLevel, environment string) {
	mu.Lock()
	defer mu.Unlock()
	if logLevel != "" {
		level = logLevel
	}
	if environment != "" {
		env = environment
	}
}

// SetOutput redirects every logger created afterwards. Tests use it to silence output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func New() *Logger {
	mu.RLock()
	lvl, e, out := level, env, output
	mu.RUnlock()

	base := logrus.New()

	// Local env = pretty console; others = JSON
	if e == "" || e == "local" {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			ForceColors:     true,
		})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	base.SetOutput(out)

	switch strings.ToLower(lvl) {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}

	return &Logger{Entry: logrus.NewEntry(base)}
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return New().WithField("component", name)
}

// WithRequest attaches request metadata and returns an entry
func (l *Logger) WithRequest(r *http.Request) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"req_id":     RequestID(r),
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  r.RemoteAddr,
		"user_agent": r.UserAgent(),
	})
}

// RequestID returns the caller supplied X-Request-ID or a fresh UUID.
func RequestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.New().String()
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}
