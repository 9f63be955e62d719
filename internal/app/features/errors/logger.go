package errors

import (
	"net/http"

	"github.com/dalemusser/threads/internal/app/system/auth"
	"go.uber.org/zap"
)

// ErrorLogger logs request failures with zap and renders a friendly page.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger wraps logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fs := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if u, ok := auth.CurrentUser(r); ok {
		fs = append(fs, zap.String("user_id", u.ID))
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	return fs
}

// LogServerError logs msg at error level and renders a 500 page with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Error(msg, e.fields(r, err)...)
	renderError(w, r, http.StatusInternalServerError, userMsg, backURL)
}

// LogBadRequest logs msg at warn level and renders a 400 page with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, backURL string) {
	e.log.Warn(msg, e.fields(r, err)...)
	renderError(w, r, http.StatusBadRequest, userMsg, backURL)
}

// LogNotFound logs msg at info level and renders a 404 page with userMsg.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, msg, userMsg, backURL string) {
	e.log.Info(msg, e.fields(r, nil)...)
	renderError(w, r, http.StatusNotFound, userMsg, backURL)
}

// LogForbidden logs msg at warn level and renders a 403 page with userMsg.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, msg, userMsg, backURL string) {
	e.log.Warn(msg, e.fields(r, nil)...)
	renderError(w, r, http.StatusForbidden, userMsg, backURL)
}
