package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"miaoyou_backend/internal/eventlog"
	"miaoyou_backend/internal/logger"
	"miaoyou_backend/internal/tracker"
	"miaoyou_backend/pkg/apperrors"
	"miaoyou_backend/pkg/contextkeys"
)

// ErrorRecorder - приемник событий журнала ошибок.
type ErrorRecorder interface {
	AppendError(ev eventlog.ErrorEvent)
}

// Recovery ловит панику хендлера, пишет ErrorEvent со стеком и отвечает 500.
func Recovery(recorder ErrorRecorder, t *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			err := fmt.Errorf("panic: %v", rec)
			stack := string(debug.Stack())
			logger.CtxWithError(c.Request.Context(), "Recovered from panic", err, "path", c.Request.URL.Path)

			sessionID, _ := t.SessionID(c.Request)
			recorder.AppendError(eventlog.ErrorEvent{
				Level:       eventlog.LevelError,
				Message:     err.Error(),
				Stack:       stack,
				SessionID:   sessionID,
				RequestInfo: t.RequestInfo(c.Request),
				Extra: map[string]any{
					"method":    c.Request.Method,
					"path":      c.Request.URL.Path,
					"requestId": c.GetString(contextkeys.RequestIDKey),
				},
			})

			apperrors.HandleError(c, apperrors.InternalError(err))
		}()
		c.Next()
	}
}
