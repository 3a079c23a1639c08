package middlewares

import (
	"context"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/survey-desk/auth"
	"github.com/mbolis/survey-desk/httpx"
	"github.com/mbolis/survey-desk/log"
	"github.com/sirupsen/logrus"
)

type seenKey struct{}

// RequestLog logs one line per request: ERROR for statuses from 400 up,
// INFO otherwise.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Authenticate fills seen in once the token is verified
		seen := &auth.Principal{}
		r = r.WithContext(context.WithValue(r.Context(), seenKey{}, seen))

		m := httpsnoop.CaptureMetrics(next, w, r)

		fields := log.Fields{
			"method":    r.Method,
			"url":       r.URL.RequestURI(),
			"status":    m.Code,
			"duration":  m.Duration.String(),
			"bytes":     m.Written,
			"ip":        httpx.ClientIP(r),
			"userAgent": r.UserAgent(),
			"requestId": middleware.GetReqID(r.Context()),
		}
		if seen.UserID != "" {
			fields["userId"] = seen.UserID
			fields["role"] = seen.Role
		}

		level := logrus.InfoLevel
		if m.Code >= 400 {
			level = logrus.ErrorLevel
		}
		log.WithFields(fields).Log(level, "request")
	})
}

func notePrincipal(ctx context.Context, p auth.Principal) {
	if seen, ok := ctx.Value(seenKey{}).(*auth.Principal); ok {
		*seen = p
	}
}
