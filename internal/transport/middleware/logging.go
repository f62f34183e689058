package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
)

// redactedKeys are matched as substrings of lower-cased JSON keys and header names.
var redactedKeys = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"cookie",
}

const maxLoggedBody = 4 << 10

// LoggingMiddleware writes one line per request with status and latency.
// Bodies of mutating requests are logged with credentials redacted.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			var body string
			if r.Method != http.MethodGet && r.Body != nil {
				raw, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), r.Body))
				body = redactBody(raw)
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			attrs := []any{
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"headers", redactHeaders(r.Header),
			}
			if body != "" {
				attrs = append(attrs, "body", body)
			}
			logger.Log(r.Context(), level, "http request", attrs...)
		})
	}
}

func sensitive(name string) bool {
	name = strings.ToLower(name)
	for _, key := range redactedKeys {
		if strings.Contains(name, key) {
			return true
		}
	}
	return false
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if sensitive(name) {
			out[name] = "[FILTERED]"
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func redactBody(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return "[non-JSON body]"
	}
	redacted, err := json.Marshal(redactValue(data))
	if err != nil {
		return "[unencodable body]"
	}
	return string(redacted)
}

func redactValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if sensitive(k) {
				out[k] = "[FILTERED]"
				continue
			}
			out[k] = redactValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}
