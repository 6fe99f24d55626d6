package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "gagyebu/internal/log"
)

func TestMiddlewareSetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Output: &buf})

	var seen string
	h := NewMiddleware(logger, func(*http.Request) string { return "10.0.0.7" }).
		Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/ledger/2024-05-01/transactions", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("request id not in context: %q", seen)
	}
	if rec.Header().Get(HeaderRequestID) != seen {
		t.Errorf("header %q != context %q", rec.Header().Get(HeaderRequestID), seen)
	}
	out := buf.String()
	if !strings.Contains(out, "status_code=422") || !strings.Contains(out, "level=WARN") {
		t.Errorf("completion line missing or wrong level: %s", out)
	}
	if !strings.Contains(out, "client_ip=10.0.0.7") {
		t.Errorf("client ip not logged: %s", out)
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if a == b {
		t.Errorf("ids collide: %s", a)
	}
}
