package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		Body([]byte("test")).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
}

func TestHTMXResponseBuilder_LedgerTriggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerFormReset().
		TriggerLedgerChanged("2024-05-03").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("HX-Trigger header not set")
	}

	var got map[string]map[string]string
	if err := json.Unmarshal([]byte(trigger), &got); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v (%s)", err, trigger)
	}
	if _, ok := got["form:reset"]; !ok {
		t.Errorf("HX-Trigger missing form:reset: %s", trigger)
	}
	if got["ledger:changed"]["date"] != "2024-05-03" {
		t.Errorf("ledger:changed date = %q, want 2024-05-03", got["ledger:changed"]["date"])
	}
}

func TestHTMXResponseBuilder_NoTriggersNoHeader(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().Write(w)
	if h := w.Header().Get("HX-Trigger"); h != "" {
		t.Errorf("HX-Trigger = %q, want empty", h)
	}
}

func TestHTMXResponseBuilder_RetargetAndHeaders(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Retarget("#ledger-error").
		Header("X-Custom", "value").
		Status(http.StatusCreated).
		Write(w)

	if w.Header().Get("HX-Retarget") != "#ledger-error" {
		t.Errorf("HX-Retarget = %q", w.Header().Get("HX-Retarget"))
	}
	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Custom header not set")
	}
	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bad request",
			builder:    BadRequestError("요청 오류"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `<div class="error">요청 오류</div>`,
		},
		{
			name:       "unprocessable entity",
			builder:    UnprocessableEntityError(msgEmptyDescription),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `<div class="error">내용을 입력해주세요.</div>`,
		},
		{
			name:       "internal server error",
			builder:    InternalServerError("Something broke"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `<div class="error">Something broke</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.wantBody)
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequestError("<script>alert('xss')</script>").Write(w)

	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("Error response did not escape HTML")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("Error response did not properly escape HTML entities")
	}
}
