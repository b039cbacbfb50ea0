package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nicolasparada/go-errs"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/foodbridge/foodbridge/chatview"
	"github.com/foodbridge/foodbridge/metrics"
	"github.com/foodbridge/foodbridge/service"
	"github.com/foodbridge/foodbridge/types"
	"github.com/foodbridge/foodbridge/validator"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	svc := service.New(&service.Config{
		Metrics:  metrics.New(reg),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		TokenKey: "supersecretkeyyoushouldnotcommit",
	})
	t.Cleanup(func() { _ = svc.Close() })

	return New(Config{
		Service:  svc,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Gatherer: reg,
	})
}

func TestHandler_withoutDatabase(t *testing.T) {
	h := testHandler(t)
	conversationID := types.ConversationID("donation-1", "d1d1d1d1d1d1d1d1d1d1d", "r1r1r1r1r1r1r1r1r1r1r")

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{name: "auth_user_anonymous", method: http.MethodGet, target: "/api/auth_user", want: http.StatusUnauthorized},
		{name: "conversations_anonymous", method: http.MethodGet, target: "/api/conversations", want: http.StatusUnauthorized},
		{name: "unread_anonymous", method: http.MethodGet, target: "/api/unread_count", want: http.StatusUnauthorized},
		{name: "match_anonymous", method: http.MethodGet, target: "/api/ngos/matches", want: http.StatusUnauthorized},
		{name: "bad_json", method: http.MethodPost, target: "/api/login", body: "{", want: http.StatusBadRequest},
		{name: "empty_message_anonymous", method: http.MethodPost, target: "/api/conversations/" + conversationID + "/messages", body: `{"content":"   "}`, want: http.StatusUnauthorized},
		{name: "read_anonymous", method: http.MethodPost, target: "/api/conversations/" + conversationID + "/read", want: http.StatusUnauthorized},
		{name: "unknown_route", method: http.MethodGet, target: "/api/nope", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d; body: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandler_registerValidation(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(`{"email":"nope","password":"short","role":"admin"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	var body validator.Validator
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}

	for _, field := range []string{"Email", "Password", "DisplayName", "Role"} {
		if !body.Has(field) {
			t.Errorf("expected an error for %s, got %v", field, body.Errors)
		}
	}
}

func TestHandler_metrics(t *testing.T) {
	h := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "foodbridge_chat_messages_sent_total") {
		t.Errorf("expected chat counters in metrics output")
	}
}

func TestErr2Code(t *testing.T) {
	v := validator.New()
	v.AddError("Name", "Name is required")

	tests := []struct {
		err  error
		want int
	}{
		{err: nil, want: http.StatusOK},
		{err: errBadRequest, want: http.StatusBadRequest},
		{err: errTooManyRequests, want: http.StatusTooManyRequests},
		{err: chatview.ErrSendInFlight, want: http.StatusConflict},
		{err: v, want: http.StatusUnprocessableEntity},
		{err: errs.Unauthenticated, want: http.StatusUnauthorized},
		{err: types.ErrUnauthorizedParticipant, want: http.StatusForbidden},
		{err: fmt.Errorf("wrapped: %w", types.ErrConversationNotFound), want: http.StatusNotFound},
		{err: types.ErrEmailTaken, want: http.StatusConflict},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.err), func(t *testing.T) {
			if got := err2code(tt.err); got != tt.want {
				t.Errorf("err2code(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestUserLimiter(t *testing.T) {
	l := newUserLimiter(rate.Limit(0.001), 2)

	for i := range 2 {
		if !l.Allow("alice") {
			t.Fatalf("send %d should be allowed within burst", i)
		}
	}

	if l.Allow("alice") {
		t.Error("expected alice to be limited after the burst")
	}

	if !l.Allow("bob") {
		t.Error("limits must be per user")
	}
}

func TestUserLimiter_evictsIdleUsers(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newUserLimiter(rate.Limit(1), 1)
	l.now = func() time.Time { return now }

	for _, userID := range []string{"alice", "bob", "carol"} {
		if !l.Allow(userID) {
			t.Fatalf("first send for %s should be allowed", userID)
		}
	}

	if got := l.size(); got != 3 {
		t.Fatalf("tracked users = %d, want 3", got)
	}

	now = now.Add(2 * time.Minute)
	if !l.Allow("dave") {
		t.Fatal("first send for dave should be allowed")
	}

	if got := l.size(); got != 1 {
		t.Fatalf("tracked users after sweep = %d, want 1", got)
	}
}

func TestUserLimiter_keepsLimitedUsers(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newUserLimiter(rate.Limit(0.001), 1)
	l.now = func() time.Time { return now }

	if !l.Allow("alice") {
		t.Fatal("first send should be allowed")
	}

	now = now.Add(2 * time.Minute)
	if !l.Allow("bob") {
		t.Fatal("first send for bob should be allowed")
	}

	if l.Allow("alice") {
		t.Error("expected alice to stay limited across a sweep")
	}
}

func TestUserLimiter_unlimited(t *testing.T) {
	l := newUserLimiter(0, 0)

	for range 100 {
		if !l.Allow("alice") {
			t.Fatal("expected no limit")
		}
	}

	if got := l.size(); got != 0 {
		t.Errorf("tracked users = %d, want 0", got)
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/auth_user?auth_token=fromquery", nil)
	if got := bearerToken(req); got != "fromquery" {
		t.Errorf("query token = %q", got)
	}

	req.Header.Set("Authorization", "Bearer fromheader")
	if got := bearerToken(req); got != "fromheader" {
		t.Errorf("header token = %q", got)
	}
}
