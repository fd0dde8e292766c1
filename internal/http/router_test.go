package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	intconfig "familytrip/internal/config"
	"familytrip/internal/domain"
	"familytrip/internal/http/handlers"
	"familytrip/internal/http/middleware"
	"familytrip/internal/llm"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
)

const secret = "router-secret"

var tripCols = []string{
	"id", "user_id", "title", "destination", "start_date", "end_date",
	"family_composition", "preferences", "status", "total_budget", "is_public", "created_at", "updated_at",
}

type stubProvider struct {
	parts []string
	err   error
	last  llm.Request
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Stream(_ context.Context, req llm.Request) (llm.Stream, error) {
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	return &stubStream{parts: p.parts}, nil
}

type stubStream struct {
	parts []string
	i     int
}

func (s *stubStream) Next() bool {
	if s.i >= len(s.parts) {
		return false
	}
	s.i++
	return true
}
func (s *stubStream) Text() string { return s.parts[s.i-1] }
func (s *stubStream) Err() error   { return nil }
func (s *stubStream) Close() error { return nil }

func setup(t *testing.T, p llm.Provider) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	prev := intconfig.DB
	intconfig.DB = sqlx.NewDb(db, "mysql")
	t.Cleanup(func() {
		intconfig.DB = prev
		db.Close()
	})

	handlers.SetProvider(p, 1000, 0.7)
	r := NewRouter(intconfig.Env{}, middleware.NewAuthenticator(secret, "sb-access-token", ""))
	return r, mock
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + tok
}

func do(r *gin.Engine, method, path, body, auth string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestCreateTripWithoutSession(t *testing.T) {
	r, mock := setup(t, &stubProvider{})

	w := do(r, http.MethodPost, "/api/trips", `{"title":"Zomer","destination":"Texel"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	if body["error"] == nil || body["details"] == nil {
		t.Fatalf("expected error and details, got %v", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no statement expected: %v", err)
	}
}

func TestCreateTripDefaults(t *testing.T) {
	r, mock := setup(t, &stubProvider{})
	mock.ExpectExec("INSERT INTO trips").
		WithArgs(sqlmock.AnyArg(), "user-1", "Zomer", "Texel", nil, nil,
			`{"adults":2,"children":[]}`, `{}`, "planning", nil, false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := do(r, http.MethodPost, "/api/trips", `{"title":"Zomer","destination":"Texel"}`, bearer(t, "user-1"))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["success"] != true {
		t.Fatalf("success flag missing: %v", body)
	}
	trip := body["trip"].(map[string]any)
	if trip["status"] != "planning" || trip["is_public"] != false || trip["user_id"] != "user-1" {
		t.Fatalf("unexpected trip %v", trip)
	}
	if id, _ := trip["id"].(string); len(id) != 36 {
		t.Fatalf("expected uuid id, got %v", trip["id"])
	}
}

func TestListTripsStoreFailure(t *testing.T) {
	r, mock := setup(t, &stubProvider{})
	mock.ExpectQuery("FROM trips").WithArgs("user-1").WillReturnError(errors.New("connection reset"))

	w := do(r, http.MethodGet, "/api/trips", "", bearer(t, "user-1"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decode(t, w); body["details"] != "connection reset" {
		t.Fatalf("store message not attached: %v", body)
	}
}

func TestListTrips(t *testing.T) {
	r, mock := setup(t, &stubProvider{})
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM trips").WithArgs("user-1").WillReturnRows(
		sqlmock.NewRows(tripCols).AddRow("t1", "user-1", "Zomer", "Texel", nil, nil,
			[]byte(`{"adults":2,"children":[]}`), []byte(`{}`), "planning", nil, false, now, now))

	w := do(r, http.MethodGet, "/api/trips", "", bearer(t, "user-1"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	trips, ok := decode(t, w)["trips"].([]any)
	if !ok || len(trips) != 1 {
		t.Fatalf("unexpected trips payload %s", w.Body.String())
	}
}

func TestForeignTripIsNotFound(t *testing.T) {
	r, mock := setup(t, &stubProvider{})
	mock.ExpectQuery("FROM trips").WithArgs("t1", "user-2").WillReturnRows(sqlmock.NewRows(tripCols))

	w := do(r, http.MethodGet, "/api/trips/t1", "", bearer(t, "user-2"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestChatStreamsText(t *testing.T) {
	p := &stubProvider{parts: []string{"Bezoek ", "het strand"}}
	r, _ := setup(t, p)

	w := do(r, http.MethodPost, "/api/chat",
		`{"messages":[{"role":"user","content":"Wat kunnen we doen op Texel?"}],"familyInfo":{"childAges":[5,8],"budget":"low"}}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if w.Body.String() != "Bezoek het strand" {
		t.Fatalf("body = %q", w.Body.String())
	}
	if w.Header().Get("X-Prompt-Variant") != "activity_guide" {
		t.Fatalf("variant header = %q", w.Header().Get("X-Prompt-Variant"))
	}
	if !strings.Contains(p.last.System, "5, 8 jaar oud") || !strings.Contains(p.last.System, "beperkt") {
		t.Fatalf("family context missing from system prompt")
	}
}

func TestChatDataProtocol(t *testing.T) {
	r, _ := setup(t, &stubProvider{parts: []string{"Hallo", " \"daar\""}})

	w := do(r, http.MethodPost, "/api/chat?protocol=data", `{"messages":[{"role":"user","content":"hoi"}]}`, "")
	want := "0:\"Hallo\"\n0:\" \\\"daar\\\"\"\n"
	if w.Body.String() != want {
		t.Fatalf("body = %q, want %q", w.Body.String(), want)
	}
}

func TestChatUpstreamFailure(t *testing.T) {
	r, _ := setup(t, &stubProvider{err: domain.UpstreamError{Provider: "stub", Status: 529}})

	w := do(r, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hoi"}]}`, "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decode(t, w); body["error"] != "Er ging iets mis bij het verwerken van je vraag." {
		t.Fatalf("unexpected error body %v", body)
	}
}

func TestChatRejectsInvalidBody(t *testing.T) {
	r, _ := setup(t, &stubProvider{})

	if w := do(r, http.MethodPost, "/api/chat", `{"messages":`, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/chat", `{"messages":[]}`, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSessionEndpoint(t *testing.T) {
	r, _ := setup(t, &stubProvider{})

	body := decode(t, do(r, http.MethodGet, "/api/auth/session", "", bearer(t, "user-7")))
	user, ok := body["user"].(map[string]any)
	if !ok || user["id"] != "user-7" || body["authError"] != nil {
		t.Fatalf("unexpected session body %v", body)
	}

	anon := decode(t, do(r, http.MethodGet, "/api/auth/session", "", ""))
	if anon["user"] != nil || anon["authError"] == nil {
		t.Fatalf("unexpected anonymous body %v", anon)
	}
}

func TestChatPassesConfiguredZeroTemperature(t *testing.T) {
	p := &stubProvider{parts: []string{"ok"}}
	r, _ := setup(t, p)
	handlers.SetProvider(p, 1000, 0)

	w := do(r, http.MethodPost, "/api/chat", `{"messages":[{"role":"user","content":"hoi"}]}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if p.last.Temperature != 0 {
		t.Fatalf("temperature = %v, want 0", p.last.Temperature)
	}
}
