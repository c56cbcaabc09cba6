package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mangaeditor/internal/config"
	"mangaeditor/internal/logging"
	"mangaeditor/internal/rowdb"
	"mangaeditor/internal/rows"
)

type rowStoreStub struct {
	records []rows.Record
	drafts  []rows.Draft
	err     error
}

func (s *rowStoreStub) List(context.Context) ([]rows.Record, error) {
	return s.records, s.err
}

func (s *rowStoreStub) Create(_ context.Context, draft rows.Draft) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.drafts = append(s.drafts, draft)
	return int64(len(s.drafts)), nil
}

func (s *rowStoreStub) Ping(context.Context) error { return s.err }

func (s *rowStoreStub) Driver() string { return "stub" }

func newTestServer(t *testing.T, store RowStore) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.MaxBodyBytes = 64
	srv, err := NewServer(&cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func serve(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return resp.Error
}

func TestListRowsUsesStorageNames(t *testing.T) {
	store := &rowStoreStub{records: []rows.Record{
		{ID: 1, MediaPath: rows.StringPtr("/a.png"), Text: rows.StringPtr("x")},
	}}
	w := serve(newTestServer(t, store), http.MethodGet, "/rows", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	want := `[{"id":1,"media_path":"/a.png","text":"x","translation":null}]`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Fatalf("body = %s, want %s", got, want)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestListRowsEmptyStoreIsEmptyArray(t *testing.T) {
	w := serve(newTestServer(t, &rowStoreStub{}), http.MethodGet, "/rows", "")
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Fatalf("body = %s, want []", got)
	}
}

func TestCreateRowPassesValuesThrough(t *testing.T) {
	store := &rowStoreStub{}
	w := serve(newTestServer(t, store), http.MethodPost, "/rows", `{"mediaPath":"p","text":"","extra":1}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var created rows.Created
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("id = %d", created.ID)
	}
	draft := store.drafts[0]
	if draft.MediaPath == nil || *draft.MediaPath != "p" {
		t.Fatalf("mediaPath not passed through: %+v", draft)
	}
	if draft.Text == nil || *draft.Text != "" {
		t.Fatalf("empty text should stay a value: %+v", draft)
	}
	if draft.Translation != nil {
		t.Fatalf("absent translation should be nil: %+v", draft)
	}
}

func TestCreateRowEmptyBodyStoresNulls(t *testing.T) {
	store := &rowStoreStub{}
	w := serve(newTestServer(t, store), http.MethodPost, "/rows", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if d := store.drafts[0]; d.MediaPath != nil || d.Text != nil || d.Translation != nil {
		t.Fatalf("expected all-nil draft, got %+v", d)
	}
}

func TestCreateRowRejectsBadBodies(t *testing.T) {
	cases := map[string]string{
		"malformed":  `{"mediaPath":`,
		"array":      `[1,2]`,
		"wrong type": `{"text":5}`,
		"trailing":   `{} {}`,
		"too large":  `{"text":"` + strings.Repeat("a", 100) + `"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			store := &rowStoreStub{}
			w := serve(newTestServer(t, store), http.MethodPost, "/rows", body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if decodeError(t, w) == "" {
				t.Fatal("expected error message")
			}
			if len(store.drafts) != 0 {
				t.Fatal("nothing should be stored")
			}
		})
	}
}

func TestStoreFailureIs500WithDriverMessage(t *testing.T) {
	store := &rowStoreStub{err: &rowdb.StoreError{Op: "list rows", Err: errors.New("disk I/O error")}}
	srv := newTestServer(t, store)

	for _, tc := range []struct{ method, body string }{{http.MethodGet, ""}, {http.MethodPost, `{}`}} {
		w := serve(srv, tc.method, "/rows", tc.body)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", tc.method, w.Code)
		}
		if msg := decodeError(t, w); msg != "disk I/O error" {
			t.Fatalf("%s: error = %q", tc.method, msg)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &rowStoreStub{})
	for _, path := range []string{"/rows", "/health"} {
		w := serve(srv, http.MethodDelete, path, "")
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected 405, got %d", path, w.Code)
		}
		if decodeError(t, w) != "method not allowed" {
			t.Fatalf("%s: unexpected body %s", path, w.Body.String())
		}
	}
}

func TestCORSHeadersAndPreflight(t *testing.T) {
	srv := newTestServer(t, &rowStoreStub{})

	w := serve(srv, http.MethodOptions, "/rows", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight: expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("preflight allow origin = %q", got)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Fatalf("preflight allow methods = %q", w.Header().Get("Access-Control-Allow-Methods"))
	}

	w = serve(srv, http.MethodGet, "/rows", "")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("GET allow origin = %q", got)
	}
}

func TestRequestIDEchoedOrGenerated(t *testing.T) {
	srv := newTestServer(t, &rowStoreStub{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Fatalf("request id = %q, want echo", got)
	}

	w = serve(srv, http.MethodGet, "/health", "")
	if got := w.Header().Get("X-Request-Id"); len(got) != 36 {
		t.Fatalf("expected generated uuid, got %q", got)
	}
}

func TestHealth(t *testing.T) {
	w := serve(newTestServer(t, &rowStoreStub{}), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var health HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "ok" || health.Driver != "stub" {
		t.Fatalf("unexpected health: %+v", health)
	}

	w = serve(newTestServer(t, &rowStoreStub{err: errors.New("down")}), http.MethodGet, "/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestNewServerRequiresStore(t *testing.T) {
	cfg := config.Default()
	if _, err := NewServer(&cfg, nil, nil); err == nil {
		t.Fatal("expected error without store")
	}
}
