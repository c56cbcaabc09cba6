package session_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"mangaeditor/internal/api"
	"mangaeditor/internal/config"
	"mangaeditor/internal/rows"
	"mangaeditor/internal/session"
	"mangaeditor/internal/syncctl"
	"mangaeditor/internal/testsupport"
)

func waitReady(t *testing.T, s *session.Session) syncctl.State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	state, err := s.WaitForSync(ctx)
	if err != nil {
		t.Fatalf("WaitForSync: %v", err)
	}
	return state
}

func TestSessionLoadsRowsFromService(t *testing.T) {
	serverCfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, serverCfg)
	testsupport.NewRow(t, store, "/pages/001.png", "hello", "")
	testsupport.NewRow(t, store, "/pages/002.png", "world", "monde")

	srv, err := api.NewServer(serverCfg, store, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithServerURL(ts.URL))
	s, err := session.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if state := waitReady(t, s); state != syncctl.StateReady {
		t.Fatalf("state = %s", state)
	}
	snapshot := s.Store.Snapshot()
	if len(snapshot) != 2 || snapshot[0].MediaPath != "/pages/001.png" || snapshot[1].Translation != "monde" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestSessionEditsSurviveReopenWhenServiceIsDown(t *testing.T) {
	for _, backend := range []string{config.CacheBackendFile, config.CacheBackendBolt} {
		t.Run(backend, func(t *testing.T) {
			cfg := testsupport.NewConfig(t,
				testsupport.WithServerURL("http://127.0.0.1:1"),
				testsupport.WithCacheBackend(backend),
			)

			first, err := session.Open(context.Background(), cfg, nil)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if state := waitReady(t, first); state != syncctl.StateReadyStale {
				t.Fatalf("state = %s", state)
			}
			if _, err := first.Editor.EditCell(4, "text", "persisted"); err != nil {
				t.Fatalf("EditCell: %v", err)
			}
			if err := first.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			second, err := session.Open(context.Background(), cfg, nil)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer second.Close()
			waitReady(t, second)
			row, ok := second.Store.Row(4)
			if !ok || row.Text != "persisted" {
				t.Fatalf("row 4 after reopen = %+v ok=%v", row, ok)
			}
		})
	}
}

type failingSource struct{}

func (failingSource) ListRows(context.Context) ([]rows.Record, error) {
	return nil, errors.New("offline")
}

func TestSessionWithInjectedSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s, err := session.Open(context.Background(), cfg, nil, session.WithSource(failingSource{}))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if state := waitReady(t, s); state != syncctl.StateReadyStale {
		t.Fatalf("state = %s", state)
	}
	if got := len(s.Store.Snapshot()); got != rows.SeedSize {
		t.Fatalf("expected seed rows, got %d", got)
	}
	if id, ok := s.Store.Selection(); !ok || id != rows.SeedSelectedID {
		t.Fatalf("selection = %d,%v", id, ok)
	}
	if s.ID == "" {
		t.Fatal("expected session id")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s, err := session.Open(context.Background(), cfg, nil, session.WithSource(failingSource{}))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	waitReady(t, s)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
