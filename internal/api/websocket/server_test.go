package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fortuna/moneta/internal/store"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRunFinishedBroadcast(t *testing.T) {
	srv := NewServer(nil)
	defer srv.Shutdown(context.Background())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/runs"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitFor(t, func() bool { return srv.ClientCount() == 1 })

	srv.RunFinished(context.Background(), &store.ValuationRun{
		RunID:  "run-9",
		Season: "2024-25",
		Status: store.RunStatusCompleted,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var event RunEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		t.Fatalf("decode %s: %v", msg, err)
	}
	if event.Type != "run_finished" || event.Run == nil || event.Run.RunID != "run-9" || event.Run.Status != store.RunStatusCompleted {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	srv := NewServer(nil)
	defer srv.Shutdown(context.Background())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/runs"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitFor(t, func() bool { return srv.ClientCount() == 1 })

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	waitFor(t, func() bool { return srv.ClientCount() == 0 })
}

func TestHealth(t *testing.T) {
	srv := NewServer(nil)
	defer srv.Shutdown(context.Background())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/ws/health", nil))
	if !strings.Contains(rec.Body.String(), `"clients": 0`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
