package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/campusgraph/socialgraph/internal/api"
	"github.com/campusgraph/socialgraph/internal/ws"
)

func TestStream_DeliversNodeEvents(t *testing.T) {
	hub := ws.NewHub(testLogger())
	go hub.Run(context.Background())
	defer hub.Shutdown()

	m := &mockHealth{}
	srv := httptest.NewServer(api.NewRouter(&api.RouterDeps{
		Log:           testLogger(),
		DB:            m,
		Counter:       m,
		Graph:         &mockGraphService{},
		Relationships: &mockRelationshipService{},
		Hub:           hub,
		Version:       "test",
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/graph/stream/alice"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow() //nolint:errcheck // test teardown

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Publish(ws.EventRelationshipCreated, []string{"alice", "bob"}, map[string]string{"id": "r1"})

	_, msg, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var evt ws.Event
	if err := json.Unmarshal(msg, &evt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if evt.Type != ws.EventRelationshipCreated || evt.NodeID != "alice" || evt.ID != 1 {
		t.Errorf("unexpected event %+v", evt)
	}
}

func TestStream_RouteAbsentWithoutHub(t *testing.T) {
	t.Parallel()

	w := doRequest(newTestRouter(), http.MethodGet, "/api/v1/graph/stream/alice", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
