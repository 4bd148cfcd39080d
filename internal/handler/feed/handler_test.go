package feed

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/happy-thoughts/backend/internal/model/thought"
	feedService "github.com/zhouzirui/happy-thoughts/backend/internal/service/feed"
)

func setupServer(t *testing.T) (*httptest.Server, *feedService.Hub) {
	t.Helper()
	hub := feedService.NewHub(4, nil)
	r := chi.NewRouter()
	New(hub, nil).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return srv, hub
}

func waitForSubscribers(t *testing.T, hub *feedService.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers, got %d", want, hub.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// readSSE returns the next event name and data line.
func readSSE(t *testing.T, reader *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read sse: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && event != "":
			return event, data
		}
	}
}

func TestStreamDeliversEvents(t *testing.T) {
	srv, hub := setupServer(t)

	resp, err := http.Get(srv.URL + "/thoughts/stream")
	if err != nil {
		t.Fatalf("get stream: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	if event, _ := readSSE(t, reader); event != "ready" {
		t.Fatalf("expected ready event, got %q", event)
	}

	created := thought.New("streamed thought", time.UnixMilli(1_700_000_000_000))
	hub.Publish(feedService.NewEvent(feedService.EventCreated, created))

	event, data := readSSE(t, reader)
	if event != string(feedService.EventCreated) {
		t.Fatalf("expected %s, got %q", feedService.EventCreated, event)
	}
	var got feedService.Event
	if err := json.Unmarshal([]byte(data), &got); err != nil {
		t.Fatalf("invalid event payload %q: %v", data, err)
	}
	if got.Thought.ID != created.ID || got.Thought.Message != "streamed thought" {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestStreamEndsWhenHubCloses(t *testing.T) {
	srv, hub := setupServer(t)

	resp, err := http.Get(srv.URL + "/thoughts/stream")
	if err != nil {
		t.Fatalf("get stream: %v", err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readSSE(t, reader)
	hub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, err := reader.ReadString('\n'); err != nil {
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after hub closed")
	}
}

func TestWebSocketDeliversEvents(t *testing.T) {
	srv, hub := setupServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/thoughts/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitForSubscribers(t, hub, 1)

	liked := thought.New("socket thought", time.UnixMilli(1_700_000_000_000))
	liked.Hearts = 3
	hub.Publish(feedService.NewEvent(feedService.EventLiked, liked))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got feedService.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.Type != feedService.EventLiked || got.Thought.Hearts != 3 || got.Thought.ID != liked.ID {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestWebSocketUnsubscribesOnClose(t *testing.T) {
	srv, hub := setupServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/thoughts/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitForSubscribers(t, hub, 1)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	waitForSubscribers(t, hub, 0)
}
