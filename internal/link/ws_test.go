package link

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/boopdotpng/auto-chessboard/internal/board"
	"github.com/boopdotpng/auto-chessboard/internal/engine"
	"github.com/boopdotpng/auto-chessboard/internal/events"
	"github.com/boopdotpng/auto-chessboard/internal/game"
)

func dialTestServer(t *testing.T) *websocket.Conn {
	t.Helper()
	bus := events.NewBus()
	bus.Register(game.NewController(engine.NewEngine(), bus, nil).HandleEvent)
	s := NewServer(bus)
	bus.Register(s.HandleEvent)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Run(ctx)

	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServerSession(t *testing.T) {
	conn := dialTestServer(t)

	send := func(frame string) {
		t.Helper()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatal(err)
		}
	}
	read := func() string {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}

	send("REQ_BOARD")
	want := fmt.Sprintf("BOARD %d:%s", len(board.StartFEN), board.StartFEN)
	if got := read(); got != want {
		t.Errorf("REQ_BOARD reply = %q, want %q", got, want)
	}

	send("MOVE 12 28")
	if got := read(); got != "MOVED 2:e4" {
		t.Errorf("move reply = %q, want MOVED 2:e4", got)
	}
	if got := read(); !strings.Contains(got, " b KQkq e3 ") {
		t.Errorf("board update = %q, want black to move with e3 target", got)
	}

	send("MOVE 12 28")
	if got := read(); !strings.HasPrefix(got, "INVALID ") {
		t.Errorf("illegal move reply = %q, want INVALID frame", got)
	}

	send("gibberish")
	if got := read(); !strings.HasPrefix(got, "INVALID ") {
		t.Errorf("bad frame reply = %q, want INVALID frame", got)
	}
}

func TestServerHealthz(t *testing.T) {
	srv := httptest.NewServer(NewServer(events.NewBus()).Router())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}
