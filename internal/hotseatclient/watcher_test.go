package hotseatclient

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"github.com/park285/cheese-hotseat/pkg/hotseatdto"
)

func TestWatchURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:8080":  "ws://localhost:8080/ws",
		"https://chess.example/": "wss://chess.example/ws",
	}
	for in, want := range cases {
		if got := WatchURL(in); got != want {
			t.Fatalf("WatchURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWatcherReceivesFrames(t *testing.T) {
	ts, _ := startServer(t, nil)
	frames := make(chan *hotseatdto.State, 8)
	w := NewWatcher(WatchURL(ts.URL), 0)
	w.OnFrame(func(st *hotseatdto.State) { frames <- st })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer w.Close(context.Background())
	if w.State() != WatchConnected {
		t.Fatalf("state = %v", w.State())
	}

	next := func() *hotseatdto.State {
		t.Helper()
		select {
		case st := <-frames:
			return st
		case <-ctx.Done():
			t.Fatalf("no frame")
			return nil
		}
	}
	if st := next(); st.Screen != "main_menu" {
		t.Fatalf("first frame = %+v", st)
	}
	if _, err := NewClient(ts.URL).Button(ctx, "start"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if st := next(); st.Screen != "playing" {
		t.Fatalf("pushed frame = %+v", st)
	}
}

func TestWatcherFailsWithoutRetries(t *testing.T) {
	w := NewWatcher("ws://127.0.0.1:1/ws", 0)
	var states []WatchState
	w.OnStateChange(func(s WatchState) { states = append(states, s) })
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Connect(ctx); err == nil {
		t.Fatalf("expected dial error")
	}
	if w.State() != WatchFailed {
		t.Fatalf("state = %v", w.State())
	}
	if len(states) == 0 || states[0] != WatchConnecting {
		t.Fatalf("transitions = %v", states)
	}
	_ = w.Close(context.Background())
}

func TestWatcherRemoveFrameCallback(t *testing.T) {
	ts, _ := startServer(t, nil)
	var removedCalls atomic.Int32
	frames := make(chan *hotseatdto.State, 8)
	w := NewWatcher(WatchURL(ts.URL), 0)
	id := w.OnFrame(func(*hotseatdto.State) { removedCalls.Add(1) })
	w.OnFrame(func(st *hotseatdto.State) { frames <- st })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer w.Close(context.Background())

	// callbacks run in registration order, so the first frame reached both
	select {
	case <-frames:
	case <-ctx.Done():
		t.Fatalf("no first frame")
	}
	if n := removedCalls.Load(); n != 1 {
		t.Fatalf("first callback calls = %d", n)
	}

	w.RemoveFrameCallback(id)
	if _, err := NewClient(ts.URL).Button(ctx, "start"); err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case st := <-frames:
		if st.Screen != "playing" {
			t.Fatalf("pushed frame = %+v", st)
		}
	case <-ctx.Done():
		t.Fatalf("no pushed frame")
	}
	if n := removedCalls.Load(); n != 1 {
		t.Fatalf("removed callback still called, calls = %d", n)
	}
}

func TestWatcherRefusesConnAfterClose(t *testing.T) {
	ts, _ := startServer(t, nil)
	w := NewWatcher(WatchURL(ts.URL), 3)
	if err := w.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, WatchURL(ts.URL), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	// a redial that lands after Close must not leak its connection
	if w.attach(conn) {
		t.Fatalf("attach accepted a conn after Close")
	}
	if w.isCurrent(conn) || w.State() == WatchConnected {
		t.Fatalf("closed watcher adopted the conn, state = %v", w.State())
	}
	if err := conn.Ping(ctx); err == nil {
		t.Fatalf("refused conn is still open")
	}

	if err := w.Connect(ctx); !errors.Is(err, ErrWatcherClosed) {
		t.Fatalf("Connect after Close = %v", err)
	}
}
