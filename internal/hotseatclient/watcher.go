package hotseatclient

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/cheese-hotseat/internal/obslog"
	"github.com/park285/cheese-hotseat/pkg/hotseatdto"
)

// ErrWatcherClosed is returned by Connect after Close.
var ErrWatcherClosed = errors.New("watcher closed")

type WatchState int

const (
	WatchDisconnected WatchState = iota
	WatchConnecting
	WatchConnected
	WatchReconnecting
	WatchFailed
)

func (s WatchState) String() string {
	switch s {
	case WatchConnecting:
		return "connecting"
	case WatchConnected:
		return "connected"
	case WatchReconnecting:
		return "reconnecting"
	case WatchFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

type FrameCallback func(st *hotseatdto.State)

type StateCallback func(state WatchState)

type frameEntry struct {
	id       int
	callback FrameCallback
}

type stateEntry struct {
	id       int
	callback StateCallback
}

// Watcher follows the server's /ws stream and reconnects when it drops.
type Watcher struct {
	wsURL string

	connM sync.Mutex
	conn  *websocket.Conn

	state  WatchState
	stateM sync.RWMutex

	frameCbs []frameEntry
	stateCbs []stateEntry
	nextCbID int
	cbM      sync.RWMutex

	maxReconnectAttempts int
	pingInterval         time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc
}

// WatchURL turns an http(s) base URL into the stream's ws(s) URL.
func WatchURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

func NewWatcher(wsURL string, maxReconnectAttempts int) *Watcher {
	w := &Watcher{
		wsURL:                wsURL,
		state:                WatchDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		pingInterval:         30 * time.Second,
		stopCh:               make(chan struct{}),
	}
	w.rootCtx, w.rootCancel = context.WithCancel(context.Background())
	return w
}

// SetPingInterval must be called before Connect.
func (w *Watcher) SetPingInterval(d time.Duration) { w.pingInterval = d }

func (w *Watcher) Connect(ctx context.Context) error {
	w.stateM.RLock()
	st := w.state
	w.stateM.RUnlock()
	if st == WatchConnected || st == WatchConnecting {
		return nil
	}
	w.setState(WatchConnecting)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, err := w.dial(dialCtx)
	if err != nil {
		w.setState(WatchFailed)
		w.scheduleReconnect()
		return err
	}
	if !w.attach(conn) {
		w.setState(WatchDisconnected)
		return ErrWatcherClosed
	}
	return nil
}

func (w *Watcher) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, w.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	return conn, err
}

// attach makes conn current. Close takes connM after closing stopCh, so a
// conn attached here is either seen and closed by Close or refused.
func (w *Watcher) attach(conn *websocket.Conn) bool {
	w.connM.Lock()
	if w.isStopping() {
		w.connM.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "close")
		return false
	}
	w.conn = conn
	w.wg.Add(2)
	w.connM.Unlock()
	w.setState(WatchConnected)

	go w.listen(conn)
	go w.pingLoop(conn)
	return true
}

func (w *Watcher) listen(conn *websocket.Conn) {
	defer w.wg.Done()
	for {
		var st hotseatdto.State
		if err := wsjson.Read(w.rootCtx, conn, &st); err != nil {
			if w.isStopping() {
				return
			}
			obslog.L().Warn("watch_read", zap.Error(err))
			w.drop(conn, "reconnect")
			return
		}

		w.cbM.RLock()
		callbacks := make([]frameEntry, len(w.frameCbs))
		copy(callbacks, w.frameCbs)
		w.cbM.RUnlock()
		for _, entry := range callbacks {
			if entry.callback != nil {
				entry.callback(&st)
			}
		}
	}
}

func (w *Watcher) pingLoop(conn *websocket.Conn) {
	defer w.wg.Done()
	t := time.NewTicker(w.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-w.stopCh:
			return
		case <-w.rootCtx.Done():
			return
		case <-t.C:
			if !w.isCurrent(conn) {
				return
			}
			ctx, cancel := context.WithTimeout(w.rootCtx, 3*time.Second)
			err := conn.Ping(ctx)
			cancel()
			if err == nil {
				failures = 0
				continue
			}
			failures++
			if failures >= 2 {
				if w.isStopping() {
					return
				}
				w.drop(conn, "ping failure")
				return
			}
		}
	}
}

// drop closes conn once and, if it was still current, starts reconnecting.
func (w *Watcher) drop(conn *websocket.Conn, reason string) {
	w.connM.Lock()
	current := w.conn == conn
	if current {
		w.conn = nil
	}
	w.connM.Unlock()
	_ = conn.Close(websocket.StatusGoingAway, reason)
	if !current {
		return
	}
	w.setState(WatchDisconnected)
	w.scheduleReconnect()
}

func (w *Watcher) isCurrent(conn *websocket.Conn) bool {
	w.connM.Lock()
	defer w.connM.Unlock()
	return w.conn == conn
}

func (w *Watcher) scheduleReconnect() {
	if w.maxReconnectAttempts <= 0 {
		w.setState(WatchFailed)
		return
	}
	w.setState(WatchReconnecting)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for attempt := 1; attempt <= w.maxReconnectAttempts; attempt++ {
			select {
			case <-w.stopCh:
				return
			case <-time.After(backoffDuration(attempt)):
			}

			dialCtx, cancel := context.WithTimeout(w.rootCtx, 10*time.Second)
			conn, err := w.dial(dialCtx)
			cancel()
			if err != nil {
				obslog.L().Debug("watch_redial", zap.Int("attempt", attempt), zap.Error(err))
				continue
			}
			w.attach(conn)
			return
		}
		w.setState(WatchFailed)
	}()
}

func (w *Watcher) OnFrame(cb FrameCallback) int {
	w.cbM.Lock()
	defer w.cbM.Unlock()
	w.nextCbID++
	w.frameCbs = append(w.frameCbs, frameEntry{id: w.nextCbID, callback: cb})
	return w.nextCbID
}

func (w *Watcher) RemoveFrameCallback(id int) {
	w.cbM.Lock()
	defer w.cbM.Unlock()
	for i, cb := range w.frameCbs {
		if cb.id == id {
			w.frameCbs = append(w.frameCbs[:i], w.frameCbs[i+1:]...)
			break
		}
	}
}

func (w *Watcher) OnStateChange(cb StateCallback) int {
	w.cbM.Lock()
	defer w.cbM.Unlock()
	w.nextCbID++
	w.stateCbs = append(w.stateCbs, stateEntry{id: w.nextCbID, callback: cb})
	return w.nextCbID
}

func (w *Watcher) State() WatchState {
	w.stateM.RLock()
	defer w.stateM.RUnlock()
	return w.state
}

func (w *Watcher) setState(state WatchState) {
	w.stateM.Lock()
	w.state = state
	w.stateM.Unlock()

	w.cbM.RLock()
	callbacks := make([]stateEntry, len(w.stateCbs))
	copy(callbacks, w.stateCbs)
	w.cbM.RUnlock()
	for _, entry := range callbacks {
		if entry.callback != nil {
			entry.callback(state)
		}
	}
}

func (w *Watcher) Close(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.connM.Lock()
	conn := w.conn
	w.conn = nil
	w.connM.Unlock()
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "close")
	}
	w.rootCancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (w *Watcher) isStopping() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}
