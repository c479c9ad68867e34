package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/park285/cheese-hotseat/internal/obslog"
)

var ErrLoopStopped = errors.New("app loop stopped")

type request struct {
	ctx   context.Context
	in    Input
	reply chan result
}

type result struct {
	u   Update
	err error
}

// Loop owns a Machine on a single goroutine. Every front-end submits inputs
// here, so the board is only ever touched by Run.
type Loop struct {
	m       *Machine
	inbox   chan request
	stopped chan struct{}
	exited  chan struct{}

	mu      sync.Mutex
	current Update
	subs    map[int]chan Update
	nextSub int
}

func NewLoop(m *Machine) *Loop {
	return &Loop{
		m:       m,
		inbox:   make(chan request),
		stopped: make(chan struct{}),
		exited:  make(chan struct{}),
		current: m.View(),
		subs:    make(map[int]chan Update),
	}
}

// Run processes inputs until ctx is done. It must be called exactly once.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		close(l.stopped)
		l.mu.Lock()
		for id, ch := range l.subs {
			close(ch)
			delete(l.subs, id)
		}
		l.mu.Unlock()
	}()

	exited := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-l.inbox:
			u, err := l.m.Handle(req.ctx, req.in)
			if err != nil && !errors.Is(err, ErrExited) {
				obslog.L().Debug("app_input_error", zap.String("input", inputName(req.in)), zap.Error(err))
			}
			l.publish(u)
			req.reply <- result{u: u, err: err}
			if u.Quit && !exited {
				exited = true
				close(l.exited)
			}
		}
	}
}

// Submit hands one input to the loop and waits for the resulting update.
func (l *Loop) Submit(ctx context.Context, in Input) (Update, error) {
	reply := make(chan result, 1)
	select {
	case l.inbox <- request{ctx: ctx, in: in, reply: reply}:
	case <-ctx.Done():
		return Update{}, ctx.Err()
	case <-l.stopped:
		return Update{}, ErrLoopStopped
	}
	select {
	case r := <-reply:
		return r.u, r.err
	case <-ctx.Done():
		return Update{}, ctx.Err()
	}
}

// Current returns the latest published view. Events, cues and the slot belong
// to the input that produced them and are only carried on Submit replies and
// subscriber frames.
func (l *Loop) Current() Update {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Subscribe returns a channel of updates. A subscriber that falls behind by more
// than buf updates misses frames; the latest state is always in Current.
func (l *Loop) Subscribe(buf int) (<-chan Update, func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan Update, buf)
	l.mu.Lock()
	select {
	case <-l.stopped:
		l.mu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			if c, ok := l.subs[id]; ok {
				delete(l.subs, id)
				close(c)
			}
			l.mu.Unlock()
		})
	}
}

// Exited is closed once the machine reaches StateExited.
func (l *Loop) Exited() <-chan struct{} { return l.exited }

func (l *Loop) publish(u Update) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = settled(u)
	for _, ch := range l.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

func settled(u Update) Update {
	u.Events, u.Cues, u.Slot = nil, nil, ""
	return u
}

func inputName(in Input) string {
	switch in.(type) {
	case Pointer:
		return "pointer"
	case Click:
		return "click"
	case Press:
		return "press"
	case Choose:
		return "choose"
	case Escape:
		return "escape"
	case Quit:
		return "quit"
	case Save:
		return "save"
	case Load:
		return "load"
	default:
		return "unknown"
	}
}
