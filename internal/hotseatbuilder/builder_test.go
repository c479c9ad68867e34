package hotseatbuilder

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/park285/cheese-hotseat/internal/app"
	"github.com/park285/cheese-hotseat/internal/chess"
	"github.com/park285/cheese-hotseat/internal/config"
	"github.com/park285/cheese-hotseat/internal/render"
	"github.com/park285/cheese-hotseat/internal/store"
)

func baseConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	return &config.AppConfig{
		Mode:       config.ModeServe,
		Addr:       ":0",
		SquareSize: 40,
		SaveDir:    t.TempDir(),
		SaveTTL:    time.Hour,
	}
}

func TestParseRedisURL(t *testing.T) {
	opts, err := parseRedisURL("redis://:secret@cache.local:6380/2")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.Addr != "cache.local:6380" || opts.Password != "secret" || opts.DB != 2 || opts.TLSConfig != nil {
		t.Fatalf("opts = %+v", opts)
	}
	opts, err = parseRedisURL("rediss://cache.local")
	if err != nil || opts.Addr != "cache.local:6379" || opts.TLSConfig == nil {
		t.Fatalf("rediss opts = %+v %v", opts, err)
	}
	if _, err := parseRedisURL("http://cache.local"); err == nil {
		t.Fatalf("expected scheme error")
	}
}

func TestFileOnlyChain(t *testing.T) {
	d, err := New(baseConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer d.Close()
	if len(d.Store) != 1 {
		t.Fatalf("chain length = %d", len(d.Store))
	}
	if _, ok := d.Store[0].(*store.FileStore); !ok {
		t.Fatalf("first backend = %T", d.Store[0])
	}
	if d.Title() != "Hot-Seat Chess" {
		t.Fatalf("title = %q", d.Title())
	}
	if d.Renderer.Layout().SquareSize != 40 {
		t.Fatalf("square size = %d", d.Renderer.Layout().SquareSize)
	}
}

func TestRedisJoinsChain(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig(t)
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"
	cfg.PawnPushes = true

	d, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(d.Store) != 2 {
		t.Fatalf("chain length = %d", len(d.Store))
	}

	m := d.NewMachine(render.NewLayout(cfg.SquareSize))
	ctx := context.Background()
	if _, err := m.Handle(ctx, app.Press{Button: app.ButtonStart}); err != nil {
		t.Fatalf("start: %v", err)
	}
	// pawn pushes are enabled from config
	if _, err := m.Handle(ctx, app.Click{Pos: chess.Pos(6, 4)}); err != nil {
		t.Fatalf("select: %v", err)
	}
	u, err := m.Handle(ctx, app.Click{Pos: chess.Pos(5, 4)})
	if err != nil || u.MoveCount != 1 {
		t.Fatalf("push: %+v %v", u, err)
	}
	if _, err := m.Handle(ctx, app.Save{Slot: "both"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("hotseat:save:both") {
		t.Fatalf("redis did not receive the save")
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRedisUnreachable(t *testing.T) {
	cfg := baseConfig(t)
	cfg.RedisURL = "redis://127.0.0.1:1"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected ping failure")
	}
}
