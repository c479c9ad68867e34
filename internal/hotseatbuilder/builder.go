package hotseatbuilder

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/cheese-hotseat/internal/app"
	"github.com/park285/cheese-hotseat/internal/chess"
	"github.com/park285/cheese-hotseat/internal/config"
	"github.com/park285/cheese-hotseat/internal/msgcat"
	"github.com/park285/cheese-hotseat/internal/obslog"
	"github.com/park285/cheese-hotseat/internal/render"
	"github.com/park285/cheese-hotseat/internal/store"
)

type Deps struct {
	Store    store.Multi
	Catalog  *msgcat.Catalog
	Renderer *render.Renderer

	cfg     *config.AppConfig
	closers []io.Closer
}

// New builds the save chain, catalogue and renderer. The file store is always
// present; Redis and Postgres join the chain when their URLs are set.
func New(cfg *config.AppConfig) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	d := &Deps{cfg: cfg}

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	d.Catalog = cat
	d.Renderer = render.NewRenderer(render.NewLayout(cfg.SquareSize))

	chain := store.Multi{store.NewFileStore(cfg.SaveDir)}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		opts, perr := parseRedisURL(cfg.RedisURL)
		if perr != nil {
			return nil, fmt.Errorf("parse redis url: %w", perr)
		}
		rdb := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		d.closers = append(d.closers, rdb)
		chain = append(chain, store.NewRedisStore(rdb, cfg.SaveTTL))
		obslog.L().Info("store_redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	}

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		pg, err := store.NewPGStore(cfg.DatabaseURL)
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		d.closers = append(d.closers, pg)
		chain = append(chain, pg)
		obslog.L().Info("store_postgres")
	}

	d.Store = chain
	return d, nil
}

// NewMachine starts a fresh session wired to the deps' store and catalogue.
func (d *Deps) NewMachine(layout app.Layout) *app.Machine {
	session := chess.NewSession(chess.WithValidator(chess.Validator{PawnPushes: d.cfg.PawnPushes}))
	return app.NewMachine(session,
		app.WithStore(d.Store),
		app.WithCatalog(d.Catalog),
		app.WithLayout(layout),
	)
}

// Title is the window and HUD title from the catalogue.
func (d *Deps) Title() string {
	return d.Catalog.Text("banner.title", nil, "Hot-Seat Chess")
}

// Close releases every backend connection, collecting all errors.
func (d *Deps) Close() error {
	var errs error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	d.closers = nil
	return errs
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		host = "localhost"
	}
	portStr := u.Port()
	if portStr == "" {
		portStr = "6379"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}
	db := 0
	if u.Path != "" {
		p := strings.TrimPrefix(u.Path, "/")
		if p != "" {
			if n, err := strconv.Atoi(p); err == nil {
				db = n
			}
		}
	}
	pass, _ := u.User.Password()
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Username:     u.User.Username(),
		Password:     pass,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	}
	if u.Scheme == "rediss" {
		opts.TLSConfig = &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}
