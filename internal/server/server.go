package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/cheese-hotseat/internal/app"
	"github.com/park285/cheese-hotseat/internal/chess"
	"github.com/park285/cheese-hotseat/internal/obslog"
	"github.com/park285/cheese-hotseat/internal/render"
	"github.com/park285/cheese-hotseat/internal/store"
	"github.com/park285/cheese-hotseat/pkg/hotseatdto"
)

const (
	maxJSONBodyBytes int64 = 1 << 16
	apiCSP                 = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
	wsWriteTimeout         = 5 * time.Second
)

// Server exposes an app.Loop over HTTP. Every mutation is a Submit, so requests
// from several browsers are applied one at a time.
type Server struct {
	loop     *app.Loop
	renderer *render.Renderer
	slots    store.Lister
	title    string

	srv *http.Server
}

type Option func(*Server)

// WithSlots enables GET /api/slots.
func WithSlots(l store.Lister) Option { return func(s *Server) { s.slots = l } }

// WithTitle sets the heading drawn on /screen.png.
func WithTitle(title string) Option { return func(s *Server) { s.title = title } }

func New(loop *app.Loop, renderer *render.Renderer, opts ...Option) *Server {
	s := &Server{loop: loop, renderer: renderer}
	for _, opt := range opts {
		opt(s)
	}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

// Listen serves until Close is called. A Close that lands first makes
// Listen return immediately.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	obslog.L().Info("http_listen", zap.String("addr", ln.Addr().String()))
	err = s.srv.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts the server down.
func (s *Server) Close(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.withJSON(s.handleState))
	mux.HandleFunc("POST /api/click", s.withJSON(s.handleClick))
	mux.HandleFunc("POST /api/button", s.withJSON(s.handleButton))
	mux.HandleFunc("POST /api/escape", s.withJSON(s.handleEscape))
	mux.HandleFunc("POST /api/save", s.withJSON(s.handleSave))
	mux.HandleFunc("POST /api/load", s.withJSON(s.handleLoad))
	mux.HandleFunc("GET /api/slots", s.withJSON(s.handleSlots))
	mux.HandleFunc("GET /screen.png", s.handleScreen)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return logRequests(mux)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		obslog.L().Debug("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

// ---- JSON helpers ----

func (s *Server) withJSON(h func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", apiCSP)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, hotseatdto.Response{Error: &hotseatdto.DomainError{Code: code, Message: msg}})
}

// decodeBody accepts an empty body as the zero value.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// submit runs one input and writes the resulting state, or the refusal with the state attached.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, in app.Input) {
	u, err := s.loop.Submit(r.Context(), in)
	if err == nil {
		writeJSON(w, http.StatusOK, hotseatdto.Response{State: ToState(u)})
		return
	}
	status, code := classify(err)
	resp := hotseatdto.Response{Error: &hotseatdto.DomainError{Code: code, Message: err.Error(), Retryable: status == http.StatusServiceUnavailable}}
	if code != hotseatdto.CodeUnavailable {
		resp.State = ToState(u)
	}
	writeJSON(w, status, resp)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, chess.ErrOutOfBounds), errors.Is(err, store.ErrInvalidSlot), errors.Is(err, app.ErrNoSlot):
		return http.StatusBadRequest, hotseatdto.CodeBadRequest
	case errors.Is(err, app.ErrButtonNotOffered):
		return http.StatusConflict, hotseatdto.CodeNotOffered
	case errors.Is(err, app.ErrNotPlaying):
		return http.StatusConflict, hotseatdto.CodeNotPlaying
	case errors.Is(err, chess.ErrPromotionPending):
		return http.StatusConflict, hotseatdto.CodePromotionPending
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, hotseatdto.CodeNotFound
	case errors.Is(err, app.ErrExited):
		return http.StatusGone, hotseatdto.CodeExited
	case errors.Is(err, app.ErrLoopStopped), errors.Is(err, app.ErrNoStore),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, hotseatdto.CodeUnavailable
	default:
		return http.StatusInternalServerError, hotseatdto.CodeInternal
	}
}

// ---- API ----

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, hotseatdto.Response{State: ToState(s.loop.Current())})
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req hotseatdto.ClickRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, hotseatdto.CodeBadRequest, "invalid json: "+err.Error())
		return
	}
	switch {
	case req.Row != nil && req.Col != nil:
		s.submit(w, r, app.Click{Pos: chess.Pos(*req.Row, *req.Col)})
	case req.X != nil && req.Y != nil:
		s.submit(w, r, app.Pointer{X: *req.X, Y: *req.Y})
	default:
		writeError(w, http.StatusBadRequest, hotseatdto.CodeBadRequest, "need {row,col} or {x,y}")
	}
}

func (s *Server) handleButton(w http.ResponseWriter, r *http.Request) {
	var req hotseatdto.ButtonRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, hotseatdto.CodeBadRequest, "invalid json: "+err.Error())
		return
	}
	switch {
	case req.Button != "":
		s.submit(w, r, app.Press{Button: app.Button(req.Button)})
	case req.Index != nil:
		s.submit(w, r, app.Choose{Index: *req.Index})
	default:
		writeError(w, http.StatusBadRequest, hotseatdto.CodeBadRequest, "need button or index")
	}
}

func (s *Server) handleEscape(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, app.Escape{})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req hotseatdto.SlotRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, hotseatdto.CodeBadRequest, "invalid json: "+err.Error())
		return
	}
	s.submit(w, r, app.Save{Slot: req.Slot})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req hotseatdto.SlotRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, hotseatdto.CodeBadRequest, "invalid json: "+err.Error())
		return
	}
	s.submit(w, r, app.Load{Slot: req.Slot})
}

func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	if s.slots == nil {
		writeJSON(w, http.StatusServiceUnavailable, hotseatdto.SlotsResponse{
			Slots: []string{},
			Error: &hotseatdto.DomainError{Code: hotseatdto.CodeUnavailable, Message: "no listable store"},
		})
		return
	}
	slots, err := s.slots.Slots(r.Context())
	if err != nil {
		obslog.L().Warn("store_slots", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, hotseatdto.SlotsResponse{
			Slots: []string{},
			Error: &hotseatdto.DomainError{Code: hotseatdto.CodeInternal, Message: err.Error(), Retryable: true},
		})
		return
	}
	if slots == nil {
		slots = []string{}
	}
	writeJSON(w, http.StatusOK, hotseatdto.SlotsResponse{Slots: slots})
}

// handleScreen renders the current frame: a full-screen menu on the main menu,
// otherwise the board with any pause or promotion menu laid over it.
func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	png, err := RenderUpdate(r.Context(), s.renderer, s.title, s.loop.Current())
	if err != nil {
		obslog.L().Error("render_screen", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// RenderUpdate draws u with the renderer's layout.
func RenderUpdate(ctx context.Context, rd *render.Renderer, title string, u app.Update) ([]byte, error) {
	var overlay *render.MenuView
	if u.Menu != nil {
		overlay = &render.MenuView{Title: u.Menu.Title, Buttons: u.Menu.Labels}
	}
	if u.State == app.StateMainMenu || u.State == app.StateExited {
		if overlay == nil {
			overlay = &render.MenuView{Title: u.Banner}
		}
		return rd.RenderMenu(ctx, *overlay)
	}
	return rd.RenderBoard(ctx, &u.Board, render.BoardOptions{
		Title:    title,
		Banner:   u.Banner,
		Status:   u.Status,
		Selected: u.Selected,
		LastMove: u.LastMove,
		Overlay:  overlay,
	})
}

// handleWS streams every update as JSON, starting with the current one.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Warn("ws_accept", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected close")

	updates, unsubscribe := s.loop.Subscribe(16)
	defer unsubscribe()

	// the client never sends; CloseRead handles pings and notices disconnects
	ctx := conn.CloseRead(r.Context())
	obslog.L().Info("ws_subscribe", zap.String("remote", r.RemoteAddr))

	if err := writeWS(ctx, conn, ToState(s.loop.Current())); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server stopping")
				return
			}
			if err := writeWS(ctx, conn, ToState(u)); err != nil {
				return
			}
		}
	}
}

func writeWS(ctx context.Context, conn *websocket.Conn, st *hotseatdto.State) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, st)
}
