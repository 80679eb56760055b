// Package ws serves game sessions over WebSocket. Each connection owns one
// session; the connection is the session's presentation port.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	service "github.com/okian/hearts/internal/app"
	"github.com/okian/hearts/internal/domain/dedupe"
	"github.com/okian/hearts/internal/domain/game"
	"github.com/okian/hearts/internal/domain/letter"
	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/pkg/logger"
	"github.com/okian/hearts/pkg/metrics"
)

const (
	defaultDedupeSize = 64
	closeTimeout      = 2 * time.Second
)

// Sessions opens and closes game sessions.
type Sessions interface {
	Open(ctx context.Context, port game.Port, opts ...game.Option) (*service.Session, error)
	Close(ctx context.Context, id string) error
}

// Handler upgrades requests and runs one session per connection.
type Handler struct {
	sessions   Sessions
	upgrader   websocket.Upgrader
	dedupeSize int
	area       model.Area
	logger     logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithDedupeSize sets how many recent collect IDs each connection remembers.
func WithDedupeSize(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.dedupeSize = n
		}
	}
}

// WithDefaultArea sets the play area assumed until the client reports one.
func WithDefaultArea(a model.Area) Option {
	return func(h *Handler) {
		if a.Valid() {
			h.area = a
		}
	}
}

// WithLogger sets a custom logger for the handler.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler creates a websocket handler backed by sessions.
func NewHandler(sessions Sessions, opts ...Option) *Handler {
	h := &Handler{
		sessions:   sessions,
		dedupeSize: defaultDedupeSize,
		area:       DefaultArea,
		logger:     logger.Get().Named("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Subprotocols:    []string{SubprotocolMsgpack, SubprotocolJSON},
			CheckOrigin:     sameOrigin,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// sameOrigin accepts non-browser clients and pages served from this host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// ServeHTTP handles GET /ws.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.RecordErrorByComponent("ws", "upgrade")
		h.logger.Warn(r.Context(), "upgrade failed", logger.Error(err))
		return
	}

	codec, err := CodecFor(conn.Subprotocol())
	if err != nil {
		h.logger.Warn(r.Context(), "closing connection", logger.Error(err))
		_ = conn.Close()
		return
	}

	metrics.UpdateWSConnections(1)
	defer metrics.UpdateWSConnections(-1)

	client := NewClient(conn, codec, h.area, h.logger)
	go client.WritePump()
	defer client.Close()

	ctx := context.WithoutCancel(r.Context())
	sess, err := h.sessions.Open(ctx, client)
	if err != nil {
		h.logger.Warn(ctx, "session rejected", logger.Error(err))
		client.Fail(err)
		return
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(ctx, closeTimeout)
		defer cancel()
		if err := h.sessions.Close(closeCtx, sess.ID()); err != nil &&
			!errors.Is(err, service.ErrSessionNotFound) && !errors.Is(err, service.ErrServiceStopped) {
			h.logger.Warn(closeCtx, "closing session", logger.String("sessionID", sess.ID()), logger.Error(err))
		}
	}()

	if err := h.hello(ctx, client, sess); err != nil {
		client.Fail(err)
		return
	}

	seen := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(h.dedupeSize))
	err = client.ReadPump(func(in Inbound) {
		h.dispatch(ctx, client, sess, seen, in)
	})
	if err != nil {
		h.logger.Debug(ctx, "connection ended", logger.String("sessionID", sess.ID()), logger.Error(err))
	}
}

func (h *Handler) hello(ctx context.Context, client *Client, sess *service.Session) error {
	var msg HelloMsg
	err := sess.Call(ctx, func(c *game.Controller) {
		cfg := c.Settings()
		msg = HelloMsg{
			SID: sess.ID(),
			Cfg: HelloConfig{
				Goal:         cfg.Goal,
				Duration:     cfg.Duration,
				Recipient:    cfg.Recipient,
				Sound:        c.Sound(),
				PopRemovalMs: int(game.PopRemoval / time.Millisecond),
				Choices:      choices(),
			},
		}
	})
	if err != nil {
		return err
	}
	client.Emit(MsgHello, msg)
	return nil
}

// dispatch routes one client message onto the session loop. Errors are
// reported to the client; none of them end the connection.
func (h *Handler) dispatch(ctx context.Context, client *Client, sess *service.Session, seen dedupe.Deduper, in Inbound) {
	var err error
	switch in.T {
	case MsgArea:
		var m AreaMsg
		if err = in.Bind(&m); err == nil && !client.SetArea(model.Area{W: m.W, H: m.H}) {
			err = ErrBadArea
		}
	case MsgStart:
		err = sess.Do(func(c *game.Controller) { c.Start() })
	case MsgReset:
		err = sess.Do(func(c *game.Controller) { c.Reset() })
	case MsgIntro:
		err = sess.Do(func(c *game.Controller) { c.Intro() })
	case MsgCollect:
		err = h.collect(ctx, sess, seen, in)
	case MsgSound:
		var m SoundMsg
		if err = in.Bind(&m); err == nil {
			err = sess.Do(func(c *game.Controller) { c.SetSound(m.On) })
		}
	case MsgOpenLetter:
		err = sess.Do(func(c *game.Controller) { client.Fail(c.OpenLetter()) })
	case MsgRespond:
		var m RespondMsg
		if err = in.Bind(&m); err == nil {
			err = sess.Do(func(c *game.Controller) { client.Fail(c.Respond(m.Choice)) })
		}
	case MsgSnapshot:
		err = sess.Do(func(c *game.Controller) { client.Emit(MsgSnapshot, c.Snapshot()) })
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownMessage, in.T)
	}

	if err != nil {
		metrics.RecordErrorByComponent("ws", "dispatch")
		h.logger.Debug(ctx, "message rejected",
			logger.String("sessionID", sess.ID()),
			logger.String("type", in.T),
			logger.Error(err))
		client.Fail(err)
	}
}

// collect forwards a collect request unless the same heart was already
// requested on this connection.
func (h *Handler) collect(ctx context.Context, sess *service.Session, seen dedupe.Deduper, in Inbound) error {
	var m CollectMsg
	if err := in.Bind(&m); err != nil {
		return err
	}
	if m.ID == "" {
		return ErrMissingTargetID
	}
	if seen.SeenAndRecord(ctx, m.ID) {
		metrics.RecordWSDuplicate()
		return nil
	}
	if err := sess.Do(func(c *game.Controller) { c.Collect(m.ID) }); err != nil {
		seen.Unrecord(ctx, m.ID)
		return err
	}
	return nil
}

func choices() []string {
	all := letter.Choices()
	out := make([]string, len(all))
	for i, c := range all {
		out[i] = string(c)
	}
	return out
}
