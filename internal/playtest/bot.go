package playtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/hearts/internal/adapters/http/ws"
	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/pkg/logger"
)

// errSessionRejected is returned when the server refuses to open a session.
var errSessionRejected = errors.New("session rejected")

// socketURL turns the service base URL into its websocket endpoint.
func socketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing base url: %w", err)
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

// bot plays one game over one connection.
type bot struct {
	cfg   *Config
	conn  *websocket.Conn
	codec ws.Codec
	rng   *rand.Rand

	wmu    sync.Mutex
	timers []*time.Timer
}

func dial(ctx context.Context, cfg *Config) (*websocket.Conn, ws.Codec, error) {
	target, err := socketURL(cfg.BaseURL)
	if err != nil {
		return nil, nil, err
	}
	sub := ws.SubprotocolJSON
	if cfg.Msgpack {
		sub = ws.SubprotocolMsgpack
	}
	d := websocket.Dialer{Subprotocols: []string{sub}, HandshakeTimeout: cfg.Timeout}
	conn, _, err := d.DialContext(ctx, target, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("dialing %s: %w", target, err)
	}
	codec, err := ws.CodecFor(conn.Subprotocol())
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, codec, nil
}

// PlayGame connects, plays until a round is won or MaxRounds rounds time out,
// answers the letter and disconnects.
func PlayGame(ctx context.Context, cfg *Config, rng *rand.Rand) Result {
	start := time.Now()
	res := Result{}
	fail := func(err error) Result {
		res.Outcome = OutcomeFailed
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	conn, codec, err := dial(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	b := &bot{cfg: cfg, conn: conn, codec: codec, rng: rng}
	defer b.stopTimers()

	if err := b.send(ws.MsgArea, ws.AreaMsg{W: cfg.AreaW, H: cfg.AreaH}); err != nil {
		return fail(err)
	}
	if err := b.send(ws.MsgStart, nil); err != nil {
		return fail(err)
	}
	res.Rounds = 1

	greeted := false
	for {
		in, err := b.read()
		if err != nil {
			if ctx.Err() != nil {
				return fail(ctx.Err())
			}
			return fail(err)
		}

		switch in.T {
		case ws.MsgHello:
			greeted = true

		case ws.MsgError:
			var e ws.ErrorMsg
			_ = in.Bind(&e)
			if !greeted {
				return fail(fmt.Errorf("%w: %s", errSessionRejected, e.Msg))
			}
			logger.Get().Debug(ctx, "server error", logger.String("msg", e.Msg))

		case ws.MsgSpawn:
			var t model.Target
			if err := in.Bind(&t); err != nil {
				return fail(err)
			}
			res.Spawned++
			if b.rng.Float64() < cfg.HitRate {
				b.clickLater(t.ID)
			}

		case ws.MsgRemove:
			var m ws.RemoveMsg
			if err := in.Bind(&m); err != nil {
				return fail(err)
			}
			switch m.Why {
			case model.Collected:
				res.Collects++
			case model.Missed:
				res.Misses++
			}

		case ws.MsgScore:
			var s ws.ScoreMsg
			if err := in.Bind(&s); err == nil {
				res.Score = s.Score
			}

		case ws.MsgOverlay:
			var o model.Overlay
			if err := in.Bind(&o); err != nil {
				return fail(err)
			}
			switch o.Kind {
			case model.OverlayWon:
				res.Outcome = OutcomeWon
				res.Duration = time.Since(start)
				if cfg.Choice == "" {
					return res
				}
				if err := b.send(ws.MsgRespond, ws.RespondMsg{Choice: cfg.Choice}); err != nil {
					return fail(err)
				}
			case model.OverlayTimedOut:
				if res.Rounds < cfg.MaxRounds {
					res.Rounds++
					if err := b.send(ws.MsgStart, nil); err != nil {
						return fail(err)
					}
					continue
				}
				res.Outcome = OutcomeTimedOut
				res.Duration = time.Since(start)
				return res
			}

		case ws.MsgReply:
			res.Replied = true
			return res
		}
	}
}

// clickLater collects id after the reaction delay.
func (b *bot) clickLater(id string) {
	t := time.AfterFunc(b.cfg.Reaction, func() {
		_ = b.send(ws.MsgCollect, ws.CollectMsg{ID: id})
	})
	b.wmu.Lock()
	b.timers = append(b.timers, t)
	b.wmu.Unlock()
}

func (b *bot) stopTimers() {
	b.wmu.Lock()
	defer b.wmu.Unlock()
	for _, t := range b.timers {
		t.Stop()
	}
	b.timers = nil
}

func (b *bot) send(t string, data any) error {
	frame, err := b.codec.Encode(ws.Envelope{T: t, Data: data})
	if err != nil {
		return err
	}
	b.wmu.Lock()
	defer b.wmu.Unlock()
	_ = b.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return b.conn.WriteMessage(b.codec.MessageType(), frame)
}

func (b *bot) read() (ws.Inbound, error) {
	_ = b.conn.SetReadDeadline(time.Now().Add(b.cfg.Timeout))
	_, data, err := b.conn.ReadMessage()
	if err != nil {
		return ws.Inbound{}, err
	}
	return b.codec.Decode(data)
}
