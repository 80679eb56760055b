package ws

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/hearts/internal/domain/game"
	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/pkg/logger"
	"github.com/okian/hearts/pkg/metrics"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
)

// DefaultArea is used until the client reports its play area.
var DefaultArea = model.Area{W: 360, H: 420}

// Client is one websocket connection. It is the game.Port of its session:
// controller calls are encoded and queued for the write pump.
type Client struct {
	conn       *websocket.Conn
	codec      Codec
	send       chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	area       atomic.Pointer[model.Area]
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
	logger     logger.Logger
}

var _ game.Port = (*Client)(nil)

// NewClient creates a client for an upgraded connection.
func NewClient(conn *websocket.Conn, codec Codec, area model.Area, log logger.Logger) *Client {
	c := &Client{
		conn:       conn,
		codec:      codec,
		send:       make(chan []byte, sendBufSize),
		done:       make(chan struct{}),
		remoteAddr: conn.RemoteAddr().String(),
		logger:     log,
	}
	c.area.Store(&area)
	return c
}

// ReadPump reads messages until the connection fails, the client exceeds
// the rate limit or the client is closed. Every decoded message goes to handle.
func (c *Client) ReadPump(handle func(in Inbound)) error {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn(context.Background(), "ws read failed",
					logger.String("remote", c.remoteAddr),
					logger.Error(err))
				return err
			}
			return nil
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			c.logger.Warn(context.Background(), "rate limit exceeded, disconnecting",
				logger.String("remote", c.remoteAddr))
			metrics.RecordErrorByComponent("ws", "rate_limited")
			return ErrRateLimited
		}

		in, err := c.codec.Decode(message)
		if err != nil {
			metrics.RecordErrorByComponent("ws", "decode")
			c.Fail(err)
			continue
		}
		metrics.RecordWSMessage("in", in.T)
		handle(in)
	}
}

// WritePump writes queued messages and keepalive pings until the client is
// closed or a write fails. Messages queued before Close are flushed first.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(c.codec.MessageType(), message); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			for {
				select {
				case message := <-c.send:
					if err := c.write(c.codec.MessageType(), message); err != nil {
						return
					}
				default:
					_ = c.write(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

func (c *Client) write(kind int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(kind, data)
}

// Close stops the write pump. Messages emitted afterwards are dropped.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed once Close has been called.
func (c *Client) Done() <-chan struct{} { return c.done }

// SetArea records the client's play area. It reports false and keeps the
// previous area when a side is not a positive finite number.
func (c *Client) SetArea(a model.Area) bool {
	if !a.Valid() {
		return false
	}
	c.area.Store(&a)
	return true
}

// Fail reports err to the client as an error message.
func (c *Client) Fail(err error) {
	if err == nil {
		return
	}
	c.Emit(MsgError, ErrorMsg{Msg: err.Error()})
}

// Emit encodes and queues one message. A slow client loses the message
// rather than blocking the session loop.
func (c *Client) Emit(t string, data any) {
	b, err := c.codec.Encode(Envelope{T: t, Data: data})
	if err != nil {
		metrics.RecordErrorByComponent("ws", "encode")
		c.logger.Error(context.Background(), "encode failed", logger.String("type", t), logger.Error(err))
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- b:
		metrics.RecordWSMessage("out", t)
	default:
		metrics.RecordErrorByComponent("ws", "slow_client")
		c.logger.Debug(context.Background(), "client too slow, dropping message", logger.String("type", t))
	}
}

// Bounds implements game.Port.
func (c *Client) Bounds() model.Area { return *c.area.Load() }

func (c *Client) ShowOverlay(o model.Overlay) { c.Emit(MsgOverlay, o) }
func (c *Client) HideOverlay()                { c.Emit(MsgOverlayHide, nil) }

func (c *Client) SetScore(score, goal int) {
	progress := 0.0
	if goal > 0 {
		progress = min(float64(score)/float64(goal), 1)
	}
	c.Emit(MsgScore, ScoreMsg{Score: score, Goal: goal, Progress: progress})
}

func (c *Client) SetTime(remaining int) { c.Emit(MsgTime, TimeMsg{Remaining: remaining}) }
func (c *Client) SetCombo(combo int)    { c.Emit(MsgCombo, ComboMsg{Combo: combo}) }

func (c *Client) SpawnTarget(t model.Target) { c.Emit(MsgSpawn, t) }
func (c *Client) ClearTargets()              { c.Emit(MsgClear, nil) }

func (c *Client) RemoveTarget(id string, why model.Resolution) {
	c.Emit(MsgRemove, RemoveMsg{ID: id, Why: why})
}

func (c *Client) SetLetterEnabled(enabled bool) { c.Emit(MsgLetter, LetterMsg{Enabled: enabled}) }
func (c *Client) ShowReply(r model.Reply)       { c.Emit(MsgReply, r) }
func (c *Client) HideReply()                    { c.Emit(MsgReplyHide, nil) }

func (c *Client) PlayCue(cue model.Cue) { c.Emit(MsgCue, CueMsg{Cue: cue}) }
