package channel

import (
	"errors"
	"log/slog"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
	"github.com/rocketscienceinc/tictactoe-worlds/internal/monitor"
)

const (
	writeWait         = 10 * time.Second
	defaultSendBuffer = 64
)

// Conn is the part of *websocket.Conn a channel needs.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	RemoteAddr() net.Addr
	Close() error
}

// Receiver gets every inbound message of the channels it subscribed to.
type Receiver interface {
	Receive(msg message.Message)
}

type status int

const (
	statusPending status = iota
	statusOpen
	statusClosed
)

type Options struct {
	Logger *slog.Logger
	// Registry lists the tags accepted from the peer.
	Registry *message.Registry
	Metrics  *monitor.Metrics
	// SendBuffer bounds the outbound queue of an open channel.
	SendBuffer int
	// Translate rewrites inbound messages before fan-out.
	Translate func(message.Message) message.Message
}

// Channel is one peer connection: tagged messages out, decoded messages fanned out to receivers.
type Channel struct {
	logger    *slog.Logger
	registry  *message.Registry
	metrics   *monitor.Metrics
	translate func(message.Message) message.Message

	mu        sync.Mutex
	status    status
	conn      Conn
	deferred  []message.Message
	outbox    chan []byte
	receivers []Receiver

	closeOnce sync.Once
}

// New - creates a channel waiting for its connection; sends are deferred until Open.
func New(opts Options) *Channel {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}

	if opts.Translate == nil {
		opts.Translate = func(msg message.Message) message.Message { return msg }
	}

	return &Channel{
		logger:    opts.Logger.With("component", "channel"),
		registry:  opts.Registry,
		metrics:   opts.Metrics,
		translate: opts.Translate,
		outbox:    make(chan []byte, opts.SendBuffer),
	}
}

// Open - attaches the connection, flushes deferred sends in call order and emits Connected.
func (that *Channel) Open(conn Conn) {
	that.mu.Lock()

	if that.status != statusPending {
		that.mu.Unlock()
		that.logger.Error("open on a channel that is not pending", "remote", conn.RemoteAddr())
		return
	}

	that.conn = conn
	that.status = statusOpen

	go that.writeLoop(conn)

	deferred := that.deferred
	that.deferred = nil

	overflowed := false
	for _, msg := range deferred {
		overflowed = that.push(msg) || overflowed
	}

	that.mu.Unlock()

	that.dispatch(message.Connected{})

	if overflowed {
		that.Close()
	}
}

// Send - queues msg for the peer without waiting for delivery.
func (that *Channel) Send(msg message.Message) {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch that.status {
	case statusPending:
		that.deferred = append(that.deferred, msg)
	case statusOpen:
		// receivers may hold locks of their own while sending
		if that.push(msg) {
			go that.Close()
		}
	case statusClosed:
		that.logger.Error("send on closed channel", "message", msg.Tag(), "payload", msg, "remote", that.remoteAddr())
		that.metrics.MessageDropped(monitor.DropClosed)
	}
}

// push - encodes and enqueues msg; the caller holds mu. A full outbox means the peer can no
// longer be kept in step: the connection is cut and push reports true so the caller closes
// the channel. The peer resyncs on reconnect.
func (that *Channel) push(msg message.Message) bool {
	if that.status == statusClosed {
		that.metrics.MessageDropped(monitor.DropClosed)
		return false
	}

	raw, err := message.Encode(msg)
	if err != nil {
		that.logger.Error("failed to encode message", "message", msg.Tag(), "error", err)
		that.metrics.MessageDropped(monitor.DropEncode)
		return false
	}

	select {
	case that.outbox <- raw:
		return false
	default:
		that.logger.Error("send buffer is full, closing channel", "message", msg.Tag(), "remote", that.remoteAddr())
		that.metrics.MessageDropped(monitor.DropOverflow)

		that.status = statusClosed
		_ = that.conn.Close()

		return true
	}
}

func (that *Channel) Subscribe(receiver Receiver) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if slices.Contains(that.receivers, receiver) {
		return
	}

	that.receivers = append(that.receivers, receiver)
}

func (that *Channel) Unsubscribe(receiver Receiver) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.receivers = slices.DeleteFunc(that.receivers, func(r Receiver) bool {
		return r == receiver
	})
}

// Listen - reads frames until the connection fails, then closes the channel.
// Frames that do not decode are logged and skipped.
func (that *Channel) Listen() {
	log := that.logger.With("method", "Listen")

	that.mu.Lock()
	conn := that.conn
	that.mu.Unlock()

	if conn == nil {
		log.Error("listen on a channel without connection")
		return
	}

	defer that.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("connection lost", "remote", conn.RemoteAddr(), "error", err)
			} else {
				log.Debug("connection closed", "remote", conn.RemoteAddr(), "error", err)
			}
			return
		}

		msg, err := that.registry.Decode(raw)
		if err != nil {
			log.Debug("skipping message", "remote", conn.RemoteAddr(), "error", err)
			that.metrics.MessageDropped(monitor.DropMalformed)
			continue
		}

		that.metrics.MessageReceived(string(msg.Tag()))
		that.dispatch(msg)
	}
}

// Close - closes the connection and emits Disconnected to receivers exactly once.
// Pending deferred sends are dropped.
func (that *Channel) Close() {
	that.closeOnce.Do(func() {
		that.mu.Lock()
		that.status = statusClosed
		that.deferred = nil
		close(that.outbox)
		that.mu.Unlock()

		that.dispatch(message.Disconnected{})
	})
}

// Closed - reports whether the channel reached its terminal state.
func (that *Channel) Closed() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.status == statusClosed
}

func (that *Channel) RemoteAddr() net.Addr {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.remoteAddr()
}

func (that *Channel) remoteAddr() net.Addr {
	if that.conn == nil {
		return nil
	}

	return that.conn.RemoteAddr()
}

// dispatch - fans msg out to a snapshot of the receivers, in subscription order.
func (that *Channel) dispatch(msg message.Message) {
	that.mu.Lock()
	receivers := slices.Clone(that.receivers)
	that.mu.Unlock()

	msg = that.translate(msg)
	if msg == nil {
		return
	}

	for _, receiver := range receivers {
		receiver.Receive(msg)
	}
}

// writeLoop - drains the outbox in order; the connection is closed once the outbox is closed.
func (that *Channel) writeLoop(conn Conn) {
	log := that.logger.With("method", "writeLoop")

	failed := false

	for raw := range that.outbox {
		if failed {
			that.metrics.MessageDropped(monitor.DropClosed)
			continue
		}

		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Debug("failed to set write deadline", "error", err)
		}

		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			log.Error("failed to write message", "remote", conn.RemoteAddr(), "payload", string(raw), "error", err)
			that.metrics.MessageDropped(monitor.DropClosed)

			// unblocks the reader, which closes the channel
			failed = true
			_ = conn.Close()
		}
	}

	if !failed {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}

	if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Debug("failed to close connection", "error", err)
	}
}
