// Package channeltest provides an in-memory connection for exercising channels without a socket.
package channeltest

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-worlds/internal/message"
)

var ErrClosed = errors.New("use of closed connection")

// Conn is a fake websocket connection. Frames pushed with Push are read by the channel,
// frames the channel writes are kept in order.
type Conn struct {
	inbound chan []byte
	done    chan struct{}
	once    sync.Once

	mu      sync.Mutex
	written [][]byte
	stall   chan struct{}
}

func New() *Conn {
	return &Conn{
		inbound: make(chan []byte, 64),
		done:    make(chan struct{}),
	}
}

func (that *Conn) ReadMessage() (int, []byte, error) {
	select {
	case raw := <-that.inbound:
		return websocket.TextMessage, raw, nil
	case <-that.done:
		return 0, nil, ErrClosed
	}
}

func (that *Conn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-that.done:
		return ErrClosed
	default:
	}

	that.mu.Lock()
	stall := that.stall
	that.mu.Unlock()

	if stall != nil {
		select {
		case <-stall:
		case <-that.done:
			return ErrClosed
		}
	}

	if messageType != websocket.TextMessage {
		return nil
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.written = append(that.written, data)

	return nil
}

func (that *Conn) SetWriteDeadline(time.Time) error { return nil }

func (that *Conn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000}
}

func (that *Conn) Close() error {
	that.once.Do(func() { close(that.done) })
	return nil
}

// Stall - blocks writes until Resume or Close, like a peer that stopped reading.
func (that *Conn) Stall() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.stall == nil {
		that.stall = make(chan struct{})
	}
}

// Resume - releases stalled writes.
func (that *Conn) Resume() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.stall != nil {
		close(that.stall)
		that.stall = nil
	}
}

// Closed - reports whether Close was called.
func (that *Conn) Closed() bool {
	select {
	case <-that.done:
		return true
	default:
		return false
	}
}

// Push - queues a raw frame for the reader.
func (that *Conn) Push(raw string) {
	that.inbound <- []byte(raw)
}

// Send - encodes msg and queues it for the reader.
func (that *Conn) Send(msg message.Message) error {
	raw, err := message.Encode(msg)
	if err != nil {
		return err
	}

	that.inbound <- raw

	return nil
}

// Written - returns the text frames written so far.
func (that *Conn) Written() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	out := make([]string, 0, len(that.written))
	for _, raw := range that.written {
		out = append(out, string(raw))
	}

	return out
}

// Messages - decodes every written frame with message.All; frames that fail to decode are skipped.
func (that *Conn) Messages() []message.Message {
	that.mu.Lock()
	defer that.mu.Unlock()

	out := make([]message.Message, 0, len(that.written))
	for _, raw := range that.written {
		if msg, err := message.All.Decode(raw); err == nil {
			out = append(out, msg)
		}
	}

	return out
}

// Tags - returns the tags of the written frames, in order.
func (that *Conn) Tags() []message.Tag {
	msgs := that.Messages()

	tags := make([]message.Tag, 0, len(msgs))
	for _, msg := range msgs {
		tags = append(tags, msg.Tag())
	}

	return tags
}
