package connector

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wordlebot/wordlebot/internal/protocol"
)

const writeTimeout = 10 * time.Second

// ErrClosed is returned by operations on a closed Conn.
var ErrClosed = errors.New("connection is closed")

// Conn wraps a connection to the game server and exchanges whole protocol
// messages over it. Reads and writes are meant for a single goroutine;
// Close may be called from any goroutine.
type Conn struct {
	mu      sync.Mutex
	writeMu sync.Mutex // serializes frame writes; mu is never held across I/O
	conn   net.Conn
	frames *protocol.FrameReader
	logger zerolog.Logger

	readTimeout time.Duration

	connectedAt  time.Time
	lastActivity time.Time

	closed bool
}

// NewConn wraps an established net.Conn.
func NewConn(conn net.Conn) *Conn {
	now := time.Now()
	return &Conn{
		conn:         conn,
		frames:       protocol.NewFrameReader(conn),
		connectedAt:  now,
		lastActivity: now,
		logger: log.With().
			Str("component", "connection").
			Str("remote", conn.RemoteAddr().String()).
			Logger(),
	}
}

// SetReadTimeout bounds each ReadMessage call. Zero waits forever.
func (c *Conn) SetReadTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readTimeout = d
}

// ReadMessage blocks until one frame arrives and decodes it.
func (c *Conn) ReadMessage() (protocol.Message, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, &protocol.TransportError{Op: "read", Err: ErrClosed}
	}
	timeout := c.readTimeout
	c.mu.Unlock()

	if timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
	}

	frame, err := c.frames.ReadFrame()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()

	c.logger.Trace().Bytes("frame", frame).Msg("received frame")
	return protocol.Decode(frame)
}

// WriteMessage encodes msg and writes it as one frame.
func (c *Conn) WriteMessage(msg protocol.Message) error {
	frame, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.IsClosed() {
		return &protocol.TransportError{Op: "write", Err: ErrClosed}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := protocol.WriteFrame(c.conn, frame); err != nil {
		return err
	}

	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()
	c.logger.Trace().Bytes("frame", frame).Msg("sent frame")
	return nil
}

// Close closes the connection. Calling it more than once is safe.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	c.logger.Debug().Msg("connection closed")
	return c.conn.Close()
}

// IsClosed returns whether the connection has been closed.
func (c *Conn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// LastActivity returns the time of the last read or write.
func (c *Conn) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

// ConnectedAt returns the time the connection was established.
func (c *Conn) ConnectedAt() time.Time {
	return c.connectedAt
}
