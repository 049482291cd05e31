package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wordlebot/wordlebot/internal/connector"
	"github.com/wordlebot/wordlebot/internal/protocol"
)

// DialFunc opens a connection to the game server.
type DialFunc func(ctx context.Context, ep connector.Endpoint) (*connector.Conn, error)

// ClientConfig configures a Client.
type ClientConfig struct {
	Endpoint    connector.Endpoint
	Username    string
	ReadTimeout time.Duration // 0 waits forever
	Dial        DialFunc      // nil uses connector.Dial
}

// Client owns the connection for a single game.
type Client struct {
	cfg        ClientConfig
	controller *Controller
}

// NewClient creates a Client that plays with controller.
func NewClient(cfg ClientConfig, controller *Controller) *Client {
	if cfg.Dial == nil {
		cfg.Dial = connector.Dial
	}
	return &Client{cfg: cfg, controller: controller}
}

// Run connects, plays one game and returns the reward flag. The connection
// is closed before Run returns, whatever the outcome. Cancelling ctx closes
// the connection, which unblocks a pending read.
func (c *Client) Run(ctx context.Context) (string, error) {
	conn, err := c.cfg.Dial(ctx, c.cfg.Endpoint)
	if err != nil {
		return "", &protocol.TransportError{Op: "dial", Err: err}
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		log.Debug().Msg("context cancelled, closing connection")
		conn.Close()
	})
	defer stop()

	conn.SetReadTimeout(c.cfg.ReadTimeout)

	return c.controller.Play(ctx, conn, c.cfg.Username)
}
