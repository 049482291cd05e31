// Package connector opens the connection to a game server and wraps it in
// a message-oriented Conn.
package connector

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultDialTimeout bounds connection establishment when the endpoint
// does not set one.
const DefaultDialTimeout = 10 * time.Second

// Endpoint identifies a game server.
type Endpoint struct {
	Host        string
	Port        int
	TLS         bool
	DialTimeout time.Duration

	// TLSConfig overrides the default client configuration. ServerName is
	// filled in from Host when empty.
	TLSConfig *tls.Config
}

// Addr returns host:port.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Dial connects to the endpoint. With TLS enabled the server certificate
// is verified against Host.
func Dial(ctx context.Context, ep Endpoint) (*Conn, error) {
	timeout := ep.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	addr := ep.Addr()

	log.Debug().Str("addr", addr).Bool("tls", ep.TLS).Msg("connecting to game server")

	netDialer := &net.Dialer{Timeout: timeout}

	var (
		conn net.Conn
		err  error
	)
	if ep.TLS {
		dialer := &tls.Dialer{NetDialer: netDialer, Config: clientTLSConfig(ep)}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = netDialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to game server at %s: %w", addr, err)
	}

	log.Info().Str("addr", addr).Bool("tls", ep.TLS).Msg("connected to game server")
	return NewConn(conn), nil
}

func clientTLSConfig(ep Endpoint) *tls.Config {
	var cfg *tls.Config
	if ep.TLSConfig != nil {
		cfg = ep.TLSConfig.Clone()
	} else {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = ep.Host
	}
	if cfg.MinVersion == 0 {
		cfg.MinVersion = tls.VersionTLS12
	}
	return cfg
}
