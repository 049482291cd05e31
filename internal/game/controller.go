package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wordlebot/wordlebot/internal/events"
	"github.com/wordlebot/wordlebot/internal/protocol"
	"github.com/wordlebot/wordlebot/internal/solver"
)

const eventSource = "game"

// MessageStream exchanges whole protocol messages with the server.
// *connector.Conn implements it.
type MessageStream interface {
	ReadMessage() (protocol.Message, error)
	WriteMessage(msg protocol.Message) error
}

// ControllerConfig holds the collaborators of a Controller.
type ControllerConfig struct {
	Words    []string
	Selector solver.Selector
	Strategy string // recorded with the game
	Server   string // recorded with the game
	Bus      *events.EventBus
}

// Controller plays games over a MessageStream and reports their progress
// on the event bus.
type Controller struct {
	cfg    ControllerConfig
	logger zerolog.Logger
}

// NewController creates a Controller.
func NewController(cfg ControllerConfig) *Controller {
	if cfg.Selector == nil {
		cfg.Selector = solver.FirstSelector{}
	}
	if cfg.Strategy == "" {
		cfg.Strategy = solver.StrategyFirst
	}
	return &Controller{
		cfg:    cfg,
		logger: log.With().Str("component", "controller").Logger(),
	}
}

// game tracks one Play call for event reporting.
type game struct {
	username  string
	startedAt time.Time
	turns     []events.Turn
}

// Play runs one game to completion and returns the reward flag. It does
// not close the stream.
func (c *Controller) Play(ctx context.Context, stream MessageStream, username string) (flag string, err error) {
	sess := NewSession(c.cfg.Words, c.cfg.Selector)
	g := &game{username: username, startedAt: time.Now()}

	defer func() {
		if err != nil && ctx.Err() != nil {
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		c.finish(ctx, sess, g, err)
	}()

	hello, err := sess.Hello(username)
	if err != nil {
		return "", err
	}
	if err := stream.WriteMessage(hello); err != nil {
		return "", err
	}
	c.logger.Info().Str("username", username).Msg("hello sent")

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		msg, err := stream.ReadMessage()
		if err != nil {
			return "", err
		}

		before := sess.PoolSize()
		reply, err := sess.Advance(msg)
		c.observe(ctx, sess, g, msg, before, err)
		if err != nil {
			return "", err
		}

		if reply == nil {
			c.logger.Info().
				Str("session", sess.ID()).
				Int("guesses", sess.Guesses()).
				Msg("game won")
			return sess.Flag(), nil
		}

		if err := stream.WriteMessage(reply); err != nil {
			return "", err
		}
		c.guessSent(ctx, sess, g)
	}
}

// observe emits the events for a server message once the session has
// applied it. Feedback that exhausted the pool is still reported.
func (c *Controller) observe(ctx context.Context, sess *Session, g *game, msg protocol.Message, before int, advanceErr error) {
	var exhausted *solver.PoolExhaustedError
	applied := advanceErr == nil || errors.As(advanceErr, &exhausted)

	switch m := msg.(type) {
	case *protocol.Start:
		if !applied || sess.ID() != m.ID {
			return
		}
		c.logger.Info().Str("session", m.ID).Int("pool", sess.PoolSize()).Msg("session started")
		c.emit(ctx, events.EventSessionStarted, events.SessionStartedPayload{
			SessionID: m.ID,
			Username:  g.username,
			Server:    c.cfg.Server,
			PoolSize:  sess.PoolSize(),
		})

	case *protocol.Retry:
		record, ok := m.Latest()
		if !applied || !ok || len(g.turns) == 0 {
			return
		}
		marks := make([]int, len(record.Marks))
		for i, mk := range record.Marks {
			marks[i] = int(mk)
		}
		turn := &g.turns[len(g.turns)-1]
		turn.Marks = marks
		turn.PoolAfter = sess.PoolSize()

		c.logger.Debug().
			Str("word", record.Word).
			Ints("marks", marks).
			Int("pool", sess.PoolSize()).
			Msg("feedback received")
		c.emit(ctx, events.EventFeedbackReceived, events.FeedbackReceivedPayload{
			SessionID:  sess.ID(),
			Turn:       len(g.turns),
			Word:       record.Word,
			Marks:      marks,
			PoolBefore: before,
			PoolAfter:  sess.PoolSize(),
		})
	}
}

func (c *Controller) guessSent(ctx context.Context, sess *Session, g *game) {
	g.turns = append(g.turns, events.Turn{
		Word:       sess.LastGuess(),
		PoolBefore: sess.PoolSize(),
		PoolAfter:  sess.PoolSize(),
	})

	c.logger.Debug().
		Int("turn", len(g.turns)).
		Str("word", sess.LastGuess()).
		Int("pool", sess.PoolSize()).
		Msg("guess sent")
	c.emit(ctx, events.EventGuessSent, events.GuessSentPayload{
		SessionID: sess.ID(),
		Turn:      len(g.turns),
		Word:      sess.LastGuess(),
		PoolSize:  sess.PoolSize(),
	})
}

func (c *Controller) finish(ctx context.Context, sess *Session, g *game, err error) {
	payload := events.GameFinishedPayload{
		SessionID: sess.ID(),
		Username:  g.username,
		Server:    c.cfg.Server,
		Strategy:  c.cfg.Strategy,
		Outcome:   events.OutcomeWon,
		Flag:      sess.Flag(),
		StartedAt: g.startedAt,
		Duration:  time.Since(g.startedAt),
		Turns:     g.turns,
	}
	if err != nil {
		payload.Outcome = events.OutcomeError
		payload.Error = err.Error()
		c.logger.Error().Err(err).Str("session", sess.ID()).Msg("game failed")
	}

	// Observers still get the final event after cancellation.
	c.emit(context.WithoutCancel(ctx), events.EventGameFinished, payload)
}

func (c *Controller) emit(ctx context.Context, eventType events.EventType, payload interface{}) {
	if c.cfg.Bus == nil {
		return
	}
	c.cfg.Bus.EmitSync(ctx, events.Event{
		Type:    eventType,
		Source:  eventSource,
		Payload: payload,
	})
}
