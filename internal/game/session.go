// Package game plays one game against the server: the session state
// machine, the controller that drives it over a connection, and the client
// that owns the connection.
package game

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wordlebot/wordlebot/internal/protocol"
	"github.com/wordlebot/wordlebot/internal/solver"
)

// State is the position of a Session in the protocol conversation.
type State int

const (
	StateIdle State = iota
	StateAwaitingStart
	StateAwaitingResponse
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingStart:
		return "awaiting_start"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further messages are accepted.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Session is the client side of one game. It performs no I/O: each server
// message goes in through Advance and the reply to send comes back out.
// A Session is not safe for concurrent use.
type Session struct {
	state    State
	id       string
	flag     string
	words    []string
	pool     solver.Pool
	selector solver.Selector

	lastGuess string
	guesses   int

	logger zerolog.Logger
}

// NewSession creates a session that draws its candidates from words. The
// slice is copied into the pool when the server starts the game.
func NewSession(words []string, selector solver.Selector) *Session {
	if selector == nil {
		selector = solver.FirstSelector{}
	}
	return &Session{
		words:    words,
		selector: selector,
		logger:   log.With().Str("component", "session").Logger(),
	}
}

// Hello opens the conversation.
func (s *Session) Hello(username string) (*protocol.Hello, error) {
	if s.state != StateIdle {
		return nil, protocol.Protocolf("hello sent in state %s", s.state)
	}
	s.state = StateAwaitingStart
	return &protocol.Hello{Username: username}, nil
}

// Advance applies one server message. It returns the Guess to send next,
// or nil once the game is won. Any error leaves the session in StateFailed.
func (s *Session) Advance(msg protocol.Message) (protocol.Message, error) {
	reply, err := s.advance(msg)
	if err != nil {
		s.state = StateFailed
		return nil, err
	}
	return reply, nil
}

func (s *Session) advance(msg protocol.Message) (protocol.Message, error) {
	if msg == nil {
		return nil, protocol.Protocolf("nil message in state %s", s.state)
	}

	switch s.state {
	case StateAwaitingStart:
		if m, ok := msg.(*protocol.Error); ok {
			return nil, &protocol.ProtocolError{
				Reason: "server error while awaiting start",
				Err:    &ServerError{Message: m.Message},
			}
		}
		start, ok := msg.(*protocol.Start)
		if !ok {
			return nil, protocol.Protocolf("unexpected %s message while awaiting start", msg.Type())
		}
		s.id = start.ID
		s.pool = solver.NewPool(s.words)
		s.state = StateAwaitingResponse
		s.logger = s.logger.With().Str("session", s.id).Logger()
		s.logger.Debug().Int("pool", s.pool.Len()).Msg("session started")
		return s.nextGuess()

	case StateAwaitingResponse:
		switch m := msg.(type) {
		case *protocol.Retry:
			s.checkID(m.ID)
			return s.applyRetry(m)
		case *protocol.Bye:
			s.checkID(m.ID)
			s.flag = m.Flag
			s.state = StateSucceeded
			s.logger.Debug().Int("guesses", s.guesses).Msg("session won")
			return nil, nil
		case *protocol.Error:
			return nil, &ServerError{Message: m.Message}
		default:
			return nil, protocol.Protocolf("unexpected %s message while awaiting response", msg.Type())
		}

	default:
		return nil, protocol.Protocolf("unexpected %s message in state %s", msg.Type(), s.state)
	}
}

func (s *Session) applyRetry(m *protocol.Retry) (protocol.Message, error) {
	record, ok := m.Latest()
	if !ok {
		return nil, protocol.Protocolf("retry carries no guess history")
	}
	if record.Word != s.lastGuess {
		s.logger.Warn().
			Str("expected", s.lastGuess).
			Str("got", record.Word).
			Msg("latest feedback is not for the last guess")
	}

	// A retry rules out the scored word and the last guess, which Filter
	// keeps when no mark is WrongPosition.
	before := s.pool.Len()
	s.pool = solver.Filter(s.pool, record.Word, record.Marks).Without(record.Word, s.lastGuess)

	s.logger.Debug().
		Str("word", record.Word).
		Int("before", before).
		Int("after", s.pool.Len()).
		Msg("applied feedback")

	if s.pool.Len() == 0 {
		return nil, &solver.PoolExhaustedError{Guess: record.Word, Marks: record.Marks}
	}
	return s.nextGuess()
}

func (s *Session) nextGuess() (protocol.Message, error) {
	word, err := s.selector.Select(s.pool)
	if err != nil {
		return nil, err
	}
	s.lastGuess = word
	s.guesses++
	return &protocol.Guess{ID: s.id, Word: word}, nil
}

func (s *Session) checkID(id string) {
	if id != s.id {
		s.logger.Warn().Str("got", id).Msg("server message carries a different session id")
	}
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// ID returns the session id issued by the server.
func (s *Session) ID() string { return s.id }

// Flag returns the reward flag once the game is won.
func (s *Session) Flag() string { return s.flag }

// PoolSize returns the number of remaining candidates.
func (s *Session) PoolSize() int { return s.pool.Len() }

// Guesses returns the number of guesses produced so far.
func (s *Session) Guesses() int { return s.guesses }

// LastGuess returns the most recent guessed word.
func (s *Session) LastGuess() string { return s.lastGuess }
