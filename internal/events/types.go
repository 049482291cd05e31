// Package events defines the game events published while a session runs
// and the bus that delivers them to observers such as the history recorder
// and the telemetry publisher.
package events

import "time"

// EventType represents the type of event emitted through the EventBus.
type EventType string

const (
	EventSessionStarted   EventType = "session_started"
	EventGuessSent        EventType = "guess_sent"
	EventFeedbackReceived EventType = "feedback_received"
	EventGameFinished     EventType = "game_finished"
)

// Outcome is the terminal result of a game.
type Outcome string

const (
	OutcomeWon   Outcome = "won"
	OutcomeError Outcome = "error"
)

// Event is a single notification on the bus.
type Event struct {
	Type    EventType
	Source  string
	Time    time.Time
	Payload interface{}
}

// SessionStartedPayload is emitted when the server accepts the Hello.
type SessionStartedPayload struct {
	SessionID string `json:"session_id"`
	Username  string `json:"username"`
	Server    string `json:"server"`
	PoolSize  int    `json:"pool_size"`
}

// GuessSentPayload is emitted for every Guess written to the server.
type GuessSentPayload struct {
	SessionID string `json:"session_id"`
	Turn      int    `json:"turn"`
	Word      string `json:"word"`
	PoolSize  int    `json:"pool_size"`
}

// FeedbackReceivedPayload is emitted after a Retry has been applied to the pool.
type FeedbackReceivedPayload struct {
	SessionID  string `json:"session_id"`
	Turn       int    `json:"turn"`
	Word       string `json:"word"`
	Marks      []int  `json:"marks"`
	PoolBefore int    `json:"pool_before"`
	PoolAfter  int    `json:"pool_after"`
}

// Turn is one guess of a finished game. Marks is empty when the server
// answered the guess with Bye or Error instead of feedback.
type Turn struct {
	Word       string `json:"word"`
	Marks      []int  `json:"marks,omitempty"`
	PoolBefore int    `json:"pool_before"`
	PoolAfter  int    `json:"pool_after"`
}

// GameFinishedPayload is emitted exactly once per game, on every exit path.
type GameFinishedPayload struct {
	SessionID string        `json:"session_id,omitempty"`
	Username  string        `json:"username"`
	Server    string        `json:"server"`
	Strategy  string        `json:"strategy"`
	Outcome   Outcome       `json:"outcome"`
	Flag      string        `json:"flag,omitempty"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Turns     []Turn        `json:"turns"`
}

// Guesses returns the number of guesses sent.
func (p GameFinishedPayload) Guesses() int { return len(p.Turns) }
