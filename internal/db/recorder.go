package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wordlebot/wordlebot/internal/events"
)

// Recorder persists every finished game published on the event bus.
type Recorder struct {
	history *HistoryDatabase
}

// NewRecorder creates a Recorder writing to history.
func NewRecorder(history *HistoryDatabase) *Recorder {
	return &Recorder{history: history}
}

// Register subscribes the recorder to the bus.
func (r *Recorder) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventGameFinished, "history-recorder", r.onGameFinished)
}

func (r *Recorder) onGameFinished(_ context.Context, event events.Event) error {
	p, ok := event.Payload.(events.GameFinishedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}

	id, err := r.history.RecordGame(GameFromEvent(p))
	if err != nil {
		return fmt.Errorf("failed to record game: %w", err)
	}

	log.Info().Int64("game_id", id).Str("outcome", string(p.Outcome)).Msg("game saved to history")
	return nil
}

// GameFromEvent converts a game_finished payload to a GameRecord.
func GameFromEvent(p events.GameFinishedPayload) GameRecord {
	game := GameRecord{
		SessionID:  p.SessionID,
		Username:   p.Username,
		Server:     p.Server,
		Strategy:   p.Strategy,
		Outcome:    string(p.Outcome),
		Flag:       p.Flag,
		Error:      p.Error,
		StartedAt:  p.StartedAt,
		Duration:   p.Duration,
		GuessCount: len(p.Turns),
	}
	for i, t := range p.Turns {
		game.Guesses = append(game.Guesses, GuessRecord{
			Turn:       i + 1,
			Word:       t.Word,
			Marks:      t.Marks,
			PoolBefore: t.PoolBefore,
			PoolAfter:  t.PoolAfter,
		})
	}
	return game
}
