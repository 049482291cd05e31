package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrGameNotFound is returned by GetGame for an unknown id.
var ErrGameNotFound = errors.New("game not found")

// HistoryDatabase records finished games and answers queries about them.
type HistoryDatabase struct {
	db *Database
}

// GameRecord is one finished game.
type GameRecord struct {
	ID         int64         `json:"id"`
	SessionID  string        `json:"session_id"`
	Username   string        `json:"username"`
	Server     string        `json:"server"`
	Strategy   string        `json:"strategy"`
	Outcome    string        `json:"outcome"`
	Flag       string        `json:"flag,omitempty"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
	GuessCount int           `json:"guess_count"`
	Guesses    []GuessRecord `json:"guesses,omitempty"`
}

// GuessRecord is one guess within a game.
type GuessRecord struct {
	Turn       int    `json:"turn"`
	Word       string `json:"word"`
	Marks      []int  `json:"marks,omitempty"`
	PoolBefore int    `json:"pool_before"`
	PoolAfter  int    `json:"pool_after"`
}

// Stats summarizes the recorded games.
type Stats struct {
	Total       int        `json:"total"`
	Won         int        `json:"won"`
	Failed      int        `json:"failed"`
	WinRate     float64    `json:"win_rate"`
	AvgGuesses  float64    `json:"avg_guesses"` // over won games
	BestGuesses int        `json:"best_guesses"`
	LastPlayed  *time.Time `json:"last_played,omitempty"`
}

// NewHistoryDatabase opens the history database and applies the schema.
func NewHistoryDatabase(dbPath string) (*HistoryDatabase, error) {
	database, err := NewDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	hdb := &HistoryDatabase{db: database}
	if err := hdb.migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return hdb, nil
}

// Close closes the underlying database.
func (h *HistoryDatabase) Close() error {
	return h.db.Close()
}

func (h *HistoryDatabase) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL DEFAULT '',
			username TEXT NOT NULL,
			server TEXT NOT NULL DEFAULT '',
			strategy TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			flag TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			started_at INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			guess_count INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS guesses (
			game_id INTEGER NOT NULL,
			turn INTEGER NOT NULL,
			word TEXT NOT NULL,
			marks TEXT NOT NULL DEFAULT '',
			pool_before INTEGER NOT NULL,
			pool_after INTEGER NOT NULL,
			PRIMARY KEY (game_id, turn),
			FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_games_started_at ON games(started_at);
	`

	_, err := h.db.Exec(schema)
	return err
}

// RecordGame stores a game and its guesses in one transaction and returns
// the new game id.
func (h *HistoryDatabase) RecordGame(game GameRecord) (int64, error) {
	var id int64

	err := h.db.Transaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO games (session_id, username, server, strategy, outcome, flag, error,
				started_at, duration_ms, guess_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			game.SessionID, game.Username, game.Server, game.Strategy, game.Outcome,
			game.Flag, game.Error, game.StartedAt.UnixMilli(), game.Duration.Milliseconds(),
			len(game.Guesses))
		if err != nil {
			return fmt.Errorf("failed to insert game: %w", err)
		}

		id, err = res.LastInsertId()
		if err != nil {
			return err
		}

		for _, g := range game.Guesses {
			if _, err := tx.Exec(`
				INSERT INTO guesses (game_id, turn, word, marks, pool_before, pool_after)
				VALUES (?, ?, ?, ?, ?, ?)`,
				id, g.Turn, g.Word, encodeMarks(g.Marks), g.PoolBefore, g.PoolAfter); err != nil {
				return fmt.Errorf("failed to insert guess %d: %w", g.Turn, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Debug().Int64("game_id", id).Str("outcome", game.Outcome).Msg("game recorded")
	return id, nil
}

const gameColumns = `id, session_id, username, server, strategy, outcome, flag, error,
	started_at, duration_ms, guess_count`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGame(row scanner) (GameRecord, error) {
	var (
		g          GameRecord
		startedAt  int64
		durationMs int64
	)
	err := row.Scan(&g.ID, &g.SessionID, &g.Username, &g.Server, &g.Strategy, &g.Outcome,
		&g.Flag, &g.Error, &startedAt, &durationMs, &g.GuessCount)
	if err != nil {
		return g, err
	}
	g.StartedAt = time.UnixMilli(startedAt)
	g.Duration = time.Duration(durationMs) * time.Millisecond
	return g, nil
}

// ListGames returns the most recent games first, without their guesses.
// A limit <= 0 returns every game.
func (h *HistoryDatabase) ListGames(limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := h.db.Query(`SELECT `+gameColumns+` FROM games
		ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// GetGame returns one game with its guesses.
func (h *HistoryDatabase) GetGame(id int64) (*GameRecord, error) {
	g, err := scanGame(h.db.QueryRow(`SELECT `+gameColumns+` FROM games WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := h.db.Query(`
		SELECT turn, word, marks, pool_before, pool_after
		FROM guesses WHERE game_id = ? ORDER BY turn`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			gr    GuessRecord
			marks string
		)
		if err := rows.Scan(&gr.Turn, &gr.Word, &marks, &gr.PoolBefore, &gr.PoolAfter); err != nil {
			return nil, err
		}
		gr.Marks = decodeMarks(marks)
		g.Guesses = append(g.Guesses, gr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &g, nil
}

// Stats aggregates every recorded game.
func (h *HistoryDatabase) Stats() (*Stats, error) {
	var (
		s        Stats
		avg      sql.NullFloat64
		best     sql.NullInt64
		lastMs   sql.NullInt64
		wonCount sql.NullInt64
	)

	err := h.db.QueryRow(`
		SELECT
			COUNT(*),
			SUM(CASE WHEN outcome = 'won' THEN 1 ELSE 0 END),
			AVG(CASE WHEN outcome = 'won' THEN guess_count END),
			MIN(CASE WHEN outcome = 'won' THEN guess_count END),
			MAX(started_at)
		FROM games`).Scan(&s.Total, &wonCount, &avg, &best, &lastMs)
	if err != nil {
		return nil, err
	}

	s.Won = int(wonCount.Int64)
	s.Failed = s.Total - s.Won
	if s.Total > 0 {
		s.WinRate = float64(s.Won) / float64(s.Total)
	}
	s.AvgGuesses = avg.Float64
	s.BestGuesses = int(best.Int64)
	if lastMs.Valid {
		t := time.UnixMilli(lastMs.Int64)
		s.LastPlayed = &t
	}

	return &s, nil
}

// encodeMarks stores marks as a digit string, e.g. [0 1 2] -> "012".
func encodeMarks(marks []int) string {
	var b strings.Builder
	for _, m := range marks {
		b.WriteByte(byte('0' + m))
	}
	return b.String()
}

func decodeMarks(s string) []int {
	if s == "" {
		return nil
	}
	marks := make([]int, len(s))
	for i := 0; i < len(s); i++ {
		marks[i] = int(s[i] - '0')
	}
	return marks
}
