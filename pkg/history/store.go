// Package history persists finished-match results in Postgres so operators
// can review outcomes across server restarts.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// MatchRecord is one finished match as stored and retrieved.
type MatchRecord struct {
	ID         string          `json:"id"`
	WinnerSeat int             `json:"winner_seat"`
	DurationMS int64           `json:"duration_ms"`
	EndedAt    time.Time       `json:"ended_at"`
	Players    []PlayerRecord  `json:"players"`
}

// PlayerRecord is one participant's final tally.
type PlayerRecord struct {
	Seat   int    `json:"seat"`
	Name   string `json:"name"`
	AI     bool   `json:"ai"`
	Kills  int    `json:"kills"`
	Losses int    `json:"losses"`
}

// Store persists match outcomes in Postgres.
type Store struct {
	db *sql.DB
}

// NewStore accepts an existing DB handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open builds the store from a connection string (e.g. RTS_DATABASE_URL).
func Open(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the history tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS matches (
			id          UUID PRIMARY KEY,
			winner_seat INT NOT NULL,
			duration_ms BIGINT NOT NULL,
			ended_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS match_players (
			match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			seat     INT NOT NULL,
			name     TEXT NOT NULL,
			ai       BOOLEAN NOT NULL,
			kills    INT NOT NULL,
			losses   INT NOT NULL,
			PRIMARY KEY (match_id, seat)
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// RecordMatch writes a finished match and its per-player tallies in one
// transaction, returning the generated match ID.
func (s *Store) RecordMatch(ctx context.Context, winnerSeat int, durationMS int64, players []PlayerRecord) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO matches (id, winner_seat, duration_ms)
		VALUES ($1, $2, $3)
	`, id, winnerSeat, durationMS); err != nil {
		return "", fmt.Errorf("insert match: %w", err)
	}

	for _, p := range players {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO match_players (match_id, seat, name, ai, kills, losses)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, p.Seat, p.Name, p.AI, p.Kills, p.Losses); err != nil {
			return "", fmt.Errorf("insert player seat %d: %w", p.Seat, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// RecentMatches returns the most recently finished matches, newest first.
func (s *Store) RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, winner_seat, duration_ms, ended_at
		FROM matches
		ORDER BY ended_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []MatchRecord
	for rows.Next() {
		var m MatchRecord
		if err := rows.Scan(&m.ID, &m.WinnerSeat, &m.DurationMS, &m.EndedAt); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range matches {
		players, err := s.matchPlayers(ctx, matches[i].ID)
		if err != nil {
			return nil, err
		}
		matches[i].Players = players
	}
	return matches, nil
}

func (s *Store) matchPlayers(ctx context.Context, matchID string) ([]PlayerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seat, name, ai, kills, losses
		FROM match_players
		WHERE match_id = $1
		ORDER BY seat ASC
	`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []PlayerRecord
	for rows.Next() {
		var p PlayerRecord
		if err := rows.Scan(&p.Seat, &p.Name, &p.AI, &p.Kills, &p.Losses); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
