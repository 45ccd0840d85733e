package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"buzzer-game-service/internal/domain"
)

// GameStore persists session rows, score deltas, and the buzz log.
type GameStore struct {
	pool *pgxpool.Pool
}

func NewGameStore(pool *pgxpool.Pool) *GameStore {
	return &GameStore{pool: pool}
}

func (s *GameStore) CreateSessionRecord(ctx context.Context, sessionID, quizID, hostID, code string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO game_sessions (id, quiz_id, host_id, session_code, status)
		 VALUES ($1, $2, $3, $4, $5)`,
		sessionID, quizID, hostID, code, domain.StatusWaiting)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *GameStore) MarkSessionStatus(ctx context.Context, sessionID string, status domain.SessionStatus) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE game_sessions SET status=$2 WHERE id=$1`, sessionID, status)
	if err != nil {
		return fmt.Errorf("mark session status: %w", err)
	}
	return nil
}

func (s *GameStore) RecordScoreDelta(ctx context.Context, playerID string, delta int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO player_scores (player_id, total_score)
		 VALUES ($1, $2)
		 ON CONFLICT (player_id) DO UPDATE SET total_score = player_scores.total_score + EXCLUDED.total_score`,
		playerID, delta)
	if err != nil {
		return fmt.Errorf("record score delta: %w", err)
	}
	return nil
}

func (s *GameStore) LogBuzz(ctx context.Context, sessionID, playerID, questionID string, at time.Time, correct bool, points int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO buzz_log (session_id, player_id, question_id, buzz_time, was_correct, points_awarded)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sessionID, playerID, questionID, at, correct, points)
	if err != nil {
		return fmt.Errorf("log buzz: %w", err)
	}
	return nil
}
