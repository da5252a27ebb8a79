package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/windfall/kidvocab_service/internal/model"
)

// AttemptRepository stores practice attempts.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *model.Attempt) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*model.Attempt, error)
}

// DB is the subset of pgxpool.Pool used by the Postgres repositories.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresAttemptRepository struct {
	db DB
}

func NewPostgresAttemptRepository(db DB) *PostgresAttemptRepository {
	return &PostgresAttemptRepository{db: db}
}

func (r *PostgresAttemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	if r.db == nil {
		return fmt.Errorf("database not configured")
	}
	if attempt == nil {
		return fmt.Errorf("attempt is nil")
	}
	if attempt.SessionID == "" || attempt.Word == "" {
		return fmt.Errorf("attempt requires session_id and word")
	}
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}

	query := `
		INSERT INTO practice_attempts (
			id, session_id, topic, word, mode, input, score, correct
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		attempt.ID,
		attempt.SessionID,
		attempt.Topic,
		attempt.Word,
		string(attempt.Mode),
		attempt.Input,
		attempt.Score,
		attempt.Correct,
	).Scan(&attempt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create practice attempt: %w", err)
	}

	return nil
}

func (r *PostgresAttemptRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*model.Attempt, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database not configured")
	}

	query := `
		SELECT id, session_id, topic, word, mode, input, score, correct, created_at
		FROM practice_attempts
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list practice attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*model.Attempt
	for rows.Next() {
		var a model.Attempt
		var mode string
		if err := rows.Scan(
			&a.ID,
			&a.SessionID,
			&a.Topic,
			&a.Word,
			&mode,
			&a.Input,
			&a.Score,
			&a.Correct,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan practice attempt: %w", err)
		}
		a.Mode = model.Mode(mode)
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate practice attempts: %w", err)
	}

	return attempts, nil
}

// InMemoryAttemptRepository keeps the latest attempts of each session in
// process memory. It backs sessions when no database is configured.
type InMemoryAttemptRepository struct {
	store *InMemoryRepository[model.Attempt]
	now   func() time.Time
}

// NewInMemoryAttemptRepository keeps at most perSession attempts per session
// and forgets sessions idle for ttl.
func NewInMemoryAttemptRepository(perSession int, ttl time.Duration) *InMemoryAttemptRepository {
	return &InMemoryAttemptRepository{
		store: NewInMemoryRepository[model.Attempt](perSession, ttl),
		now:   time.Now,
	}
}

func (r *InMemoryAttemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	if attempt == nil {
		return fmt.Errorf("attempt is nil")
	}
	if attempt.SessionID == "" || attempt.Word == "" {
		return fmt.Errorf("attempt requires session_id and word")
	}
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = r.now()
	}
	r.store.Append(ctx, attempt.SessionID, *attempt)
	return nil
}

func (r *InMemoryAttemptRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*model.Attempt, error) {
	stored := r.store.List(ctx, sessionID)

	attempts := make([]*model.Attempt, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		attempts = append(attempts, &stored[i])
	}
	sort.SliceStable(attempts, func(i, j int) bool {
		return attempts[i].CreatedAt.After(attempts[j].CreatedAt)
	})
	if limit > 0 && len(attempts) > limit {
		attempts = attempts[:limit]
	}
	return attempts, nil
}
