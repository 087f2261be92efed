package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/grading-assistant/internal/models"
)

const defaultHistoryLimit = 100

const historySchema = `CREATE TABLE IF NOT EXISTS grading_history (
	id            UUID PRIMARY KEY,
	batch_id      UUID NOT NULL,
	course_id     TEXT NOT NULL,
	assignment_id TEXT NOT NULL,
	user_id       BIGINT NOT NULL,
	grade         DOUBLE PRECISION,
	comment       TEXT,
	status        TEXT NOT NULL,
	success       BOOLEAN NOT NULL,
	error         TEXT,
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS grading_history_assignment_idx ON grading_history (assignment_id, created_at DESC)`

// HistoryRepository persists sync outcomes.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// EnsureSchema creates the history table when absent.
func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, historySchema); err != nil {
		return fmt.Errorf("ensure history schema: %w", err)
	}
	return nil
}

// InsertBatch stores the entries of one flush in a single transaction.
func (r *HistoryRepository) InsertBatch(ctx context.Context, entries []models.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	const query = `INSERT INTO grading_history (id, batch_id, course_id, assignment_id, user_id, grade, comment, status, success, error, created_at)
VALUES (:id, :batch_id, :course_id, :assignment_id, :user_id, :grade, :comment, :status, :success, :error, :created_at)
ON CONFLICT (id) DO NOTHING`
	for i := range entries {
		if _, err := tx.NamedExecContext(ctx, query, &entries[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert history entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history tx: %w", err)
	}
	return nil
}

// List returns history entries newest first.
func (r *HistoryRepository) List(ctx context.Context, filter models.HistoryFilter) ([]models.HistoryEntry, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.AssignmentID != "" {
		args = append(args, filter.AssignmentID)
		conditions = append(conditions, fmt.Sprintf("assignment_id = $%d", len(args)))
	}
	if filter.UserID > 0 {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = defaultHistoryLimit
	}
	args = append(args, limit)

	var sb strings.Builder
	sb.WriteString(`SELECT id, batch_id, course_id, assignment_id, user_id, grade, comment, status, success, error, created_at FROM grading_history`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY created_at DESC, id ASC LIMIT $%d", len(args)))

	entries := make([]models.HistoryEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}
