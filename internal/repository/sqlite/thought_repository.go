package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"

	"github.com/zhouzirui/happy-thoughts/backend/internal/model/thought"
)

const schema = `CREATE TABLE IF NOT EXISTS thoughts (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT    NOT NULL UNIQUE,
	message    TEXT    NOT NULL UNIQUE,
	hearts     INTEGER NOT NULL DEFAULT 0 CHECK (hearts >= 0),
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS thoughts_created_at ON thoughts (created_at DESC, seq DESC);`

const columns = `id, message, hearts, created_at`

// ThoughtRepository stores thoughts in a single SQLite table.
type ThoughtRepository struct {
	db *sql.DB
}

// NewThoughtRepository opens (or creates) the database file at dbPath.
func NewThoughtRepository(dbPath string) (*ThoughtRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// sqlite allows a single writer at a time
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create thoughts table: %w", err)
	}
	return &ThoughtRepository{db: db}, nil
}

func (r *ThoughtRepository) List(ctx context.Context, limit int) ([]thought.Thought, error) {
	query := `SELECT ` + columns + ` FROM thoughts ORDER BY created_at DESC, seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	thoughts := []thought.Thought{}
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		thoughts = append(thoughts, t)
	}
	return thoughts, rows.Err()
}

func (r *ThoughtRepository) Insert(ctx context.Context, t thought.Thought) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO thoughts (`+columns+`) VALUES (?, ?, ?, ?)`,
		string(t.ID), t.Message, t.Hearts, t.CreatedAt,
	)
	return translate(err)
}

func (r *ThoughtRepository) IncrementHearts(ctx context.Context, id thought.ID) (thought.Thought, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE thoughts SET hearts = hearts + 1 WHERE id = ? RETURNING `+columns,
		string(id),
	)
	t, err := scan(row)
	return t, translate(err)
}

func (r *ThoughtRepository) Delete(ctx context.Context, id thought.ID) (thought.Thought, error) {
	row := r.db.QueryRowContext(ctx,
		`DELETE FROM thoughts WHERE id = ? RETURNING `+columns,
		string(id),
	)
	t, err := scan(row)
	return t, translate(err)
}

func (r *ThoughtRepository) UpdateMessage(ctx context.Context, id thought.ID, message string) (thought.Thought, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE thoughts SET message = ? WHERE id = ? RETURNING `+columns,
		message, string(id),
	)
	t, err := scan(row)
	return t, translate(err)
}

func (r *ThoughtRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *ThoughtRepository) Close(context.Context) error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (thought.Thought, error) {
	var (
		t  thought.Thought
		id string
	)
	if err := s.Scan(&id, &t.Message, &t.Hearts, &t.CreatedAt); err != nil {
		return thought.Thought{}, err
	}
	t.ID = thought.ID(id)
	return t, nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return thought.ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return thought.ErrDuplicateMessage
	}
	return err
}
