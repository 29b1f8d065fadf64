// Package store implements the vector-store writer and retriever against
// Postgres + pgvector using raw parameterized SQL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/codelensai/coderag/internal/domain"
)

// PostgresStore wraps the relational connection pool shared by the writer
// and retriever.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool and verifies connectivity.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// GetRepoIndex returns the RepoIndex row for repoID, or nil if none exists.
func (s *PostgresStore) GetRepoIndex(ctx context.Context, repoID string) (*domain.RepoIndex, error) {
	query := `SELECT repo_id, COALESCE(commit_hash, ''), default_branch, size_kb, file_count, chunk_count, embedding_model, updated_at
	          FROM repo_index WHERE repo_id = $1`

	var ri domain.RepoIndex
	err := s.db.QueryRowContext(ctx, query, repoID).Scan(
		&ri.RepoID, &ri.CommitHash, &ri.DefaultBranch, &ri.SizeKB, &ri.FileCount, &ri.ChunkCount, &ri.EmbeddingModel, &ri.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get repo index: %w", err)
	}
	return &ri, nil
}

// UpsertRepoIndex inserts or replaces the bookkeeping row for one repo.
// Must be called only after all of that repo's chunk writes have
// succeeded, per the writer's atomicity contract.
func (s *PostgresStore) UpsertRepoIndex(ctx context.Context, ri domain.RepoIndex) error {
	query := `INSERT INTO repo_index (repo_id, commit_hash, default_branch, size_kb, file_count, chunk_count, embedding_model, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	          ON CONFLICT (repo_id) DO UPDATE SET
	              commit_hash = EXCLUDED.commit_hash,
	              default_branch = EXCLUDED.default_branch,
	              size_kb = EXCLUDED.size_kb,
	              file_count = EXCLUDED.file_count,
	              chunk_count = EXCLUDED.chunk_count,
	              embedding_model = EXCLUDED.embedding_model,
	              updated_at = NOW()`

	var commitHash interface{}
	if ri.CommitHash != "" {
		commitHash = ri.CommitHash
	}
	_, err := s.db.ExecContext(ctx, query,
		ri.RepoID, commitHash, ri.DefaultBranch, ri.SizeKB, ri.FileCount, ri.ChunkCount, ri.EmbeddingModel,
	)
	if err != nil {
		return fmt.Errorf("upsert repo index: %w", err)
	}
	return nil
}
