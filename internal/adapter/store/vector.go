package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codelensai/coderag/internal/domain"
	"github.com/codelensai/coderag/internal/port"
)

const (
	writeBatchSize  = 50
	similarityFloor = 0.5
	defaultTopK     = 8
)

// VectorStore implements port.VectorStore against Postgres + pgvector,
// sharing a connection pool with the relational RepoIndex bookkeeping.
type VectorStore struct {
	store *PostgresStore
}

// NewVectorStore builds a vector store backed by store's connection pool.
func NewVectorStore(store *PostgresStore) *VectorStore {
	return &VectorStore{store: store}
}

// Write selects one of the three commit-versioned strategies and persists
// embedded chunks accordingly, updating the RepoIndex row only after every
// chunk write succeeds.
func (v *VectorStore) Write(ctx context.Context, embedded []domain.EmbeddedChunk, opts port.WriteOptions) (domain.WriteResult, error) {
	start := time.Now()
	repoID := opts.RepoMeta.RepoID()

	existing, err := v.GetRepoIndex(ctx, repoID)
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("load existing repo index: %w", err)
	}

	if opts.CommitHash != "" && existing != nil && existing.CommitHash == opts.CommitHash {
		return domain.WriteResult{
			Strategy:   domain.WriteSkipped,
			DurationMs: time.Since(start).Milliseconds(),
		}, nil
	}

	if opts.CommitHash != "" {
		deleted, err := v.deleteByRepo(ctx, repoID)
		if err != nil {
			return domain.WriteResult{}, fmt.Errorf("full-reindex delete: %w", err)
		}
		written, err := v.insertChunks(ctx, repoID, embedded, true)
		if err != nil {
			return domain.WriteResult{}, fmt.Errorf("full-reindex insert: %w", err)
		}
		if err := v.upsertRepoIndex(ctx, opts, repoID, len(embedded)); err != nil {
			return domain.WriteResult{}, fmt.Errorf("full-reindex repo index update: %w", err)
		}
		return domain.WriteResult{
			Strategy:      domain.WriteFullReindex,
			ChunksWritten: written,
			ChunksDeleted: deleted,
			DurationMs:    time.Since(start).Milliseconds(),
		}, nil
	}

	written, err := v.insertChunks(ctx, repoID, embedded, false)
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("upsert insert: %w", err)
	}
	if err := v.upsertRepoIndex(ctx, opts, repoID, len(embedded)); err != nil {
		return domain.WriteResult{}, fmt.Errorf("upsert repo index update: %w", err)
	}
	return domain.WriteResult{
		Strategy:      domain.WriteUpsert,
		ChunksWritten: written,
		DurationMs:    time.Since(start).Milliseconds(),
	}, nil
}

// insertChunks writes embedded in batches of writeBatchSize. onConflictNothing
// is used after a full-reindex delete (conflicts shouldn't occur, but a crash
// mid-delete could leave stragglers); otherwise rows are upserted by id.
func (v *VectorStore) insertChunks(ctx context.Context, repoID string, embedded []domain.EmbeddedChunk, onConflictNothing bool) (int, error) {
	if len(embedded) == 0 {
		return 0, nil
	}

	conflictClause := `ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, embedding = EXCLUDED.embedding, embedded_at = EXCLUDED.embedded_at`
	if onConflictNothing {
		conflictClause = `ON CONFLICT (id) DO NOTHING`
	}
	query := fmt.Sprintf(`INSERT INTO code_chunks
		(id, repo_id, file_path, language, content, start_line, end_line, symbol_name, chunk_index, embedding, embedded_at, model)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::vector, $11, $12)
		%s`, conflictClause)

	written := 0
	for start := 0; start < len(embedded); start += writeBatchSize {
		end := start + writeBatchSize
		if end > len(embedded) {
			end = len(embedded)
		}
		batch := embedded[start:end]

		tx, err := v.store.db.BeginTx(ctx, nil)
		if err != nil {
			return written, fmt.Errorf("begin tx: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			tx.Rollback()
			return written, fmt.Errorf("prepare: %w", err)
		}

		failed := false
		for _, e := range batch {
			_, err := stmt.ExecContext(ctx,
				e.Chunk.ID, repoID, e.Chunk.FilePath, string(e.Chunk.Language), e.Chunk.Content,
				e.Chunk.StartLine, e.Chunk.EndLine, e.Chunk.SymbolName, e.Chunk.ChunkIndex,
				vectorToString(e.Embedding), e.EmbeddedAt, e.Model,
			)
			if err != nil {
				failed = true
				stmt.Close()
				tx.Rollback()
				return written, fmt.Errorf("insert chunk %s: %w", e.Chunk.ID, err)
			}
		}
		stmt.Close()
		if !failed {
			if err := tx.Commit(); err != nil {
				return written, fmt.Errorf("commit batch: %w", err)
			}
			written += len(batch)
		}
	}
	return written, nil
}

func (v *VectorStore) deleteByRepo(ctx context.Context, repoID string) (int, error) {
	res, err := v.store.db.ExecContext(ctx, `DELETE FROM code_chunks WHERE repo_id = $1`, repoID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (v *VectorStore) upsertRepoIndex(ctx context.Context, opts port.WriteOptions, repoID string, chunkCount int) error {
	return v.store.UpsertRepoIndex(ctx, domain.RepoIndex{
		RepoID:         repoID,
		CommitHash:     opts.CommitHash,
		DefaultBranch:  opts.RepoMeta.DefaultBranch,
		SizeKB:         opts.RepoMeta.SizeKB,
		FileCount:      opts.RepoMeta.FileCount,
		ChunkCount:     chunkCount,
		EmbeddingModel: opts.EmbeddingModel,
	})
}

// GetRepoIndex delegates to the relational store.
func (v *VectorStore) GetRepoIndex(ctx context.Context, repoID string) (*domain.RepoIndex, error) {
	return v.store.GetRepoIndex(ctx, repoID)
}

// SearchSimilar runs an ANN cosine search restricted to repoID, applying the
// similarity floor in Go so the SQL stays a plain ORDER BY ... LIMIT that the
// HNSW index can serve directly.
func (v *VectorStore) SearchSimilar(ctx context.Context, repoID string, queryVector []float32, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		topK = defaultTopK
	}
	vectorStr := vectorToString(queryVector)

	query := `SELECT file_path, start_line, end_line, symbol_name, content, language,
	                 1 - (embedding <=> $1::vector) AS similarity
	          FROM code_chunks
	          WHERE repo_id = $2
	          ORDER BY embedding <=> $1::vector
	          LIMIT $3`

	rows, err := v.store.db.QueryContext(ctx, query, vectorStr, repoID, topK)
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievedChunk
	for rows.Next() {
		var rc domain.RetrievedChunk
		var lang string
		if err := rows.Scan(&rc.FilePath, &rc.StartLine, &rc.EndLine, &rc.SymbolName, &rc.Content, &lang, &rc.Score); err != nil {
			return nil, fmt.Errorf("scan similar: %w", err)
		}
		rc.Language = domain.Language(lang)
		if rc.Score < similarityFloor {
			continue
		}
		results = append(results, rc)
	}
	return results, rows.Err()
}

// vectorToString converts a float32 slice to pgvector's textual form:
// [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = fmt.Sprintf("%g", val)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
