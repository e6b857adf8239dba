package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/database"
)

// EmbeddingRepository provides PostgreSQL-backed embedding caching.
type EmbeddingRepository struct {
	pool *Pool
}

// NewEmbeddingRepository creates a new PostgreSQL embedding repository.
func NewEmbeddingRepository(pool *Pool) *EmbeddingRepository {
	return &EmbeddingRepository{pool: pool}
}

// Save upserts the cached signature for a file.
func (r *EmbeddingRepository) Save(ctx context.Context, filename string, embedding []float32, phash, model string) error {
	query := `
		INSERT INTO embeddings (filename, embedding, phash, model, dim)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (filename) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			phash = EXCLUDED.phash,
			model = EXCLUDED.model,
			dim = EXCLUDED.dim,
			created_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query, filename, pgvector.NewVector(embedding), phash, model, len(embedding))
	if err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}
	return nil
}

// Get retrieves a cached signature by filename, returns nil if not found.
func (r *EmbeddingRepository) Get(ctx context.Context, filename string) (*database.StoredEmbedding, error) {
	query := `
		SELECT filename, embedding, phash, model, dim, created_at
		FROM embeddings
		WHERE filename = $1
	`

	var emb database.StoredEmbedding
	var vec pgvector.Vector

	err := r.pool.QueryRow(ctx, query, filename).Scan(
		&emb.Filename,
		&vec,
		&emb.PHash,
		&emb.Model,
		&emb.Dim,
		&emb.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	emb.Embedding = vec.Slice()
	return &emb, nil
}

// Has checks if a cached signature exists for the given filename.
func (r *EmbeddingRepository) Has(ctx context.Context, filename string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM embeddings WHERE filename = $1)", filename).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check embedding exists: %w", err)
	}
	return exists, nil
}

// Count returns the total number of cached signatures.
func (r *EmbeddingRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return count, nil
}

// GetMany retrieves cached signatures for the given filenames. Missing
// filenames are simply absent from the result.
func (r *EmbeddingRepository) GetMany(ctx context.Context, filenames []string) (map[string]*database.StoredEmbedding, error) {
	result := make(map[string]*database.StoredEmbedding, len(filenames))
	if len(filenames) == 0 {
		return result, nil
	}

	query := `
		SELECT filename, embedding, phash, model, dim, created_at
		FROM embeddings
		WHERE filename = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, pq.Array(filenames))
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var emb database.StoredEmbedding
		var vec pgvector.Vector
		if err := rows.Scan(&emb.Filename, &vec, &emb.PHash, &emb.Model, &emb.Dim, &emb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		emb.Embedding = vec.Slice()
		result[emb.Filename] = &emb
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embeddings: %w", err)
	}
	return result, nil
}

// FindSimilar finds the closest cached signatures by cosine distance.
func (r *EmbeddingRepository) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]database.StoredEmbedding, []float64, error) {
	query := `
		SELECT filename, embedding, phash, model, dim, created_at,
		       embedding <=> $1::vector AS distance
		FROM embeddings
		ORDER BY distance
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, nil, fmt.Errorf("query similar embeddings: %w", err)
	}
	defer rows.Close()

	var results []database.StoredEmbedding
	var distances []float64
	for rows.Next() {
		var emb database.StoredEmbedding
		var vec pgvector.Vector
		var dist float64
		if err := rows.Scan(&emb.Filename, &vec, &emb.PHash, &emb.Model, &emb.Dim, &emb.CreatedAt, &dist); err != nil {
			return nil, nil, fmt.Errorf("scan embedding: %w", err)
		}
		emb.Embedding = vec.Slice()
		results = append(results, emb)
		distances = append(distances, dist)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate similar embeddings: %w", err)
	}
	return results, distances, nil
}

// Delete removes cached signatures for the given filenames.
func (r *EmbeddingRepository) Delete(ctx context.Context, filenames []string) error {
	if len(filenames) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, "DELETE FROM embeddings WHERE filename = ANY($1)", pq.Array(filenames))
	if err != nil {
		return fmt.Errorf("delete embeddings: %w", err)
	}
	return nil
}
