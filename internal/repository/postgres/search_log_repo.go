package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/announcement-search-api/internal/models"
	"github.com/announcement-search-api/internal/repository"
)

// SearchLogRepository implements repository.SearchLogRepository for
// PostgreSQL.
type SearchLogRepository struct {
	db *sqlx.DB
}

// NewSearchLogRepository creates a new PostgreSQL search log repository
func NewSearchLogRepository(db *sqlx.DB) repository.SearchLogRepository {
	return &SearchLogRepository{db: db}
}

// LogSearch inserts one row into search_logs.
func (r *SearchLogRepository) LogSearch(ctx context.Context, entry models.SearchLogEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO search_logs (query, source, result_limit, result_count, top_score, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.Query, string(entry.Source), entry.Limit, entry.ResultCount, entry.TopScore, entry.DurationMs)
	if err != nil {
		return fmt.Errorf("insert search log: %w", err)
	}
	return nil
}
