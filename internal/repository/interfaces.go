package repository

import (
	"context"

	"github.com/announcement-search-api/internal/models"
)

// VectorSearchRepository defines vector similarity search over the two
// announcement catalogs. Implementations must return rows in descending
// similarity order.
type VectorSearchRepository interface {
	// MatchKStartup returns the top matchCount K-Startup announcements with
	// similarity >= matchThreshold for the given query embedding.
	MatchKStartup(ctx context.Context, embedding []float64, matchThreshold float64, matchCount int) ([]models.KStartupRow, error)

	// MatchBizinfo returns the top matchCount BizInfo announcements with
	// similarity >= matchThreshold for the given query embedding.
	MatchBizinfo(ctx context.Context, embedding []float64, matchThreshold float64, matchCount int) ([]models.BizinfoRow, error)
}

// SearchLogRepository persists search request logs.
type SearchLogRepository interface {
	LogSearch(ctx context.Context, entry models.SearchLogEntry) error
}
