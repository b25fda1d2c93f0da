package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/announcement-search-api/internal/models"
	"github.com/announcement-search-api/internal/repository"
)

// DefaultLimit is applied when a request omits the limit field.
const DefaultLimit = 20

// matchThreshold is passed to the vector stores so they never prefilter by
// similarity; all re-ranking happens here after keyword scoring.
const matchThreshold = 0.0

// QueryEmbedder embeds a search query for retrieval.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float64, error)
}

// HybridSearchService merges vector similarity search over both announcement
// catalogs with keyword matching into a single ranked result list. It holds
// no per-request state.
type HybridSearchService struct {
	vectorRepo repository.VectorSearchRepository
	embedder   QueryEmbedder
	searchLogs repository.SearchLogRepository // optional
}

// NewHybridSearchService creates a new hybrid search service. searchLogs may
// be nil to disable search logging.
func NewHybridSearchService(
	vectorRepo repository.VectorSearchRepository,
	embedder QueryEmbedder,
	searchLogs repository.SearchLogRepository,
) *HybridSearchService {
	return &HybridSearchService{
		vectorRepo: vectorRepo,
		embedder:   embedder,
		searchLogs: searchLogs,
	}
}

// Search runs the hybrid pipeline: embed the query once, fetch candidates
// from each selected catalog, score, merge, sort, truncate.
//
// An empty or whitespace-only query is a no-op, not an error: it returns an
// empty result without touching any collaborator. Any collaborator failure
// fails the whole request; there is no partial-result fallback when one
// catalog errors and the other would have succeeded (kept fail-fast on
// purpose — revisit if product wants degraded results instead).
func (s *HybridSearchService) Search(ctx context.Context, req models.HybridSearchRequest) (*models.HybridSearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return &models.HybridSearchResponse{
			Results: []models.SearchResult{},
			Total:   0,
			Query:   req.Query,
		}, nil
	}

	source := req.Source
	if source == "" {
		source = models.SourceAll
	}
	limit := DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	started := time.Now()

	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Over-fetch so keyword scoring has enough candidates to promote rows
	// that rank low on vector similarity alone. Empirically tuned constant.
	count := matchCount(limit)

	// The catalog lookups are independent; run them concurrently once the
	// embedding is available.
	var (
		kstartupRows []models.KStartupRow
		bizinfoRows  []models.BizinfoRow
	)
	g, gctx := errgroup.WithContext(ctx)
	if source.Includes(models.SourceKStartup) {
		g.Go(func() error {
			rows, err := s.vectorRepo.MatchKStartup(gctx, embedding, matchThreshold, count)
			if err != nil {
				return fmt.Errorf("match kstartup announcements: %w", err)
			}
			kstartupRows = rows
			return nil
		})
	}
	if source.Includes(models.SourceBizinfo) {
		g.Go(func() error {
			rows, err := s.vectorRepo.MatchBizinfo(gctx, embedding, matchThreshold, count)
			if err != nil {
				return fmt.Errorf("match bizinfo announcements: %w", err)
			}
			bizinfoRows = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge order is part of the contract: kstartup before bizinfo, each in
	// the vector store's native order. The stable sort preserves it across
	// final-score ties.
	results := make([]models.SearchResult, 0, len(kstartupRows)+len(bizinfoRows))
	for _, row := range kstartupRows {
		results = append(results, NormalizeResult(row.Candidate(), query))
	}
	for _, row := range bizinfoRows {
		results = append(results, NormalizeResult(row.Candidate(), query))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	if limit < 0 {
		limit = 0
	}
	if limit < len(results) {
		results = results[:limit]
	}

	resp := &models.HybridSearchResponse{
		Results: results,
		Total:   len(results),
		Query:   req.Query,
	}
	s.logSearch(ctx, query, source, limit, resp, time.Since(started))
	return resp, nil
}

// logSearch records the request in the search log, best-effort. A logging
// failure never fails the search.
func (s *HybridSearchService) logSearch(ctx context.Context, query string, source models.Source, limit int, resp *models.HybridSearchResponse, elapsed time.Duration) {
	if s.searchLogs == nil {
		return
	}

	entry := models.SearchLogEntry{
		Query:       query,
		Source:      source,
		Limit:       limit,
		ResultCount: resp.Total,
		DurationMs:  elapsed.Milliseconds(),
	}
	if len(resp.Results) > 0 {
		top := resp.Results[0].FinalScore
		entry.TopScore = &top
	}

	if err := s.searchLogs.LogSearch(ctx, entry); err != nil {
		log.Printf("Failed to log search %q: %v", query, err)
	}
}

// matchCount returns the per-catalog candidate cap for a requested limit.
func matchCount(limit int) int {
	if count := limit * 50; count > 100 {
		return count
	}
	return 100
}
