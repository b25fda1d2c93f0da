package vertex

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	aiplatformpb "cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"github.com/jmoiron/sqlx"
	"google.golang.org/api/option"

	"github.com/announcement-search-api/internal/models"
	"github.com/announcement-search-api/internal/repository"
)

// Ensure VectorSearchRepository implements repository.VectorSearchRepository
var _ repository.VectorSearchRepository = (*VectorSearchRepository)(nil)

// Config holds Vertex AI Vector Search configuration. Both catalogs are
// deployed as separate indexes on the same endpoint.
type Config struct {
	ProjectID               string // GCP project ID
	Location                string // e.g., "us-central1"
	IndexEndpointID         string // Deployed index endpoint ID
	KStartupDeployedIndexID string // Deployed index for the K-Startup catalog
	BizinfoDeployedIndexID  string // Deployed index for the BizInfo catalog
	PublicEndpointDomain    string // Public endpoint domain for queries (e.g., "123.us-central1-456.vdb.vertexai.goog")
}

// VectorSearchRepository implements repository.VectorSearchRepository using
// Vertex AI Vector Search. Vertex only stores IDs and embeddings; candidate
// fields are joined back in from the announcement tables in PostgreSQL.
type VectorSearchRepository struct {
	config      Config
	matchClient *aiplatform.MatchClient
	db          *sqlx.DB
}

// NewVectorSearchRepository creates a new Vertex AI vector search repository
func NewVectorSearchRepository(ctx context.Context, config Config, db *sqlx.DB) (*VectorSearchRepository, error) {
	// For public endpoints, use the public domain; otherwise use regional endpoint
	var endpoint string
	if config.PublicEndpointDomain != "" {
		endpoint = fmt.Sprintf("%s:443", config.PublicEndpointDomain)
	} else {
		endpoint = fmt.Sprintf("%s-aiplatform.googleapis.com:443", config.Location)
	}

	matchClient, err := aiplatform.NewMatchClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("create match client: %w", err)
	}

	return &VectorSearchRepository{
		config:      config,
		matchClient: matchClient,
		db:          db,
	}, nil
}

// Close closes the Vertex AI client
func (r *VectorSearchRepository) Close() error {
	if r.matchClient != nil {
		return r.matchClient.Close()
	}
	return nil
}

// neighbor is one Vertex AI match, with distance already converted to
// cosine similarity.
type neighbor struct {
	id         string
	similarity float64
}

// MatchKStartup performs vector similarity search on the K-Startup catalog.
func (r *VectorSearchRepository) MatchKStartup(ctx context.Context, embedding []float64, matchThreshold float64, matchCount int) ([]models.KStartupRow, error) {
	neighbors, err := r.findNeighbors(ctx, r.config.KStartupDeployedIndexID, embedding, matchThreshold, matchCount)
	if err != nil {
		return nil, fmt.Errorf("kstartup neighbors: %w", err)
	}
	return r.lookupKStartup(ctx, neighbors)
}

// MatchBizinfo performs vector similarity search on the BizInfo catalog.
func (r *VectorSearchRepository) MatchBizinfo(ctx context.Context, embedding []float64, matchThreshold float64, matchCount int) ([]models.BizinfoRow, error) {
	neighbors, err := r.findNeighbors(ctx, r.config.BizinfoDeployedIndexID, embedding, matchThreshold, matchCount)
	if err != nil {
		return nil, fmt.Errorf("bizinfo neighbors: %w", err)
	}
	return r.lookupBizinfo(ctx, neighbors)
}

// findNeighbors queries one deployed index and returns neighbors in Vertex
// AI's relevance order. Vertex has no server-side similarity threshold, so
// the threshold is applied here on the converted score.
func (r *VectorSearchRepository) findNeighbors(ctx context.Context, deployedIndexID string, embedding []float64, matchThreshold float64, matchCount int) ([]neighbor, error) {
	indexEndpoint := fmt.Sprintf(
		"projects/%s/locations/%s/indexEndpoints/%s",
		r.config.ProjectID,
		r.config.Location,
		r.config.IndexEndpointID,
	)

	featureVector := make([]float32, len(embedding))
	for i, v := range embedding {
		featureVector[i] = float32(v)
	}

	req := &aiplatformpb.FindNeighborsRequest{
		IndexEndpoint:   indexEndpoint,
		DeployedIndexId: deployedIndexID,
		Queries: []*aiplatformpb.FindNeighborsRequest_Query{
			{
				Datapoint: &aiplatformpb.IndexDatapoint{
					FeatureVector: featureVector,
				},
				NeighborCount: int32(matchCount),
			},
		},
	}

	resp, err := r.matchClient.FindNeighbors(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("find neighbors: %w", err)
	}

	if len(resp.NearestNeighbors) == 0 {
		return []neighbor{}, nil
	}

	matches := resp.NearestNeighbors[0].Neighbors
	neighbors := make([]neighbor, 0, len(matches))
	for _, m := range matches {
		// Vertex AI returns cosine distance; similarity = 1 - distance
		similarity := float64(1 - m.Distance)
		if similarity < matchThreshold {
			continue
		}
		neighbors = append(neighbors, neighbor{
			id:         m.Datapoint.DatapointId,
			similarity: similarity,
		})
	}
	return neighbors, nil
}

// lookupKStartup joins neighbor IDs back to kstartup_announcements.
func (r *VectorSearchRepository) lookupKStartup(ctx context.Context, neighbors []neighbor) ([]models.KStartupRow, error) {
	if len(neighbors) == 0 {
		return []models.KStartupRow{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT announcement_id, biz_pbanc_nm, pbanc_ntrp_nm,
		       pbanc_rcpt_bgng_dt, pbanc_rcpt_end_dt,
		       simple_summary, bsns_sumry, search_analysis, has_writable_content
		FROM kstartup_announcements
		WHERE announcement_id IN (?)
	`, neighborIDs(neighbors))
	if err != nil {
		return nil, fmt.Errorf("build kstartup IN query: %w", err)
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query kstartup announcements: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]models.KStartupRow, len(neighbors))
	for rows.Next() {
		var (
			row                            models.KStartupRow
			title, org, startDate, endDate sql.NullString
			simpleSummary, bsnsSumry       sql.NullString
			analysisJSON                   []byte
			hasWritable                    sql.NullBool
		)
		if err := rows.Scan(&row.AnnouncementID, &title, &org, &startDate, &endDate,
			&simpleSummary, &bsnsSumry, &analysisJSON, &hasWritable); err != nil {
			return nil, fmt.Errorf("scan kstartup announcement: %w", err)
		}
		row.BizPbancNm = title.String
		row.PbancNtrpNm = org.String
		row.PbancRcptBgngDt = startDate.String
		row.PbancRcptEndDt = endDate.String
		row.SimpleSummary = nullableString(simpleSummary)
		row.BsnsSumry = nullableString(bsnsSumry)
		row.SearchAnalysis = decodeAnalysis(analysisJSON)
		row.HasWritableContent = nullableBool(hasWritable)
		byID[row.AnnouncementID] = row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kstartup announcements: %w", err)
	}

	// Preserve Vertex AI's relevance order
	results := make([]models.KStartupRow, 0, len(neighbors))
	for _, n := range neighbors {
		row, ok := byID[n.id]
		if !ok {
			continue
		}
		similarity := n.similarity
		row.Similarity = &similarity
		results = append(results, row)
	}
	return results, nil
}

// lookupBizinfo joins neighbor IDs back to bizinfo_announcements.
func (r *VectorSearchRepository) lookupBizinfo(ctx context.Context, neighbors []neighbor) ([]models.BizinfoRow, error) {
	if len(neighbors) == 0 {
		return []models.BizinfoRow{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT pblanc_id, pblanc_nm, organ_nm,
		       reqst_begin_ymd, reqst_end_ymd,
		       simple_summary, pblanc_cn, search_analysis, has_writable_content
		FROM bizinfo_announcements
		WHERE pblanc_id IN (?)
	`, neighborIDs(neighbors))
	if err != nil {
		return nil, fmt.Errorf("build bizinfo IN query: %w", err)
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bizinfo announcements: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]models.BizinfoRow, len(neighbors))
	for rows.Next() {
		var (
			row                            models.BizinfoRow
			title, org, startDate, endDate sql.NullString
			simpleSummary, pblancCn        sql.NullString
			analysisJSON                   []byte
			hasWritable                    sql.NullBool
		)
		if err := rows.Scan(&row.PblancID, &title, &org, &startDate, &endDate,
			&simpleSummary, &pblancCn, &analysisJSON, &hasWritable); err != nil {
			return nil, fmt.Errorf("scan bizinfo announcement: %w", err)
		}
		row.PblancNm = title.String
		row.OrganNm = org.String
		row.ReqstBeginYmd = startDate.String
		row.ReqstEndYmd = endDate.String
		row.SimpleSummary = nullableString(simpleSummary)
		row.PblancCn = nullableString(pblancCn)
		row.SearchAnalysis = decodeAnalysis(analysisJSON)
		row.HasWritableContent = nullableBool(hasWritable)
		byID[row.PblancID] = row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bizinfo announcements: %w", err)
	}

	results := make([]models.BizinfoRow, 0, len(neighbors))
	for _, n := range neighbors {
		row, ok := byID[n.id]
		if !ok {
			continue
		}
		similarity := n.similarity
		row.Similarity = &similarity
		results = append(results, row)
	}
	return results, nil
}

func neighborIDs(neighbors []neighbor) []string {
	ids := make([]string, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.id
	}
	return ids
}

// decodeAnalysis parses the search_analysis jsonb column. NULL, jsonb null,
// or malformed analysis degrades to nil rather than failing the search.
func decodeAnalysis(data []byte) *models.SearchAnalysis {
	if len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var analysis models.SearchAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil
	}
	return &analysis
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullableBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}
