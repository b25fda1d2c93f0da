package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/announcement-search-api/internal/models"
	"github.com/announcement-search-api/internal/repository"
)

// VectorSearchRepository implements repository.VectorSearchRepository for
// PostgreSQL with pgvector. Matching is delegated to the SQL functions
// match_kstartup_announcements and match_bizinfo_announcements, which return
// candidate rows ordered by descending cosine similarity.
type VectorSearchRepository struct {
	db *sqlx.DB
}

// NewVectorSearchRepository creates a new PostgreSQL vector search repository
func NewVectorSearchRepository(db *sqlx.DB) repository.VectorSearchRepository {
	return &VectorSearchRepository{db: db}
}

// MatchKStartup performs vector similarity search on the K-Startup catalog.
func (r *VectorSearchRepository) MatchKStartup(ctx context.Context, embedding []float64, matchThreshold float64, matchCount int) ([]models.KStartupRow, error) {
	vec := pgvector.NewVector(float32Slice(embedding))

	rows, err := r.db.QueryxContext(ctx, `
		SELECT announcement_id, biz_pbanc_nm, pbanc_ntrp_nm,
		       pbanc_rcpt_bgng_dt, pbanc_rcpt_end_dt,
		       simple_summary, bsns_sumry, search_analysis,
		       has_writable_content, similarity
		FROM match_kstartup_announcements($1::vector, $2, $3)
	`, vec, matchThreshold, matchCount)
	if err != nil {
		return nil, fmt.Errorf("match kstartup: %w", err)
	}
	defer rows.Close()

	var results []models.KStartupRow
	for rows.Next() {
		var (
			row                            models.KStartupRow
			title, org, startDate, endDate sql.NullString
			simpleSummary, bsnsSumry       sql.NullString
			analysisJSON                   []byte
			hasWritable                    sql.NullBool
			similarity                     sql.NullFloat64
		)
		if err := rows.Scan(&row.AnnouncementID, &title, &org, &startDate, &endDate,
			&simpleSummary, &bsnsSumry, &analysisJSON, &hasWritable, &similarity); err != nil {
			return nil, fmt.Errorf("scan kstartup result: %w", err)
		}
		row.BizPbancNm = title.String
		row.PbancNtrpNm = org.String
		row.PbancRcptBgngDt = startDate.String
		row.PbancRcptEndDt = endDate.String
		row.SimpleSummary = nullableString(simpleSummary)
		row.BsnsSumry = nullableString(bsnsSumry)
		row.SearchAnalysis = decodeAnalysis(analysisJSON)
		row.HasWritableContent = nullableBool(hasWritable)
		row.Similarity = nullableFloat(similarity)
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kstartup results: %w", err)
	}

	if results == nil {
		results = []models.KStartupRow{}
	}
	return results, nil
}

// MatchBizinfo performs vector similarity search on the BizInfo catalog.
func (r *VectorSearchRepository) MatchBizinfo(ctx context.Context, embedding []float64, matchThreshold float64, matchCount int) ([]models.BizinfoRow, error) {
	vec := pgvector.NewVector(float32Slice(embedding))

	rows, err := r.db.QueryxContext(ctx, `
		SELECT pblanc_id, pblanc_nm, organ_nm,
		       reqst_begin_ymd, reqst_end_ymd,
		       simple_summary, pblanc_cn, search_analysis,
		       has_writable_content, similarity
		FROM match_bizinfo_announcements($1::vector, $2, $3)
	`, vec, matchThreshold, matchCount)
	if err != nil {
		return nil, fmt.Errorf("match bizinfo: %w", err)
	}
	defer rows.Close()

	var results []models.BizinfoRow
	for rows.Next() {
		var (
			row                            models.BizinfoRow
			title, org, startDate, endDate sql.NullString
			simpleSummary, pblancCn        sql.NullString
			analysisJSON                   []byte
			hasWritable                    sql.NullBool
			similarity                     sql.NullFloat64
		)
		if err := rows.Scan(&row.PblancID, &title, &org, &startDate, &endDate,
			&simpleSummary, &pblancCn, &analysisJSON, &hasWritable, &similarity); err != nil {
			return nil, fmt.Errorf("scan bizinfo result: %w", err)
		}
		row.PblancNm = title.String
		row.OrganNm = org.String
		row.ReqstBeginYmd = startDate.String
		row.ReqstEndYmd = endDate.String
		row.SimpleSummary = nullableString(simpleSummary)
		row.PblancCn = nullableString(pblancCn)
		row.SearchAnalysis = decodeAnalysis(analysisJSON)
		row.HasWritableContent = nullableBool(hasWritable)
		row.Similarity = nullableFloat(similarity)
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bizinfo results: %w", err)
	}

	if results == nil {
		results = []models.BizinfoRow{}
	}
	return results, nil
}

// decodeAnalysis parses the search_analysis jsonb column. NULL, jsonb null,
// or malformed analysis degrades to nil rather than failing the search; a
// non-nil zero-value analysis would steer the keyword scorer onto the wrong
// branch.
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

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

// float32Slice converts []float64 to []float32 for pgvector
func float32Slice(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
