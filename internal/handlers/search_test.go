package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/announcement-search-api/internal/models"
	"github.com/announcement-search-api/internal/services"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) EmbedQuery(context.Context, string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float64{0.1, 0.2}, nil
}

type stubVectorRepo struct {
	kstartupRows []models.KStartupRow
	bizinfoRows  []models.BizinfoRow
	err          error
}

func (s *stubVectorRepo) MatchKStartup(context.Context, []float64, float64, int) ([]models.KStartupRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.kstartupRows, nil
}

func (s *stubVectorRepo) MatchBizinfo(context.Context, []float64, float64, int) ([]models.BizinfoRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.bizinfoRows, nil
}

func newSearchTestServer(embedder *stubEmbedder, repo *stubVectorRepo) *echo.Echo {
	e := echo.New()
	svc := services.NewHybridSearchService(repo, embedder, nil)
	NewSearchHandler(svc).RegisterRoutes(e.Group("/api"))
	return e
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHybridSearchEndpoint(t *testing.T) {
	summary := "창업 지원 사업"
	similarity := 0.8
	repo := &stubVectorRepo{
		kstartupRows: []models.KStartupRow{{
			AnnouncementID: "KS-1",
			BizPbancNm:     "창업도약패키지",
			PbancNtrpNm:    "중소벤처기업부",
			SimpleSummary:  &summary,
			Similarity:     &similarity,
		}},
	}
	e := newSearchTestServer(&stubEmbedder{}, repo)

	rec := postJSON(e, "/api/search/hybrid", `{"query": "창업", "source": "kstartup", "limit": 5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HybridSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "창업", resp.Query)

	result := resp.Results[0]
	assert.Equal(t, "kstartup", result.Source)
	assert.Equal(t, "KS-1", result.AnnouncementID)
	assert.Equal(t, 0.8, result.VectorScore)
	assert.Equal(t, 0.3, result.KeywordScore)
	assert.InDelta(t, 0.86, result.FinalScore, 1e-9)
	require.NotNil(t, result.Summary)
	assert.Equal(t, "창업 지원 사업", *result.Summary)
	assert.Nil(t, result.HasWritableContent)
}

func TestHybridSearchEmptyQuery(t *testing.T) {
	e := newSearchTestServer(&stubEmbedder{}, &stubVectorRepo{})

	rec := postJSON(e, "/api/search/hybrid", `{"query": "   "}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HybridSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.Total)
	assert.Equal(t, "   ", resp.Query)
}

func TestHybridSearchDefaults(t *testing.T) {
	// Absent source and limit default to "all" and 20; an empty body is a
	// valid (empty-query) request.
	e := newSearchTestServer(&stubEmbedder{}, &stubVectorRepo{})

	rec := postJSON(e, "/api/search/hybrid", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HybridSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.Total)
}

func TestHybridSearchUnknownSource(t *testing.T) {
	e := newSearchTestServer(&stubEmbedder{}, &stubVectorRepo{})

	rec := postJSON(e, "/api/search/hybrid", `{"query": "창업", "source": "naver"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "naver")
}

func TestHybridSearchMalformedBody(t *testing.T) {
	e := newSearchTestServer(&stubEmbedder{}, &stubVectorRepo{})

	rec := postJSON(e, "/api/search/hybrid", `{"query": `)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["error"])
}

func TestHybridSearchUpstreamFailure(t *testing.T) {
	e := newSearchTestServer(&stubEmbedder{err: errors.New("embedding service down")}, &stubVectorRepo{})

	rec := postJSON(e, "/api/search/hybrid", `{"query": "창업"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "embedding service down")
}

func TestHybridSearchVectorStoreFailure(t *testing.T) {
	e := newSearchTestServer(&stubEmbedder{}, &stubVectorRepo{err: errors.New("index unavailable")})

	rec := postJSON(e, "/api/search/hybrid", `{"query": "창업"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "index unavailable")
}
