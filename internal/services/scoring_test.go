package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/announcement-search-api/internal/models"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func analyzedCandidate() models.Candidate {
	return models.Candidate{
		Source:         models.SourceKStartup,
		AnnouncementID: "KS-2025-001",
		Title:          "창업도약패키지 지원사업",
		SearchAnalysis: &models.SearchAnalysis{
			SearchKeywords: []string{"창업", "도약", "스케일업"},
			Summary:        "창업 7년 이내 기업의 사업화 자금을 지원합니다",
			SupportTarget:  "창업 기업 및 예비 창업자",
			BusinessFields: []string{"제조", "창업지원"},
			TechFields:     []string{"ICT"},
		},
	}
}

func TestKeywordScoreAnalysisAdditive(t *testing.T) {
	// All four rules hit: 0.15 + 0.05 + 0.05 + 0.05
	score := KeywordScore("창업", analyzedCandidate())
	require.InDelta(t, 0.30, score, 1e-9)
}

func TestKeywordScoreAnalysisPartial(t *testing.T) {
	c := analyzedCandidate()

	// Only the keyword list matches
	c.SearchAnalysis.Summary = "중소기업 정책자금 안내"
	c.SearchAnalysis.SupportTarget = "중소기업"
	c.SearchAnalysis.BusinessFields = []string{"금융"}
	c.SearchAnalysis.TechFields = nil
	require.InDelta(t, 0.15, KeywordScore("창업", c), 1e-9)

	// Only summary and support target match
	c.SearchAnalysis.SearchKeywords = []string{"수출", "해외진출"}
	c.SearchAnalysis.Summary = "창업 기업 지원"
	c.SearchAnalysis.SupportTarget = "예비 창업자"
	require.InDelta(t, 0.10, KeywordScore("창업", c), 1e-9)
}

func TestKeywordScoreAnalysisTechFieldOnly(t *testing.T) {
	c := analyzedCandidate()
	c.SearchAnalysis = &models.SearchAnalysis{
		TechFields: []string{"바이오헬스"},
	}
	require.InDelta(t, 0.05, KeywordScore("바이오", c), 1e-9)
}

func TestKeywordScoreAnalysisNoMatch(t *testing.T) {
	require.Zero(t, KeywordScore("해외진출", analyzedCandidate()))
}

func TestKeywordScoreFallbackWinnerTakeAll(t *testing.T) {
	c := models.Candidate{
		Source:        models.SourceBizinfo,
		SummaryFields: []string{"AI 기반 스마트공장 지원"},
	}
	assert.Equal(t, 0.3, KeywordScore("스마트공장", c))
	assert.Equal(t, 0.0, KeywordScore("해외진출", c))
}

func TestKeywordScoreFallbackOnlyChecksFirstField(t *testing.T) {
	// The fallback matches against the highest-precedence field only; a hit
	// in a lower-precedence field does not count.
	c := models.Candidate{
		Source:        models.SourceKStartup,
		SummaryFields: []string{"청년 창업 지원", "스마트공장 구축 지원"},
	}
	assert.Equal(t, 0.0, KeywordScore("스마트공장", c))
	assert.Equal(t, 0.3, KeywordScore("창업", c))
}

func TestKeywordScoreCaseInsensitive(t *testing.T) {
	c := models.Candidate{
		SummaryFields: []string{"ai 기술 지원"},
	}
	assert.Equal(t, KeywordScore("ai", c), KeywordScore("AI", c))
	assert.Equal(t, 0.3, KeywordScore("AI", c))

	analyzed := models.Candidate{
		SearchAnalysis: &models.SearchAnalysis{
			SearchKeywords: []string{"ai 기술 지원"},
		},
	}
	assert.Equal(t, KeywordScore("ai", analyzed), KeywordScore("AI", analyzed))
}

func TestKeywordScoreEmptyQuery(t *testing.T) {
	for _, query := range []string{"", "   ", "\t\n"} {
		assert.Zero(t, KeywordScore(query, analyzedCandidate()))
		assert.Zero(t, KeywordScore(query, models.Candidate{
			SummaryFields: []string{"창업 지원"},
		}))
	}
}

func TestKeywordScoreTrimsQuery(t *testing.T) {
	c := models.Candidate{SummaryFields: []string{"창업 지원"}}
	assert.Equal(t, 0.3, KeywordScore("  창업  ", c))
}

func TestKeywordScoreMissingFields(t *testing.T) {
	// Candidates with no analysis and no summary text never error
	assert.Zero(t, KeywordScore("창업", models.Candidate{}))
	assert.Zero(t, KeywordScore("창업", models.Candidate{
		SearchAnalysis: &models.SearchAnalysis{},
	}))
}

func TestKeywordScoreBounds(t *testing.T) {
	candidates := []models.Candidate{
		{},
		analyzedCandidate(),
		{SummaryFields: []string{"창업 지원"}},
		{SearchAnalysis: &models.SearchAnalysis{Summary: "창업"}},
	}
	for _, query := range []string{"창업", "AI", "없는단어", ""} {
		for _, c := range candidates {
			score := KeywordScore(query, c)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 0.3)
		}
	}
}

func TestNormalizeResultScoreFormula(t *testing.T) {
	c := analyzedCandidate()
	c.Similarity = floatPtr(0.8)

	result := NormalizeResult(c, "창업")
	assert.Equal(t, 0.8, result.VectorScore)
	assert.InDelta(t, 0.30, result.KeywordScore, 1e-9)
	assert.Equal(t, result.VectorScore*0.7+result.KeywordScore, result.FinalScore)
}

func TestNormalizeResultMissingSimilarity(t *testing.T) {
	result := NormalizeResult(models.Candidate{Source: models.SourceBizinfo}, "창업")
	assert.Zero(t, result.VectorScore)
	assert.Zero(t, result.FinalScore)
}

func TestNormalizeResultSummaryPrecedence(t *testing.T) {
	c := models.Candidate{
		Source:        models.SourceKStartup,
		SummaryFields: []string{"요약", "원문"},
	}
	result := NormalizeResult(c, "창업")
	require.NotNil(t, result.Summary)
	assert.Equal(t, "요약", *result.Summary)

	result = NormalizeResult(models.Candidate{Source: models.SourceKStartup}, "창업")
	assert.Nil(t, result.Summary)
}

func TestNormalizeResultPassthrough(t *testing.T) {
	writable := true
	c := models.Candidate{
		Source:             models.SourceKStartup,
		AnnouncementID:     "KS-2025-001",
		Title:              "창업도약패키지",
		Organization:       "중소벤처기업부",
		StartDate:          "20250901",
		EndDate:            "20250930",
		HasWritableContent: &writable,
		Similarity:         floatPtr(0.42),
	}

	result := NormalizeResult(c, "창업")
	assert.Equal(t, "kstartup", result.Source)
	assert.Equal(t, "KS-2025-001", result.AnnouncementID)
	assert.Equal(t, "창업도약패키지", result.Title)
	assert.Equal(t, "중소벤처기업부", result.Organization)
	assert.Equal(t, "20250901", result.StartDate)
	assert.Equal(t, "20250930", result.EndDate)
	require.NotNil(t, result.HasWritableContent)
	assert.True(t, *result.HasWritableContent)
	assert.Equal(t, 0.42, result.VectorScore)
}
