package services

import (
	"strings"

	"github.com/announcement-search-api/internal/models"
)

// Weighting of the hybrid score. The vector similarity carries 70% of the
// final score; the keyword bonus tops out at 0.3 so both branches of the
// keyword scorer share the same ceiling.
const (
	vectorWeight = 0.7

	keywordListBonus   = 0.15
	summaryBonus       = 0.05
	supportTargetBonus = 0.05
	fieldTagBonus      = 0.05

	fallbackBonus = 0.3
)

// KeywordScore returns the keyword relevance bonus in [0, 0.3] for a query
// against one candidate. Pure function: no I/O, missing fields contribute 0.
//
// Candidates with a search analysis score additively across its fields;
// candidates without one get a single all-or-nothing match against their
// best summary text.
func KeywordScore(query string, c models.Candidate) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	if c.SearchAnalysis != nil {
		return analysisScore(q, c.SearchAnalysis)
	}

	if len(c.SummaryFields) > 0 && strings.Contains(strings.ToLower(c.SummaryFields[0]), q) {
		return fallbackBonus
	}
	return 0
}

// analysisScore sums the per-field bonuses. The rules are independent: a
// query can hit all four and reach 0.3.
func analysisScore(q string, a *models.SearchAnalysis) float64 {
	score := 0.0

	for _, kw := range a.SearchKeywords {
		if strings.Contains(strings.ToLower(kw), q) {
			score += keywordListBonus
			break
		}
	}

	if strings.Contains(strings.ToLower(a.Summary), q) {
		score += summaryBonus
	}

	if strings.Contains(strings.ToLower(a.SupportTarget), q) {
		score += supportTargetBonus
	}

	for _, tag := range a.BusinessFields {
		if strings.Contains(strings.ToLower(tag), q) {
			return score + fieldTagBonus
		}
	}
	for _, tag := range a.TechFields {
		if strings.Contains(strings.ToLower(tag), q) {
			return score + fieldTagBonus
		}
	}
	return score
}

// NormalizeResult turns a catalog-neutral candidate into the public result
// shape, computing the score breakdown. The query may carry surrounding
// whitespace; scoring trims it.
func NormalizeResult(c models.Candidate, query string) models.SearchResult {
	vectorScore := 0.0
	if c.Similarity != nil {
		vectorScore = *c.Similarity
	}
	keywordScore := KeywordScore(query, c)

	var summary *string
	if len(c.SummaryFields) > 0 {
		summary = &c.SummaryFields[0]
	}

	return models.SearchResult{
		Source:             string(c.Source),
		AnnouncementID:     c.AnnouncementID,
		Title:              c.Title,
		Organization:       c.Organization,
		StartDate:          c.StartDate,
		EndDate:            c.EndDate,
		Summary:            summary,
		HasWritableContent: c.HasWritableContent,
		VectorScore:        vectorScore,
		KeywordScore:       keywordScore,
		FinalScore:         vectorScore*vectorWeight + keywordScore,
	}
}
