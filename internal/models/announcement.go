package models

// SearchAnalysis is the second-pass enrichment stored alongside announcements
// that went through attachment analysis. Announcements without attachments
// only carry the first-pass summary fields.
type SearchAnalysis struct {
	SearchKeywords []string `json:"search_keywords"`
	Summary        string   `json:"summary"`
	SupportTarget  string   `json:"support_target"`
	BusinessFields []string `json:"business_fields"`
	TechFields     []string `json:"tech_fields"`
}

// KStartupRow is a raw match row from the K-Startup catalog, field names
// following the upstream K-Startup schema.
type KStartupRow struct {
	AnnouncementID     string          `json:"announcement_id"`
	BizPbancNm         string          `json:"biz_pbanc_nm"`
	PbancNtrpNm        string          `json:"pbanc_ntrp_nm"`
	PbancRcptBgngDt    string          `json:"pbanc_rcpt_bgng_dt"`
	PbancRcptEndDt     string          `json:"pbanc_rcpt_end_dt"`
	SimpleSummary      *string         `json:"simple_summary"`
	BsnsSumry          *string         `json:"bsns_sumry"`
	SearchAnalysis     *SearchAnalysis `json:"search_analysis"`
	HasWritableContent *bool           `json:"has_writable_content"`
	Similarity         *float64        `json:"similarity"`
}

// BizinfoRow is a raw match row from the BizInfo catalog, field names
// following the upstream BizInfo schema.
type BizinfoRow struct {
	PblancID           string          `json:"pblanc_id"`
	PblancNm           string          `json:"pblanc_nm"`
	OrganNm            string          `json:"organ_nm"`
	ReqstBeginYmd      string          `json:"reqst_begin_ymd"`
	ReqstEndYmd        string          `json:"reqst_end_ymd"`
	SimpleSummary      *string         `json:"simple_summary"`
	PblancCn           *string         `json:"pblanc_cn"`
	SearchAnalysis     *SearchAnalysis `json:"search_analysis"`
	HasWritableContent *bool           `json:"has_writable_content"`
	Similarity         *float64        `json:"similarity"`
}

// Candidate is the catalog-neutral view of a raw match row. Each catalog maps
// into it once, so scoring and normalization never branch on the source
// schema.
//
// SummaryFields holds the summary-like texts that were present on the row, in
// the catalog's fallback precedence order (richest first). The first entry is
// both the displayed summary and the text the keyword fallback matches
// against.
type Candidate struct {
	Source             Source
	AnnouncementID     string
	Title              string
	Organization       string
	StartDate          string
	EndDate            string
	SummaryFields      []string
	SearchAnalysis     *SearchAnalysis
	HasWritableContent *bool
	Similarity         *float64
}

// Candidate maps a K-Startup row into the catalog-neutral form.
// Summary precedence: simple_summary, then bsns_sumry.
func (r KStartupRow) Candidate() Candidate {
	return Candidate{
		Source:             SourceKStartup,
		AnnouncementID:     r.AnnouncementID,
		Title:              r.BizPbancNm,
		Organization:       r.PbancNtrpNm,
		StartDate:          r.PbancRcptBgngDt,
		EndDate:            r.PbancRcptEndDt,
		SummaryFields:      presentFields(r.SimpleSummary, r.BsnsSumry),
		SearchAnalysis:     r.SearchAnalysis,
		HasWritableContent: r.HasWritableContent,
		Similarity:         r.Similarity,
	}
}

// Candidate maps a BizInfo row into the catalog-neutral form.
// Summary precedence: simple_summary, then pblanc_cn.
func (r BizinfoRow) Candidate() Candidate {
	return Candidate{
		Source:             SourceBizinfo,
		AnnouncementID:     r.PblancID,
		Title:              r.PblancNm,
		Organization:       r.OrganNm,
		StartDate:          r.ReqstBeginYmd,
		EndDate:            r.ReqstEndYmd,
		SummaryFields:      presentFields(r.SimpleSummary, r.PblancCn),
		SearchAnalysis:     r.SearchAnalysis,
		HasWritableContent: r.HasWritableContent,
		Similarity:         r.Similarity,
	}
}

// presentFields keeps the non-null entries of an ordered fallback chain.
func presentFields(fields ...*string) []string {
	present := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != nil {
			present = append(present, *f)
		}
	}
	return present
}
