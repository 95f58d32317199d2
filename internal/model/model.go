// Package model holds the shared contracts passed between the acquisition
// boundary, the deterministic analysis engine and the API surface. Types here
// carry no behavior beyond validation and normalization; the engine never
// mutates an input snapshot after it has been handed over.
package model

// SameSite is the cookie same-site policy as captured from the browser store.
type SameSite string

const (
	SameSiteNone        SameSite = "none"
	SameSiteLax         SameSite = "lax"
	SameSiteStrict      SameSite = "strict"
	SameSiteUnspecified SameSite = "unspecified"
)

// SourceType records which source backs an extracted fact.
type SourceType string

const (
	SourcePolicyText  SourceType = "policy_text"
	SourceCookieTable SourceType = "cookie_table"
	SourceNone        SourceType = "none"
)

// SiteCategory selects the baseline the scorer judges a site against.
type SiteCategory string

const (
	CategoryRetail        SiteCategory = "retail"
	CategoryNews          SiteCategory = "news"
	CategorySaaS          SiteCategory = "saas"
	CategoryFinanceHealth SiteCategory = "finance_health"
	CategoryGovNGO        SiteCategory = "gov_ngo"
)

// NormalizeCategory maps free-form category input onto a known category,
// defaulting to retail (the least strict baseline).
func NormalizeCategory(s string) SiteCategory {
	switch SiteCategory(s) {
	case CategoryRetail, CategoryNews, CategorySaaS, CategoryFinanceHealth, CategoryGovNGO:
		return SiteCategory(s)
	default:
		return CategoryRetail
	}
}

// CookieSnapshot is one cookie captured from the live browser store at
// analysis time. MaxAgeSeconds is derived from the absolute expiration;
// nil means a session cookie.
type CookieSnapshot struct {
	Name           string   `json:"name"`
	Domain         string   `json:"domain"`
	Path           string   `json:"path"`
	Secure         bool     `json:"secure"`
	HttpOnly       bool     `json:"httpOnly"`
	SameSite       SameSite `json:"sameSite"`
	ExpirationDate *float64 `json:"expirationDate,omitempty"` // unix seconds
	MaxAgeSeconds  *int64   `json:"maxAgeSeconds"`
}

// CookieTableRow is one data row heuristically lifted from a cookie
// declaration table. Unresolved cells stay empty; RawRowText is always
// populated as a full-row fallback. ThirdParty is nil when no provider
// domain could be resolved (unknown, not false).
type CookieTableRow struct {
	CookieName     string `json:"cookie_name,omitempty"`
	Category       string `json:"category,omitempty"`
	LifespanText   string `json:"lifespan_text,omitempty"`
	ProviderText   string `json:"provider_text,omitempty"`
	ProviderDomain string `json:"provider_domain,omitempty"`
	RawRowText     string `json:"raw_row_text"`
	ThirdParty     *bool  `json:"third_party,omitempty"`
}

// RetentionItem is a single extracted claim about how long some category of
// data is kept, with its verbatim supporting quote. TTLDays is nil when the
// duration text carried no numeric confidence ("until deletion", "as required
// by law").
type RetentionItem struct {
	DataCategory string     `json:"data_category"`
	DurationText string     `json:"duration_text"`
	TTLDays      *int       `json:"ttl_days"`
	Quote        string     `json:"quote"`
	SourceURL    string     `json:"source_url"`
	SourceType   SourceType `json:"source_type"`
}

// ConsentSignals describes the consent-banner quality found in page text.
// CMPName is empty when no known consent-management vendor was detected.
type ConsentSignals struct {
	GranularControls   bool     `json:"granular_controls"`
	RejectAllAvailable TriState `json:"reject_all_available"`
	CMPName            string   `json:"cmp_name,omitempty"`
}

// ThirdPartySignals summarizes distinct tracking-party domains whose
// registrable root differs from the analyzed site's root.
type ThirdPartySignals struct {
	Count      int        `json:"count"`
	TopDomains []string   `json:"top_domains"` // at most 3, insertion order
	Evidence   SourceType `json:"evidence"`
}

// DurationMetrics holds per-category cookie lifespans in days, recomputed on
// every analysis. Outliers are entries above 730 days from either array.
type DurationMetrics struct {
	AdsDays       []int `json:"ads_days"`
	AnalyticsDays []int `json:"analytics_days"`
	OutliersDays  []int `json:"outliers_days"`
}

// Disclosures are the boolean transparency findings the scorer consumes.
// The last three fields feed the clarity axis only.
type Disclosures struct {
	RetentionDisclosed        bool `json:"retention_disclosed"`
	UserRightsListed          bool `json:"user_rights_listed"`
	ContactOrDPOListed        bool `json:"contact_or_dpo_listed"`
	CookieCategoriesExplained bool `json:"cookie_categories_explained"`
	CookieLifespansDisclosed  bool `json:"cookie_lifespans_disclosed"`
	LastUpdatedPresent        bool `json:"last_updated_present"`
}

// Readability classifies how approachable the policy prose is.
type Readability string

const (
	ReadabilityPlain    Readability = "plain"
	ReadabilityModerate Readability = "moderate"
	ReadabilityLegalese Readability = "legalese"
)

// Metrics are the robust summary numbers reported alongside the score.
type Metrics struct {
	AdsP75Days       int `json:"ads_p75_days"`
	AnalyticsP75Days int `json:"analytics_p75_days"`
	VeryLongVendors  int `json:"very_long_vendors"`
}

// AnalysisInput is the immutable snapshot assembled by the acquisition
// collaborators and consumed by the engine. The engine performs no I/O on it.
type AnalysisInput struct {
	PageURL         string           `json:"pageUrl"`
	SiteCategory    string           `json:"siteCategory,omitempty"`
	Cookies         []CookieSnapshot `json:"cookies"`
	PolicyText      string           `json:"policyText"`
	CookieTableRows []CookieTableRow `json:"cookieTableRows"`
}

// AnalysisResult is the full engine output contract. Cookies echoes the
// captured snapshot unchanged for display and audit; it never feeds scoring.
type AnalysisResult struct {
	PageURL         string            `json:"pageUrl"`
	SiteCategory    SiteCategory      `json:"siteCategory"`
	Cookies         []CookieSnapshot  `json:"cookies"`
	Retention       []RetentionItem   `json:"retention"`
	Disclosures     Disclosures       `json:"disclosures"`
	Consent         ConsentSignals    `json:"consent"`
	ThirdParties    ThirdPartySignals `json:"third_parties"`
	Durations       DurationMetrics   `json:"durations"`
	Metrics         Metrics           `json:"metrics"`
	Missing         []string          `json:"missing"`
	ReadabilityHint Readability       `json:"readability_hint"`
	Score           ScoreResult       `json:"score"`
	Summary         Summary           `json:"summary"`
}
