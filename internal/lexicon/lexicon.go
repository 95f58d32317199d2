// Package lexicon holds the keyword vocabularies the extraction heuristics
// match against. These lists are small and will go stale as vendors rename
// products, so they live in data (overridable from a JSON file) rather than
// inline in engine logic.
package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CMPVendor is a consent-management platform detectable by name or alias in
// page text.
type CMPVendor struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

// Lexicon bundles every keyword allow-list used by the pipeline.
type Lexicon struct {
	// Row classification (ThirdPartyAggregator).
	AdsCategoryTerms       []string `json:"ads_category_terms"`
	AdsHints               []string `json:"ads_hints"`
	AnalyticsCategoryTerms []string `json:"analytics_category_terms"`
	AnalyticsHints         []string `json:"analytics_hints"`
	SensitiveHints         []string `json:"sensitive_hints"`

	// Consent vocabulary (TextSignalExtractor).
	CMPVendors      []CMPVendor `json:"cmp_vendors"`
	GranularTerms   []string    `json:"granular_terms"`
	RejectPhrases   []string    `json:"reject_phrases"`
	RetentionCues   []string    `json:"retention_cues"`
	PersonalDataCtx []string    `json:"personal_data_ctx"`
	RightsTerms     []string    `json:"rights_terms"`
	LegaleseMarkers []string    `json:"legalese_markers"`
	UpdateCues      []string    `json:"update_cues"`

	// Cookie table header synonyms (CookieTableParser).
	HeaderLifespan []string `json:"header_lifespan"`
	HeaderName     []string `json:"header_name"`
	HeaderCategory []string `json:"header_category"`
	HeaderProvider []string `json:"header_provider"`
}

// Default returns the built-in vocabulary. Callers must treat the result as
// read-only; Load copies before merging.
func Default() *Lexicon {
	return &Lexicon{
		AdsCategoryTerms: []string{"target", "advert", "ads", "marketing"},
		AdsHints: []string{
			"ad", "advert", "marketing", "doubleclick", "criteo", "adnxs",
			"_fbp", "tiktok", "tt_", "gcl", "taboola", "outbrain",
			"trade desk", "quantcast",
		},
		AnalyticsCategoryTerms: []string{"analytics", "performance"},
		AnalyticsHints: []string{
			"analytics", "google analytics", "_ga", "_gid", "_gat", "gtm",
			"gtag", "optimizely", "segment", "adobe analytics",
		},
		SensitiveHints: []string{
			"health", "medical", "pharma", "insurance", "credit", "loan",
		},
		CMPVendors: []CMPVendor{
			{Name: "OneTrust", Aliases: []string{"onetrust", "optanon"}},
			{Name: "TrustArc", Aliases: []string{"trustarc"}},
			{Name: "Cookiebot", Aliases: []string{"cookiebot"}},
			{Name: "Quantcast", Aliases: []string{"quantcast choice"}},
		},
		GranularTerms: []string{"preferences", "manage cookie", "manage cookies", "granular", "category", "settings"},
		RejectPhrases: []string{"reject all", "decline"},
		RetentionCues: []string{"retain", "retention", "keep", "store", "delete", "erasure", "until"},
		PersonalDataCtx: []string{
			"personal data", "personal information", "customer data",
			"account", "order", "records",
		},
		RightsTerms: []string{
			"access", "rectification", "erasure", "deletion", "portability",
			"object", "objection", "restriction", "appeal",
		},
		LegaleseMarkers: []string{
			"hereby", "thereof", "hereto", "pursuant", "notwithstanding",
			"whereas", "therein", "thereon", "therewith",
		},
		UpdateCues: []string{"last updated", "last modified", "effective date", "revision date", "effective as of"},

		HeaderLifespan: []string{"lifespan", "expiry", "expires", "expiration", "duration", "retention", "storage period"},
		HeaderName:     []string{"name", "cookie"},
		HeaderCategory: []string{"category", "purpose", "type"},
		HeaderProvider: []string{"provider", "domain", "company", "host", "vendor", "source"},
	}
}

// Load returns the default lexicon with any non-empty lists from the JSON
// file at path layered on top. An empty path returns the defaults.
func Load(path string) (*Lexicon, error) {
	lex := Default()
	if path == "" {
		return lex, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}

	var override Lexicon
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse lexicon file: %w", err)
	}

	merge(lex, &override)
	return lex, nil
}

func merge(base, override *Lexicon) {
	if len(override.AdsCategoryTerms) > 0 {
		base.AdsCategoryTerms = override.AdsCategoryTerms
	}
	if len(override.AdsHints) > 0 {
		base.AdsHints = override.AdsHints
	}
	if len(override.AnalyticsCategoryTerms) > 0 {
		base.AnalyticsCategoryTerms = override.AnalyticsCategoryTerms
	}
	if len(override.AnalyticsHints) > 0 {
		base.AnalyticsHints = override.AnalyticsHints
	}
	if len(override.SensitiveHints) > 0 {
		base.SensitiveHints = override.SensitiveHints
	}
	if len(override.CMPVendors) > 0 {
		base.CMPVendors = override.CMPVendors
	}
	if len(override.GranularTerms) > 0 {
		base.GranularTerms = override.GranularTerms
	}
	if len(override.RejectPhrases) > 0 {
		base.RejectPhrases = override.RejectPhrases
	}
	if len(override.RetentionCues) > 0 {
		base.RetentionCues = override.RetentionCues
	}
	if len(override.PersonalDataCtx) > 0 {
		base.PersonalDataCtx = override.PersonalDataCtx
	}
	if len(override.RightsTerms) > 0 {
		base.RightsTerms = override.RightsTerms
	}
	if len(override.LegaleseMarkers) > 0 {
		base.LegaleseMarkers = override.LegaleseMarkers
	}
	if len(override.UpdateCues) > 0 {
		base.UpdateCues = override.UpdateCues
	}
	if len(override.HeaderLifespan) > 0 {
		base.HeaderLifespan = override.HeaderLifespan
	}
	if len(override.HeaderName) > 0 {
		base.HeaderName = override.HeaderName
	}
	if len(override.HeaderCategory) > 0 {
		base.HeaderCategory = override.HeaderCategory
	}
	if len(override.HeaderProvider) > 0 {
		base.HeaderProvider = override.HeaderProvider
	}
}

// ContainsAny reports whether hay contains any needle, case-insensitively.
func ContainsAny(hay string, needles []string) bool {
	s := strings.ToLower(hay)
	for _, n := range needles {
		if n != "" && strings.Contains(s, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
