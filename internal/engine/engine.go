// Package engine runs the deterministic analysis pipeline: one immutable
// input snapshot in, one fully scored and summarized result out. The engine
// performs no I/O and keeps no state between calls; concurrent analyses of
// different pages need no coordination.
package engine

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"privyscope/internal/durations"
	"privyscope/internal/lexicon"
	"privyscope/internal/model"
	"privyscope/internal/scorer"
	"privyscope/internal/summary"
	"privyscope/internal/textsignals"
	"privyscope/internal/thirdparty"
)

// maxPolicyTextBytes caps the analyzed text so adversarially huge documents
// stay bounded.
const maxPolicyTextBytes = 200_000

var ErrInvalidPageURL = errors.New("page url has no parseable host")

// Config selects the vocabulary, baselines and scoring strategy. Zero values
// select the defaults.
type Config struct {
	Strategy  string
	Lexicon   *lexicon.Lexicon
	Baselines scorer.Baselines
}

// Engine is safe for concurrent use; all fields are read-only after New.
type Engine struct {
	lex       *lexicon.Lexicon
	extractor *textsignals.Extractor
	agg       *thirdparty.Aggregator
	baselines scorer.Baselines
	strategy  scorer.Scorer
}

func New(cfg Config) (*Engine, error) {
	lex := cfg.Lexicon
	if lex == nil {
		lex = lexicon.Default()
	}
	baselines := cfg.Baselines
	if baselines == nil {
		baselines = scorer.DefaultBaselines()
	}
	strategy, err := scorer.ForName(cfg.Strategy)
	if err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	return &Engine{
		lex:       lex,
		extractor: textsignals.New(lex),
		agg:       thirdparty.New(lex),
		baselines: baselines,
		strategy:  strategy,
	}, nil
}

// Analyze runs the full pipeline over one snapshot. The only error condition
// is an unusable page URL; every absent signal inside the snapshot degrades
// to an absent value in the result instead.
func (e *Engine) Analyze(in model.AnalysisInput) (model.AnalysisResult, error) {
	u, err := url.Parse(in.PageURL)
	if err != nil || u.Hostname() == "" {
		return model.AnalysisResult{}, fmt.Errorf("%w: %q", ErrInvalidPageURL, in.PageURL)
	}

	text := in.PolicyText
	if len(text) > maxPolicyTextBytes {
		text = text[:maxPolicyTextBytes]
	}
	category := model.NormalizeCategory(in.SiteCategory)

	sig := e.extractor.Extract(text, in.PageURL)
	agg := e.agg.Aggregate(in.CookieTableRows, u.Hostname())

	retention := tableRetention(in.CookieTableRows, in.PageURL)
	retention = append(retention, sig.Retention...)

	// Cookie lifespans alone never satisfy the personal-data retention
	// disclosure; only a policy-text claim does.
	pdRetention := len(sig.Retention) > 0

	disclosures := model.Disclosures{
		RetentionDisclosed:        pdRetention,
		UserRightsListed:          sig.RightsListed,
		ContactOrDPOListed:        sig.ContactListed,
		CookieCategoriesExplained: anyCategory(in.CookieTableRows),
		CookieLifespansDisclosed:  anyLifespan(in.CookieTableRows),
		LastUpdatedPresent:        sig.LastUpdatedPresent,
	}

	// Session-heavy arrays yield a zero p75 even when a long-lived cookie
	// exists; the category max is the honest figure then.
	adsP75 := durations.Percentile75(agg.Durations.AdsDays)
	if adsP75 == 0 {
		adsP75 = agg.MaxAdsDays
	}
	analyticsP75 := durations.Percentile75(agg.Durations.AnalyticsDays)
	if analyticsP75 == 0 {
		analyticsP75 = agg.MaxAnalyticsDays
	}

	metrics := model.Metrics{
		AdsP75Days:       adsP75,
		AnalyticsP75Days: analyticsP75,
		VeryLongVendors:  agg.VeryLongVendors,
	}

	score := e.strategy.Score(scorer.Inputs{
		MaxAdsDays:                agg.MaxAdsDays,
		MaxAnalyticsDays:          agg.MaxAnalyticsDays,
		ThirdPartyCount:           agg.ThirdParties.Count,
		Consent:                   sig.Consent,
		PersonalDataRetention:     pdRetention,
		RightsListed:              sig.RightsListed,
		ContactListed:             sig.ContactListed,
		CookieCategoriesExplained: disclosures.CookieCategoriesExplained,
		CookieLifespansDisclosed:  disclosures.CookieLifespansDisclosed,
		LastUpdatedPresent:        sig.LastUpdatedPresent,
		Readability:               sig.Readability,
		AdsP75Days:                metrics.AdsP75Days,
		AnalyticsP75Days:          metrics.AnalyticsP75Days,
		VeryLongVendors:           metrics.VeryLongVendors,
		SensitiveTrackers:         agg.SensitiveTrackers,
	}, e.baselines.ForCategory(category))

	sum := summary.Compose(score, summary.Inputs{
		AdsDays:               agg.Durations.AdsDays,
		AnalyticsDays:         agg.Durations.AnalyticsDays,
		ThirdPartyCount:       agg.ThirdParties.Count,
		PersonalDataRetention: pdRetention,
		RightsListed:          sig.RightsListed,
		ContactListed:         sig.ContactListed,
		Consent:               sig.Consent,
	})

	cookies := in.Cookies
	if cookies == nil {
		cookies = []model.CookieSnapshot{}
	}

	return model.AnalysisResult{
		PageURL:         in.PageURL,
		SiteCategory:    category,
		Cookies:         cookies,
		Retention:       retention,
		Disclosures:     disclosures,
		Consent:         sig.Consent,
		ThirdParties:    agg.ThirdParties,
		Durations:       agg.Durations,
		Metrics:         metrics,
		Missing:         missingList(pdRetention, sig.RightsListed, sig.ContactListed),
		ReadabilityHint: sig.Readability,
		Score:           score,
		Summary:         sum,
	}, nil
}

// AugmentRequest builds the derived-signals-only payload for the remote
// summarizer. Raw policy text and quotes never leave the process.
func AugmentRequest(res model.AnalysisResult) model.AugmentRequest {
	req := model.AugmentRequest{
		SiteCategory:    res.SiteCategory,
		Disclosures:     res.Disclosures,
		Consent:         res.Consent,
		ThirdParties:    res.ThirdParties,
		Durations:       res.Durations,
		Metrics:         res.Metrics,
		ReadabilityHint: res.ReadabilityHint,
	}
	if res.Score.Clarity != nil {
		req.ClarityRule = *res.Score.Clarity
	}
	if res.Score.Safety != nil {
		req.SafetyRule = *res.Score.Safety
	}
	return req
}

// tableRetention lifts every row with a recognizable duration into a
// retention item. Rows without one contribute nothing.
func tableRetention(rows []model.CookieTableRow, pageURL string) []model.RetentionItem {
	items := []model.RetentionItem{}
	for _, row := range rows {
		durText := row.LifespanText
		if durText == "" {
			durText = durations.FindDuration(row.RawRowText)
		}
		if durText == "" {
			continue
		}

		category := row.Category
		if category == "" {
			category = "cookie"
		}
		quote := strings.TrimSpace(row.RawRowText)
		if quote == "" {
			quote = strings.TrimSpace(row.CookieName + " " + durText)
		}

		items = append(items, model.RetentionItem{
			DataCategory: category,
			DurationText: durText,
			TTLDays:      durations.ToDays(durText),
			Quote:        quote,
			SourceURL:    pageURL,
			SourceType:   model.SourceCookieTable,
		})
	}
	return items
}

func anyCategory(rows []model.CookieTableRow) bool {
	for _, row := range rows {
		if strings.TrimSpace(row.Category) != "" {
			return true
		}
	}
	return false
}

func anyLifespan(rows []model.CookieTableRow) bool {
	for _, row := range rows {
		if strings.TrimSpace(row.LifespanText) != "" {
			return true
		}
		if durations.FindDuration(row.RawRowText) != "" {
			return true
		}
	}
	return false
}

func missingList(pdRetention, rights, contact bool) []string {
	missing := []string{}
	if !pdRetention {
		missing = append(missing, "No personal-data retention statement found (cookie lifespans are separate).")
	}
	if !rights {
		missing = append(missing, "User rights not clearly listed")
	}
	if !contact {
		missing = append(missing, "Contact/DPO not found")
	}
	return missing
}
