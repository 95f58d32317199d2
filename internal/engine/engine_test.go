package engine_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"privyscope/internal/engine"
	"privyscope/internal/model"
)

const cleanPolicy = `We retain your personal data for 12 months after account closure.
You have the right to access, rectification and erasure of your data.
Contact our data protection officer at privacy@shop.example.com.
You can manage cookie preferences by category in the settings.
A "Reject all" button is shown on first visit.`

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New(engine.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestAnalyzeCleanSite(t *testing.T) {
	e := newEngine(t)

	got, err := e.Analyze(model.AnalysisInput{
		PageURL:    "https://shop.example.com/checkout",
		PolicyText: cleanPolicy,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got.Score.Points != 0 {
		t.Errorf("points = %d, want 0 (reasons %v)", got.Score.Points, got.Score.Reasons)
	}
	if got.Score.Level != model.VerdictLikelyOK {
		t.Errorf("level = %q", got.Score.Level)
	}
	if len(got.Score.Reasons) != 0 {
		t.Errorf("reasons = %v, want empty", got.Score.Reasons)
	}
	if len(got.Missing) != 0 {
		t.Errorf("missing = %v, want empty", got.Missing)
	}

	if !got.Disclosures.RetentionDisclosed {
		t.Errorf("retention should be disclosed")
	}
	if len(got.Retention) != 1 {
		t.Fatalf("retention items = %d, want 1", len(got.Retention))
	}
	item := got.Retention[0]
	if item.SourceType != model.SourcePolicyText || item.DataCategory != "personal_data" {
		t.Errorf("retention item = %+v", item)
	}
	if item.TTLDays == nil || *item.TTLDays != 360 {
		t.Errorf("ttl = %v, want 360", item.TTLDays)
	}

	if got.Consent.RejectAllAvailable != model.TriTrue || !got.Consent.GranularControls {
		t.Errorf("consent = %+v", got.Consent)
	}
	if got.ThirdParties.Count != 0 || got.ThirdParties.Evidence != model.SourceNone {
		t.Errorf("third parties = %+v", got.ThirdParties)
	}
	if len(got.Summary.Bullets) != 3 || got.Summary.Advice == "" {
		t.Errorf("summary = %+v", got.Summary)
	}
}

func TestAnalyzeRiskySite(t *testing.T) {
	e := newEngine(t)

	var rows []model.CookieTableRow
	for i := 0; i < 12; i++ {
		d := fmt.Sprintf("tracker%d.com", i)
		rows = append(rows, model.CookieTableRow{
			CookieName:     fmt.Sprintf("ad_%d", i),
			Category:       "Marketing",
			LifespanText:   "800 days",
			ProviderDomain: d,
			RawRowText:     fmt.Sprintf("ad_%d | Marketing | 800 days | %s", i, d),
		})
	}

	got, err := e.Analyze(model.AnalysisInput{
		PageURL:         "https://shop.example.com/",
		CookieTableRows: rows,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got.Score.Points < 9 {
		t.Errorf("points = %d, want >= 9", got.Score.Points)
	}
	if got.Score.Level != model.VerdictHighRisk {
		t.Errorf("level = %q", got.Score.Level)
	}
	if len(got.Score.Reasons) < 2 || !strings.Contains(got.Score.Reasons[0], "Very long ads cookies") {
		t.Errorf("reasons = %v, want ads duration first", got.Score.Reasons)
	}

	if got.ThirdParties.Count != 12 {
		t.Errorf("third parties = %d, want 12", got.ThirdParties.Count)
	}
	if len(got.ThirdParties.TopDomains) != 3 {
		t.Errorf("top domains = %v", got.ThirdParties.TopDomains)
	}
	if got.Metrics.AdsP75Days != 800 {
		t.Errorf("ads p75 = %d, want 800", got.Metrics.AdsP75Days)
	}
	if got.Metrics.VeryLongVendors != 12 {
		t.Errorf("very long vendors = %d, want 12", got.Metrics.VeryLongVendors)
	}
	if len(got.Durations.OutliersDays) != 12 {
		t.Errorf("outliers = %v", got.Durations.OutliersDays)
	}
	if len(got.Missing) != 3 {
		t.Errorf("missing = %v, want all three gaps", got.Missing)
	}

	// Table rows disclose lifespans and categories even with no policy text.
	if !got.Disclosures.CookieLifespansDisclosed || !got.Disclosures.CookieCategoriesExplained {
		t.Errorf("disclosures = %+v", got.Disclosures)
	}
	if got.Disclosures.RetentionDisclosed {
		t.Errorf("cookie lifespans alone must not satisfy retention disclosure")
	}
}

func TestAnalyzeSessionHeavyAdsUseMaxFallback(t *testing.T) {
	e := newEngine(t)

	// Three session cookies and one long-lived one: the bare p75 of
	// [0 0 0 800] is 0, so the reported figure must fall back to the max.
	rows := []model.CookieTableRow{
		{CookieName: "ad_a", Category: "Marketing", LifespanText: "Session", ProviderDomain: "adnet-a.com", RawRowText: "ad_a | Marketing | Session | adnet-a.com"},
		{CookieName: "ad_b", Category: "Marketing", LifespanText: "Session", ProviderDomain: "adnet-b.com", RawRowText: "ad_b | Marketing | Session | adnet-b.com"},
		{CookieName: "ad_c", Category: "Marketing", LifespanText: "Session", ProviderDomain: "adnet-c.com", RawRowText: "ad_c | Marketing | Session | adnet-c.com"},
		{CookieName: "_fbp", Category: "Marketing", LifespanText: "800 days", ProviderDomain: "facebook.com", RawRowText: "_fbp | Marketing | 800 days | facebook.com"},
	}

	got, err := e.Analyze(model.AnalysisInput{
		PageURL:         "https://shop.example.com/",
		CookieTableRows: rows,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got.Metrics.AdsP75Days != 800 {
		t.Errorf("ads p75 = %d, want 800 via max fallback", got.Metrics.AdsP75Days)
	}
	if got.Metrics.VeryLongVendors != 1 {
		t.Errorf("very long vendors = %d, want 1", got.Metrics.VeryLongVendors)
	}
}

func TestAnalyzeTableRetentionItems(t *testing.T) {
	e := newEngine(t)

	got, err := e.Analyze(model.AnalysisInput{
		PageURL: "https://shop.example.com/",
		CookieTableRows: []model.CookieTableRow{
			{CookieName: "_ga", Category: "Analytics", LifespanText: "2 years", RawRowText: "_ga | Analytics | 2 years"},
			{CookieName: "mystery", RawRowText: "mystery | something"},
		},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(got.Retention) != 1 {
		t.Fatalf("retention = %+v, want 1 item", got.Retention)
	}
	item := got.Retention[0]
	if item.SourceType != model.SourceCookieTable || item.DataCategory != "Analytics" {
		t.Errorf("item = %+v", item)
	}
	if item.TTLDays == nil || *item.TTLDays != 730 {
		t.Errorf("ttl = %v, want 730", item.TTLDays)
	}
}

func TestAnalyzeInvalidURL(t *testing.T) {
	e := newEngine(t)
	if _, err := e.Analyze(model.AnalysisInput{PageURL: "not a url"}); err == nil {
		t.Fatalf("expected error for unusable page url")
	}
}

func TestAnalyzeTruncatesHugeText(t *testing.T) {
	e := newEngine(t)

	// The rights sentence sits beyond the cap and must be invisible.
	text := strings.Repeat("word ", 50_000) + "You have the right to access your data."
	got, err := e.Analyze(model.AnalysisInput{
		PageURL:    "https://shop.example.com/",
		PolicyText: text,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.Disclosures.UserRightsListed {
		t.Errorf("rights found beyond the text cap")
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	e := newEngine(t)
	in := model.AnalysisInput{
		PageURL:    "https://news.example.com/",
		PolicyText: cleanPolicy,
		CookieTableRows: []model.CookieTableRow{
			{CookieName: "_fbp", Category: "Marketing", LifespanText: "90 days", ProviderDomain: "facebook.com", RawRowText: "_fbp | Marketing | 90 days"},
		},
		SiteCategory: "news",
	}

	first, err := e.Analyze(in)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := e.Analyze(in)
		if err != nil {
			t.Fatalf("Analyze run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs", i)
		}
	}
}

func TestAnalyzeUnknownStrategy(t *testing.T) {
	if _, err := engine.New(engine.Config{Strategy: "vibes"}); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestAugmentRequestCarriesNoRawText(t *testing.T) {
	e := newEngine(t)
	res, err := e.Analyze(model.AnalysisInput{
		PageURL:    "https://shop.example.com/",
		PolicyText: cleanPolicy,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	req := engine.AugmentRequest(res)
	if req.SiteCategory != model.CategoryRetail {
		t.Errorf("category = %q", req.SiteCategory)
	}
	if !reflect.DeepEqual(req.Disclosures, res.Disclosures) {
		t.Errorf("disclosures differ")
	}
}
