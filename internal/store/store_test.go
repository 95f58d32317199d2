package store_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"privyscope/internal/interfaces"
	"privyscope/internal/model"
	"privyscope/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(store.Config{}, interfaces.NewTestLogger(false))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func result(pageURL string, level model.Verdict, points int) model.AnalysisResult {
	return model.AnalysisResult{
		PageURL: pageURL,
		Score: model.ScoreResult{
			Strategy: "points",
			Version:  "points-v1",
			Points:   points,
			Level:    level,
			Reasons:  []string{},
		},
	}
}

func TestUpsertSiteIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first, err := s.UpsertSite(ctx, "shop.example.com", model.CategoryRetail)
	if err != nil {
		t.Fatalf("UpsertSite: %v", err)
	}
	again, err := s.UpsertSite(ctx, "shop.example.com", model.CategoryNews)
	if err != nil {
		t.Fatalf("UpsertSite again: %v", err)
	}
	if first.ID != again.ID {
		t.Errorf("upsert created a second row: %q vs %q", first.ID, again.ID)
	}
	if again.Category != model.CategoryRetail {
		t.Errorf("category overwritten on upsert: %q", again.Category)
	}

	sites, err := s.ListSites(ctx)
	if err != nil {
		t.Fatalf("ListSites: %v", err)
	}
	if len(sites) != 1 {
		t.Errorf("sites = %d, want 1", len(sites))
	}
}

func TestSavePolicyDiffsAgainstPrevious(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	site, err := s.UpsertSite(ctx, "shop.example.com", model.CategoryRetail)
	if err != nil {
		t.Fatalf("UpsertSite: %v", err)
	}

	first, err := s.SavePolicy(ctx, site.ID, "https://shop.example.com/privacy",
		"We keep data for 30 days.")
	if err != nil {
		t.Fatalf("SavePolicy: %v", err)
	}
	if first.DiffJSON != "" {
		t.Errorf("first snapshot should have empty diff, got %q", first.DiffJSON)
	}

	second, err := s.SavePolicy(ctx, site.ID, "https://shop.example.com/privacy",
		"We keep data for 2 years.")
	if err != nil {
		t.Fatalf("SavePolicy second: %v", err)
	}
	if second.DiffJSON == "" {
		t.Fatalf("second snapshot should carry a diff")
	}

	var diff struct {
		BaseID string `json:"base_id"`
		Chunks []struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		} `json:"chunks"`
	}
	if err := json.Unmarshal([]byte(second.DiffJSON), &diff); err != nil {
		t.Fatalf("diff json: %v", err)
	}
	if diff.BaseID != first.ID {
		t.Errorf("diff base = %q, want %q", diff.BaseID, first.ID)
	}
	var added, removed bool
	for _, c := range diff.Chunks {
		if c.Type == "added" && strings.Contains(c.Content, "2 years") {
			added = true
		}
		if c.Type == "removed" && strings.Contains(c.Content, "30 days") {
			removed = true
		}
	}
	if !added || !removed {
		t.Errorf("diff chunks = %+v, want 30 days removed and 2 years added", diff.Chunks)
	}
}

func TestSavePolicyDedupesUnchangedText(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	site, err := s.UpsertSite(ctx, "shop.example.com", model.CategoryRetail)
	if err != nil {
		t.Fatalf("UpsertSite: %v", err)
	}

	first, err := s.SavePolicy(ctx, site.ID, "https://shop.example.com/privacy",
		"We keep data for 30 days.")
	if err != nil {
		t.Fatalf("SavePolicy: %v", err)
	}
	if first.TextHash == "" {
		t.Fatalf("text hash not recorded")
	}

	again, err := s.SavePolicy(ctx, site.ID, "https://shop.example.com/privacy",
		"We keep data for 30 days.")
	if err != nil {
		t.Fatalf("SavePolicy again: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("unchanged text inserted a new snapshot: %q vs %q", again.ID, first.ID)
	}
}

func TestSaveAndListAnalyses(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	site, err := s.UpsertSite(ctx, "shop.example.com", model.CategoryRetail)
	if err != nil {
		t.Fatalf("UpsertSite: %v", err)
	}

	if _, err := s.SaveAnalysis(ctx, site.ID, result("https://shop.example.com/a", model.VerdictCaution, 4)); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	if _, err := s.SaveAnalysis(ctx, site.ID, result("https://shop.example.com/b", model.VerdictLikelyOK, 0)); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}

	got, err := s.ListAnalyses(ctx, "shop.example.com")
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("analyses = %d, want 2", len(got))
	}
	// Newest first.
	if got[0].PageURL != "https://shop.example.com/b" {
		t.Errorf("order wrong: first = %q", got[0].PageURL)
	}
	if got[1].Level != model.VerdictCaution || got[1].Points != 4 {
		t.Errorf("record = %+v", got[1])
	}
	if got[1].Result.Score.Version != "points-v1" {
		t.Errorf("result json not round-tripped: %+v", got[1].Result.Score)
	}
}

func TestListAnalysesUnknownDomain(t *testing.T) {
	s := newStore(t)
	if _, err := s.ListAnalyses(context.Background(), "never-seen.example.com"); err == nil {
		t.Fatalf("expected error for unknown domain")
	}
}

func TestLegacyVerdictNormalizedOnRead(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	site, err := s.UpsertSite(ctx, "old.example.com", model.CategoryRetail)
	if err != nil {
		t.Fatalf("UpsertSite: %v", err)
	}

	res := result("https://old.example.com/", model.Verdict("AVOID"), 9)
	if _, err := s.SaveAnalysis(ctx, site.ID, res); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}

	got, err := s.ListAnalyses(ctx, "old.example.com")
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(got) != 1 || got[0].Level != model.VerdictHighRisk {
		t.Errorf("legacy verdict not normalized: %+v", got)
	}
	if got[0].Result.Score.Level != model.VerdictHighRisk {
		t.Errorf("embedded result verdict not normalized: %+v", got[0].Result.Score)
	}
}
