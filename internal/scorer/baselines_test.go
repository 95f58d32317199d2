package scorer_test

import (
	"os"
	"path/filepath"
	"testing"

	"privyscope/internal/model"
	"privyscope/internal/scorer"
)

func TestForCategoryFallsBackToRetail(t *testing.T) {
	b := scorer.DefaultBaselines()

	got := b.ForCategory(model.SiteCategory("blog"))
	want := b[model.CategoryRetail]
	if got != want {
		t.Errorf("unknown category baseline = %+v, want retail %+v", got, want)
	}

	if b.ForCategory(model.CategoryGovNGO).AdsP75Days != 0 {
		t.Errorf("gov_ngo ads baseline should be 0")
	}
}

func TestLoadBaselinesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baselines.json")
	data := `{"retail": {"ads_p75_days": 90, "analytics_p75_days": 180, "third_party_bands": {"few": 2, "some": 6, "many": 10}}}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	b, err := scorer.LoadBaselines(path)
	if err != nil {
		t.Fatalf("LoadBaselines: %v", err)
	}
	if got := b.ForCategory(model.CategoryRetail).AdsP75Days; got != 90 {
		t.Errorf("overridden retail ads p75 = %d, want 90", got)
	}
	if got := b.ForCategory(model.CategoryNews).AdsP75Days; got != 365 {
		t.Errorf("news baseline changed unexpectedly: %d", got)
	}
}

func TestLoadBaselinesRejectsUnknownCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baselines.json")
	if err := os.WriteFile(path, []byte(`{"casino": {}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := scorer.LoadBaselines(path); err == nil {
		t.Errorf("expected error for unknown category")
	}
}
