package scorer

import (
	"encoding/json"
	"fmt"
	"os"

	"privyscope/internal/model"
)

// Bands are ascending third-party-count thresholds for a site category.
type Bands struct {
	Few  int `json:"few"`
	Some int `json:"some"`
	Many int `json:"many"`
}

// Baseline is the "typical" tracking profile for one site category: the
// expected 75th-percentile cookie lifespans and the third-party bands
// observed values are judged against. Loaded once, never mutated at runtime.
type Baseline struct {
	AdsP75Days       int    `json:"ads_p75_days"`
	AnalyticsP75Days int    `json:"analytics_p75_days"`
	Bands            Bands  `json:"third_party_bands"`
	Notes            string `json:"notes,omitempty"`
}

// Baselines maps site categories to their reference profiles.
type Baselines map[model.SiteCategory]Baseline

// DefaultBaselines reflect common practice per industry: ad-heavy news sites
// get wide bands, sensitive sectors get near-zero tolerance for ad tracking.
func DefaultBaselines() Baselines {
	return Baselines{
		model.CategoryRetail: {
			AdsP75Days:       180,
			AnalyticsP75Days: 365,
			Bands:            Bands{Few: 5, Some: 15, Many: 25},
			Notes:            "Retail sites commonly use multiple ad/analytics vendors.",
		},
		model.CategoryNews: {
			AdsP75Days:       365,
			AnalyticsP75Days: 365,
			Bands:            Bands{Few: 10, Some: 25, Many: 40},
			Notes:            "News/media rely on tracking for ads and personalization.",
		},
		model.CategorySaaS: {
			AdsP75Days:       30,
			AnalyticsP75Days: 180,
			Bands:            Bands{Few: 3, Some: 8, Many: 12},
			Notes:            "SaaS usually minimal ads but has analytics.",
		},
		model.CategoryFinanceHealth: {
			AdsP75Days:       0,
			AnalyticsP75Days: 90,
			Bands:            Bands{Few: 2, Some: 5, Many: 8},
			Notes:            "Sensitive data industries should minimize tracking.",
		},
		model.CategoryGovNGO: {
			AdsP75Days:       0,
			AnalyticsP75Days: 90,
			Bands:            Bands{Few: 1, Some: 3, Many: 5},
			Notes:            "High privacy expectation, few third parties allowed.",
		},
	}
}

// ForCategory returns the baseline for cat, falling back to retail for
// anything unknown.
func (b Baselines) ForCategory(cat model.SiteCategory) Baseline {
	if base, ok := b[cat]; ok {
		return base
	}
	return b[model.CategoryRetail]
}

// LoadBaselines returns the defaults with any categories present in the
// JSON file at path replaced. An empty path returns the defaults.
func LoadBaselines(path string) (Baselines, error) {
	base := DefaultBaselines()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read baselines file: %w", err)
	}

	var override map[string]Baseline
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse baselines file: %w", err)
	}

	for k, v := range override {
		cat := model.SiteCategory(k)
		if _, known := base[cat]; !known {
			return nil, fmt.Errorf("unknown site category %q in baselines file", k)
		}
		base[cat] = v
	}
	return base, nil
}
