// Package scorer turns aggregated disclosure signals into a risk verdict.
// Two interchangeable strategies implement the same capability interface:
// the canonical additive points model and a two-axis clarity/safety model.
// Their thresholds are deliberately never merged; the caller picks one by
// name.
package scorer

import (
	"fmt"
	"strings"
	"sync"

	"privyscope/internal/model"
)

// Inputs is the declared input contract shared by every strategy. A scorer
// is a pure function of these fields plus a Baseline: identical inputs must
// yield identical points, level and reasons.
type Inputs struct {
	MaxAdsDays       int
	MaxAnalyticsDays int
	ThirdPartyCount  int

	Consent model.ConsentSignals

	// PersonalDataRetention is true only for policy-text retention claims;
	// cookie lifespans alone do not satisfy it.
	PersonalDataRetention bool
	RightsListed          bool
	ContactListed         bool

	// Clarity-axis extras.
	CookieCategoriesExplained bool
	CookieLifespansDisclosed  bool
	LastUpdatedPresent        bool
	Readability               model.Readability

	// Safety-axis extras.
	AdsP75Days        int
	AnalyticsP75Days  int
	VeryLongVendors   int
	SensitiveTrackers bool
}

// Scorer is the pluggable scoring capability.
type Scorer interface {
	Name() string
	Score(in Inputs, base Baseline) model.ScoreResult
}

var (
	mu       sync.RWMutex
	registry = map[string]Scorer{}
)

// Register adds a strategy under its lower-cased name, overwriting any
// previous registration.
func Register(s Scorer) {
	if s == nil || s.Name() == "" {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(s.Name())] = s
}

// ForName returns the named strategy; an empty name selects the canonical
// points model.
func ForName(name string) (Scorer, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = StrategyPoints
	}
	mu.RLock()
	s, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("scoring strategy %q not registered: available=%v", name, List())
	}
	return s, nil
}

// List returns the registered strategy names.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}

const (
	StrategyPoints = "points"
	StrategyAxes   = "axes"
)

func init() {
	Register(&PointsScorer{})
	Register(&AxesScorer{})
}
