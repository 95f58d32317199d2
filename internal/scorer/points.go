package scorer

import (
	"fmt"

	"privyscope/internal/model"
)

// pointsVersion identifies the rule table below; bump it whenever a rule,
// threshold or reason string changes so stored scores stay auditable.
const pointsVersion = "points-v1"

// PointsScorer is the canonical additive risk model. Every rule that fires
// adds points and appends one reason, in rule-table order, so a score is
// always traceable back to its evidence.
type PointsScorer struct{}

func (p *PointsScorer) Name() string { return StrategyPoints }

func (p *PointsScorer) Score(in Inputs, _ Baseline) model.ScoreResult {
	points := 0
	reasons := []string{}

	add := func(n int, reason string) {
		points += n
		reasons = append(reasons, reason)
	}

	// Ads cookie duration.
	switch {
	case in.MaxAdsDays > 730:
		add(3, fmt.Sprintf("Very long ads cookies (~%d days).", in.MaxAdsDays))
	case in.MaxAdsDays > 400:
		add(2, fmt.Sprintf("Long ads cookies (~%d days).", in.MaxAdsDays))
	}

	// Third-party presence.
	switch {
	case in.ThirdPartyCount >= 50:
		add(3, fmt.Sprintf("Very many third-party trackers (~%d).", in.ThirdPartyCount))
	case in.ThirdPartyCount >= 20:
		add(2, fmt.Sprintf("Many third-party trackers (~%d).", in.ThirdPartyCount))
	case in.ThirdPartyCount >= 10:
		add(1, fmt.Sprintf("Several third-party trackers (~%d).", in.ThirdPartyCount))
	}

	// Consent quality.
	if !in.Consent.GranularControls {
		add(2, "No way to choose cookies by category.")
	}
	if in.Consent.RejectAllAvailable == model.TriFalse {
		add(1, `No "reject all" option.`)
	}

	// Disclosures.
	if !in.PersonalDataRetention {
		add(1, "Personal-data retention not stated.")
	}
	if !in.RightsListed {
		add(1, "User rights not listed.")
	}
	if !in.ContactListed {
		add(1, "No contact/DPO found.")
	}

	level := model.VerdictLikelyOK
	switch {
	case points >= 6:
		level = model.VerdictHighRisk
	case points >= 3:
		level = model.VerdictCaution
	}

	return model.ScoreResult{
		Strategy: StrategyPoints,
		Version:  pointsVersion,
		Points:   points,
		Level:    level,
		Reasons:  reasons,
	}
}
