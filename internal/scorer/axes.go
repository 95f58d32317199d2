package scorer

import "privyscope/internal/model"

const axesVersion = "axes-v1"

// AxesScorer is the alternate two-axis strategy: an independent clarity
// score (how transparent the disclosures are) and safety score (how
// restrained the observed tracking is, judged against the category
// baseline), both 0..100, combined into a verdict. It shares the Inputs
// contract with the points model but none of its thresholds.
type AxesScorer struct{}

func (a *AxesScorer) Name() string { return StrategyAxes }

func (a *AxesScorer) Score(in Inputs, base Baseline) model.ScoreResult {
	clarity := scoreClarity(in)
	safety, reasons := scoreSafety(in, base)

	level := model.VerdictHighRisk
	switch {
	case clarity >= 70 && safety >= 70:
		level = model.VerdictLikelyOK
	case clarity >= 40 && safety >= 40:
		level = model.VerdictCaution
	}

	return model.ScoreResult{
		Strategy: StrategyAxes,
		Version:  axesVersion,
		Points:   100 - safety,
		Level:    level,
		Reasons:  reasons,
		Clarity:  &clarity,
		Safety:   &safety,
	}
}

func scoreClarity(in Inputs) int {
	s := 0
	if in.RightsListed {
		s += 15
	}
	if in.ContactListed {
		s += 10
	}
	if in.PersonalDataRetention {
		s += 15
	}
	if in.CookieCategoriesExplained {
		s += 10
	}
	if in.CookieLifespansDisclosed {
		s += 10
	}
	if in.Consent.GranularControls {
		s += 10
	}
	switch in.Consent.RejectAllAvailable {
	case model.TriTrue:
		s += 10
	case model.TriUnclear:
		s += 5
	}
	if in.Consent.CMPName != "" {
		s += 5
	}
	if in.LastUpdatedPresent {
		s += 5
	}
	switch in.Readability {
	case model.ReadabilityPlain:
		s += 10
	case model.ReadabilityModerate:
		s += 5
	}
	return clamp100(s)
}

func scoreSafety(in Inputs, base Baseline) (int, []string) {
	risk := 0
	reasons := []string{}

	// Ads p75 vs baseline (max 20).
	adsOver := in.AdsP75Days - base.AdsP75Days
	switch {
	case adsOver <= 0:
	case adsOver <= 200:
		risk += 10
		reasons = append(reasons, "Ads cookie retention above the category baseline.")
	default:
		risk += 20
		reasons = append(reasons, "Ads cookie retention far above the category baseline.")
	}
	if in.AdsP75Days > 730 && risk < 20 {
		risk += 5
	}

	// Analytics p75 vs baseline (max 15).
	anaOver := in.AnalyticsP75Days - base.AnalyticsP75Days
	switch {
	case anaOver <= 0:
	case anaOver <= 200:
		risk += 8
		reasons = append(reasons, "Analytics retention above the category baseline.")
	default:
		risk += 15
		reasons = append(reasons, "Analytics retention far above the category baseline.")
	}

	// Vendors with cookies beyond two years (max 20).
	switch {
	case in.VeryLongVendors == 0:
	case in.VeryLongVendors == 1:
		risk += 8
		reasons = append(reasons, "One vendor sets cookies lasting beyond two years.")
	case in.VeryLongVendors <= 3:
		risk += 15
		reasons = append(reasons, "Several vendors set cookies lasting beyond two years.")
	default:
		risk += 20
		reasons = append(reasons, "Many vendors set cookies lasting beyond two years.")
	}

	// Third-party count vs category bands (max 20).
	tp := in.ThirdPartyCount
	switch {
	case tp <= base.Bands.Few:
	case tp <= base.Bands.Some:
		risk += 8
		reasons = append(reasons, "More third parties than typical for this category.")
	case tp <= base.Bands.Many:
		risk += 15
		reasons = append(reasons, "Far more third parties than typical for this category.")
	default:
		risk += 20
		reasons = append(reasons, "An unusually large number of third parties for this category.")
	}

	// Consent quality (max 15).
	if !in.Consent.GranularControls {
		risk += 10
		reasons = append(reasons, "No per-category cookie choices.")
	}
	switch in.Consent.RejectAllAvailable {
	case model.TriFalse:
		risk += 5
		reasons = append(reasons, `No "reject all" option.`)
	case model.TriUnclear:
		risk += 2
	}

	// Sensitive trackers (max 10).
	if in.SensitiveTrackers {
		risk += 10
		reasons = append(reasons, "Trackers associated with sensitive data categories.")
	}

	return clamp100(100 - risk), reasons
}

func clamp100(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
