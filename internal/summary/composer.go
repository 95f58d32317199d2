// Package summary renders a scored analysis into a small plain-language
// TL;DR: exactly three bullets and one advice sentence. The deterministic
// composer is always available; a remote generative summarizer can refine
// the wording and, within clamped bounds, the axis scores.
package summary

import (
	"fmt"

	"privyscope/internal/model"
)

// Inputs are the signals the composer phrases. Empty duration slices mean
// the lifespan was never disclosed, which is different from session-only.
type Inputs struct {
	AdsDays               []int
	AnalyticsDays         []int
	ThirdPartyCount       int
	PersonalDataRetention bool
	RightsListed          bool
	ContactListed         bool
	Consent               model.ConsentSignals
}

// Compose returns the fixed-template summary for a score. Same score and
// inputs always produce the same bullets and advice.
func Compose(score model.ScoreResult, in Inputs) model.Summary {
	bullets := []string{
		fmt.Sprintf("Ads cookies: %s; Analytics: %s; %s.",
			labelDuration(in.AdsDays), labelDuration(in.AnalyticsDays),
			labelThirdParties(in.ThirdPartyCount)),
		retentionBullet(in.PersonalDataRetention),
		consentBullet(in),
	}

	return model.Summary{
		Score:   score,
		Bullets: bullets,
		Advice:  adviceFor(score.Level),
	}
}

func labelDuration(days []int) string {
	if len(days) == 0 {
		return "unspecified"
	}
	max := days[0]
	for _, d := range days[1:] {
		if d > max {
			max = d
		}
	}
	switch {
	case max == 0:
		return "session only"
	case max <= 90:
		return fmt.Sprintf("short (~%dd)", max)
	case max <= 400:
		return fmt.Sprintf("typical (~%dd)", max)
	case max <= 730:
		return fmt.Sprintf("long (~%dd)", max)
	default:
		return fmt.Sprintf("very long (~%dd)", max)
	}
}

func labelThirdParties(n int) string {
	switch {
	case n == 0:
		return "no third-party trackers"
	case n < 6:
		return "a few third-party trackers"
	case n < 20:
		return "some third-party trackers"
	case n < 50:
		return "many third-party trackers (common on large sites)"
	default:
		return "a very large number of third-party trackers"
	}
}

func retentionBullet(disclosed bool) string {
	if disclosed {
		return "They state how long personal data (like account info) is kept."
	}
	return "They don't say how long personal data (like account info) is kept."
}

func consentBullet(in Inputs) string {
	choice := "No easy way to choose cookies"
	if in.Consent.GranularControls {
		choice = "You can choose which cookies to allow"
	}

	var reject string
	switch in.Consent.RejectAllAvailable {
	case model.TriTrue:
		reject = `Has a "reject all" button`
	case model.TriUnclear:
		reject = `Unclear whether "reject all" is offered`
	default:
		reject = `No "reject all" button`
	}

	rights := "not listed"
	if in.RightsListed {
		rights = "listed"
	}
	contact := "missing"
	if in.ContactListed {
		contact = "present"
	}
	return fmt.Sprintf("%s. %s. Rights %s. Contact %s.", choice, reject, rights, contact)
}

func adviceFor(level model.Verdict) string {
	switch level {
	case model.VerdictLikelyOK:
		return "Looks fine: accept essential cookies, and consider turning off ads/marketing if you prefer."
	case model.VerdictCaution:
		return "Proceed carefully: turn off ads/marketing cookies if possible; continue only if you're comfortable."
	default:
		return "High risk: avoid accepting non-essential cookies here; consider leaving or using private mode."
	}
}
