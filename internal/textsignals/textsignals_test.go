package textsignals_test

import (
	"strings"
	"testing"

	"privyscope/internal/model"
	"privyscope/internal/textsignals"
)

func extract(t *testing.T, text string) textsignals.Signals {
	t.Helper()
	return textsignals.New(nil).Extract(text, "https://example.com/privacy")
}

func TestRetentionNeedsCueAndContext(t *testing.T) {
	sig := extract(t, "We retain personal data for 24 months after account closure. The weather is nice.")
	if len(sig.Retention) != 1 {
		t.Fatalf("expected 1 retention item, got %d", len(sig.Retention))
	}
	item := sig.Retention[0]
	if item.DurationText != "24 months" {
		t.Errorf("duration text = %q", item.DurationText)
	}
	if item.TTLDays == nil || *item.TTLDays != 720 {
		t.Errorf("ttl days = %v, want 720", item.TTLDays)
	}
	if item.Quote == "" {
		t.Errorf("retention item must carry a supporting quote")
	}
	if item.SourceType != model.SourcePolicyText {
		t.Errorf("source type = %q", item.SourceType)
	}

	// A cue without personal-data context does not qualify.
	sig = extract(t, "We retain the right to update these terms for 30 days.")
	if len(sig.Retention) != 0 {
		t.Errorf("expected no retention items, got %+v", sig.Retention)
	}
}

func TestRetentionPhraseWithoutNumber(t *testing.T) {
	sig := extract(t, "Customer data is stored until account deletion. We keep order records as required by law.")
	if len(sig.Retention) != 2 {
		t.Fatalf("expected 2 retention items, got %d", len(sig.Retention))
	}
	if sig.Retention[0].TTLDays != nil {
		t.Errorf("phrase-only retention must have nil ttl, got %d", *sig.Retention[0].TTLDays)
	}
	if sig.Retention[0].DurationText != "until account deletion" {
		t.Errorf("duration text = %q", sig.Retention[0].DurationText)
	}
	if sig.Retention[1].DurationText != "as required by law" {
		t.Errorf("duration text = %q", sig.Retention[1].DurationText)
	}
}

func TestRightsAndContact(t *testing.T) {
	sig := extract(t, "You have the right to lodge a complaint.")
	if !sig.RightsListed {
		t.Errorf("expected rights via fixed phrase")
	}

	sig = extract(t, "Data subjects have rights of access and erasure under applicable law.")
	if !sig.RightsListed {
		t.Errorf("expected rights via anchor + named right")
	}

	sig = extract(t, "All rights reserved.")
	if sig.RightsListed {
		t.Errorf("bare rights mention should not count")
	}

	// Named-rights terms only count as whole words after the anchor;
	// "objectives" must not fire the "object" term.
	sig = extract(t, "We reserve rights in line with our business objectives.")
	if sig.RightsListed {
		t.Errorf("substring of a longer word should not count as a named right")
	}
	sig = extract(t, "You have rights to object to processing.")
	if !sig.RightsListed {
		t.Errorf("expected rights via whole-word named right")
	}

	sig = extract(t, "Questions? Write to privacy@example.com any time.")
	if !sig.ContactListed {
		t.Errorf("expected contact via email token")
	}
	sig = extract(t, "Our Data Protection Officer reviews all requests.")
	if !sig.ContactListed {
		t.Errorf("expected contact via DPO phrase")
	}
	sig = extract(t, "No way to reach anyone here.")
	if sig.ContactListed {
		t.Errorf("unexpected contact signal")
	}
}

func TestConsentUnclearWhenCMPWithoutRejectAll(t *testing.T) {
	sig := extract(t, "This site uses OneTrust to manage cookie preferences by category.")
	if sig.Consent.CMPName != "OneTrust" {
		t.Errorf("cmp name = %q", sig.Consent.CMPName)
	}
	if !sig.Consent.GranularControls {
		t.Errorf("expected granular controls")
	}
	if sig.Consent.RejectAllAvailable != model.TriUnclear {
		t.Errorf("reject-all = %q, want unclear", sig.Consent.RejectAllAvailable)
	}
}

func TestConsentExplicitRejectAll(t *testing.T) {
	sig := extract(t, "Powered by Cookiebot. Click Reject All to refuse non-essential cookies.")
	if sig.Consent.RejectAllAvailable != model.TriTrue {
		t.Errorf("reject-all = %q, want true", sig.Consent.RejectAllAvailable)
	}
}

func TestConsentNoCMPNoReject(t *testing.T) {
	sig := extract(t, "We use cookies.")
	if sig.Consent.CMPName != "" {
		t.Errorf("cmp name = %q, want empty", sig.Consent.CMPName)
	}
	if sig.Consent.RejectAllAvailable != model.TriFalse {
		t.Errorf("reject-all = %q, want false", sig.Consent.RejectAllAvailable)
	}
}

func TestReadabilityClasses(t *testing.T) {
	plain := "We use cookies. You can turn them off. We explain how. It is easy. Ask us anything."
	if got := extract(t, plain).Readability; got != model.ReadabilityPlain {
		t.Errorf("plain text classified as %q", got)
	}

	legalese := "Notwithstanding the foregoing, the data subject shall hereby be deemed, pursuant to the provisions set forth therein, to have consented thereof."
	if got := extract(t, legalese).Readability; got != model.ReadabilityLegalese {
		t.Errorf("legalese text classified as %q", got)
	}

	long := strings.Repeat("word ", 22) + "end."
	if got := extract(t, long).Readability; got != model.ReadabilityModerate {
		t.Errorf("long-sentence text classified as %q", got)
	}
}

func TestLastUpdatedOnlyInHead(t *testing.T) {
	head := "Privacy Policy. Last updated: March 2024. We care about privacy."
	if !extract(t, head).LastUpdatedPresent {
		t.Errorf("expected last-updated signal in head")
	}

	// The notice appears past the head window, so it is not picked up.
	tail := strings.Repeat("filler text about cookies and privacy practices ", 120) +
		" This policy was updated on 2024-03-01."
	if extract(t, tail).LastUpdatedPresent {
		t.Errorf("did not expect last-updated signal outside the head window")
	}

	if extract(t, "Our effective measures protect you.").LastUpdatedPresent {
		t.Errorf("keyword without date should not count")
	}
}
