// Package textsignals scans normalized policy or page text for retention
// clauses, rights and contact disclosures, consent-management vocabulary and
// a rough readability class. Everything here is best-effort pattern matching
// over adversarially inconsistent prose: a signal that is not found is
// reported as absent, never as an error.
package textsignals

import (
	"regexp"
	"strings"

	"privyscope/internal/durations"
	"privyscope/internal/lexicon"
	"privyscope/internal/model"
)

// headWindow bounds how far into the text the last-updated scan looks.
// Update notices live at the top of a policy; matching "effective" deep in
// legal prose produces false positives.
const headWindow = 4000

var (
	segmentRe      = regexp.MustCompile(`[.!?\n]+`)
	durationRe     = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:minute|hour|day|week|month|year)s?\b`)
	untilRe        = regexp.MustCompile(`(?i)until (?:account )?deletion`)
	lawRe          = regexp.MustCompile(`(?i)as required by law`)
	emailRe        = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	dpoRe          = regexp.MustCompile(`(?i)data protection officer|\bDPO\b`)
	rightPhraseRe  = regexp.MustCompile(`(?i)\byou have the right to\b`)
	rightAnchorRe  = regexp.MustCompile(`(?i)\bright(s)?\b`)
	updateKeywordRe = regexp.MustCompile(`(?i)\b(updated|effective|revision|revised|modified)\b`)
	dateTokenRe     = regexp.MustCompile(`(?i)\b(19|20)\d{2}\b|\b\d{1,2}[./-]\d{1,2}[./-]\d{2,4}\b|\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	sentenceEndRe   = regexp.MustCompile(`[.!?]+`)
)

// Signals is everything the extractor finds in one pass over the text.
type Signals struct {
	Retention          []model.RetentionItem
	RightsListed       bool
	ContactListed      bool
	Consent            model.ConsentSignals
	Readability        model.Readability
	LastUpdatedPresent bool
}

// Extractor matches one lexicon's vocabulary against policy text.
type Extractor struct {
	lex          *lexicon.Lexicon
	rightsTermRe *regexp.Regexp
}

func New(lex *lexicon.Lexicon) *Extractor {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Extractor{
		lex:          lex,
		rightsTermRe: wordAlternationRe(lex.RightsTerms),
	}
}

// wordAlternationRe compiles terms into a word-bounded alternation so that
// "object" does not fire inside "objective". Nil when terms is empty.
func wordAlternationRe(terms []string) *regexp.Regexp {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		if t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// Extract runs all text heuristics over text. sourceURL is recorded as
// provenance on retention items.
func (e *Extractor) Extract(text, sourceURL string) Signals {
	sig := Signals{
		Retention:          e.retention(text, sourceURL),
		RightsListed:       e.rights(text),
		ContactListed:      contact(text),
		Consent:            e.consent(text),
		Readability:        e.readability(text),
		LastUpdatedPresent: e.lastUpdated(text),
	}
	return sig
}

// retention collects sentence-like segments that pair a retention cue with a
// personal-data context term. The qualifying duration is the first numeric
// match, or an "until deletion" / "as required by law" phrase; segments with
// neither are skipped entirely.
func (e *Extractor) retention(text, sourceURL string) []model.RetentionItem {
	var items []model.RetentionItem
	for _, seg := range segmentRe.Split(text, -1) {
		if !lexicon.ContainsAny(seg, e.lex.RetentionCues) {
			continue
		}
		if !lexicon.ContainsAny(seg, e.lex.PersonalDataCtx) {
			continue
		}

		durText := durationRe.FindString(seg)
		if durText == "" {
			durText = untilRe.FindString(seg)
		}
		if durText == "" {
			durText = lawRe.FindString(seg)
		}
		if durText == "" {
			continue
		}

		quote := strings.TrimSpace(seg)
		if quote == "" {
			continue
		}

		items = append(items, model.RetentionItem{
			DataCategory: "personal_data",
			DurationText: durText,
			TTLDays:      durations.ToDays(durText),
			Quote:        quote,
			SourceURL:    sourceURL,
			SourceType:   model.SourcePolicyText,
		})
	}
	return items
}

func (e *Extractor) rights(text string) bool {
	if rightPhraseRe.MatchString(text) {
		return true
	}
	// "right(s)" somewhere before a named GDPR-style right in the same text.
	if loc := rightAnchorRe.FindStringIndex(text); loc != nil && e.rightsTermRe != nil {
		return e.rightsTermRe.MatchString(text[loc[1]:])
	}
	return false
}

func contact(text string) bool {
	return emailRe.MatchString(text) || dpoRe.MatchString(text)
}

func (e *Extractor) consent(text string) model.ConsentSignals {
	c := model.ConsentSignals{
		RejectAllAvailable: model.TriFalse,
	}

	for _, vendor := range e.lex.CMPVendors {
		if lexicon.ContainsAny(text, vendor.Aliases) || lexicon.ContainsAny(text, []string{vendor.Name}) {
			c.CMPName = vendor.Name
			break
		}
	}

	c.GranularControls = lexicon.ContainsAny(text, e.lex.GranularTerms)

	if lexicon.ContainsAny(text, e.lex.RejectPhrases) {
		c.RejectAllAvailable = model.TriTrue
	} else if c.CMPName != "" {
		// A CMP is present but we found no explicit reject-all copy;
		// absence of evidence is not evidence of absence.
		c.RejectAllAvailable = model.TriUnclear
	}

	return c
}

// readability classifies by average sentence length and legalese marker
// density.
func (e *Extractor) readability(text string) model.Readability {
	words := len(strings.Fields(text))

	sentences := 0
	for _, s := range sentenceEndRe.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}

	avgLen := 20.0
	if sentences > 0 {
		avgLen = float64(words) / float64(sentences)
	}

	lower := strings.ToLower(text)
	markers := 0
	for _, m := range e.lex.LegaleseMarkers {
		markers += strings.Count(lower, strings.ToLower(m))
	}

	switch {
	case avgLen > 25 || markers >= 3:
		return model.ReadabilityLegalese
	case avgLen > 18 || markers >= 1:
		return model.ReadabilityModerate
	default:
		return model.ReadabilityPlain
	}
}

// lastUpdated looks only at the leading portion of the text for an update or
// effective-date notice, corroborated by a date-shaped token on the same
// line when the keyword alone is ambiguous.
func (e *Extractor) lastUpdated(text string) bool {
	head := text
	if len(head) > headWindow {
		head = head[:headWindow]
	}

	for _, line := range segmentRe.Split(head, -1) {
		if !updateKeywordRe.MatchString(line) {
			continue
		}
		if dateTokenRe.MatchString(line) {
			return true
		}
		if lexicon.ContainsAny(line, e.lex.UpdateCues) {
			return true
		}
	}
	return false
}
