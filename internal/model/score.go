package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Verdict is the canonical three-tier risk level.
type Verdict string

const (
	VerdictLikelyOK Verdict = "LIKELY_OK"
	VerdictCaution  Verdict = "CAUTION"
	VerdictHighRisk Verdict = "HIGH_RISK"
)

// NormalizeVerdict maps verdict vocabulary from older records onto the
// canonical enum. The extension-era "AVOID" is the same tier as HIGH_RISK.
func NormalizeVerdict(s string) (Verdict, error) {
	switch s {
	case string(VerdictLikelyOK), string(VerdictCaution), string(VerdictHighRisk):
		return Verdict(s), nil
	case "AVOID":
		return VerdictHighRisk, nil
	default:
		return "", fmt.Errorf("unknown verdict %q", s)
	}
}

// ScoreResult is the scorer output. Points and Reasons are populated by the
// additive points strategy; Clarity and Safety by the two-axis strategy.
// Reasons are ordered by rule-table position so every point traces back to
// the rule that produced it.
type ScoreResult struct {
	Strategy string   `json:"strategy"`
	Version  string   `json:"version"`
	Points   int      `json:"points"`
	Level    Verdict  `json:"level"`
	Reasons  []string `json:"reasons"`
	Clarity  *int     `json:"clarity,omitempty"` // 0..100
	Safety   *int     `json:"safety,omitempty"`  // 0..100
}

// Summary is the bounded plain-language rendering of a score.
type Summary struct {
	Score   ScoreResult `json:"score"`
	Bullets []string    `json:"bullets"` // at most 3
	Advice  string      `json:"advice"`
}

// TriState represents a boolean signal that can also be genuinely unknown.
// It marshals as JSON true/false or the string "unclear" to stay compatible
// with recorded payloads.
type TriState string

const (
	TriTrue    TriState = "true"
	TriFalse   TriState = "false"
	TriUnclear TriState = "unclear"
)

func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case TriTrue:
		return []byte("true"), nil
	case TriFalse, "":
		return []byte("false"), nil
	case TriUnclear:
		return []byte(`"unclear"`), nil
	}
	return nil, fmt.Errorf("invalid tri-state %q", string(t))
}

func (t *TriState) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*t = TriTrue
		return nil
	case "false":
		*t = TriFalse
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tri-state: %w", err)
	}
	switch s {
	case "true", "yes":
		*t = TriTrue
	case "false", "no":
		*t = TriFalse
	case "unclear":
		*t = TriUnclear
	default:
		return fmt.Errorf("invalid tri-state %q", s)
	}
	return nil
}

// AugmentRequest is the payload sent to the optional remote summarizer. It
// carries only derived signals, never raw policy text.
type AugmentRequest struct {
	SiteCategory    SiteCategory      `json:"siteCategory"`
	Disclosures     Disclosures       `json:"disclosures"`
	Consent         ConsentSignals    `json:"consent"`
	ThirdParties    ThirdPartySignals `json:"third_parties"`
	Durations       DurationMetrics   `json:"durations"`
	Metrics         Metrics           `json:"metrics"`
	ReadabilityHint Readability       `json:"readability_hint"`
	ClarityRule     int               `json:"clarity_rule_score"`
	SafetyRule      int               `json:"safety_rule_score"`
}

// AugmentResponse is the strictly validated remote summarizer reply. Unknown
// shapes are rejected rather than defaulted.
type AugmentResponse struct {
	Clarity int      `json:"clarity"`
	Safety  int      `json:"safety"`
	Verdict string   `json:"verdict"`
	Bullets []string `json:"bullets"`
	Advice  string   `json:"advice"`
	Reasons []string `json:"reasons,omitempty"`
}

// Validate rejects responses outside the wire contract: 1..5 bullets,
// non-empty advice, clarity/safety within 0..100 and a known verdict.
func (r *AugmentResponse) Validate() error {
	if r.Clarity < 0 || r.Clarity > 100 {
		return fmt.Errorf("clarity %d out of range", r.Clarity)
	}
	if r.Safety < 0 || r.Safety > 100 {
		return fmt.Errorf("safety %d out of range", r.Safety)
	}
	if _, err := NormalizeVerdict(r.Verdict); err != nil {
		return err
	}
	if len(r.Bullets) < 1 || len(r.Bullets) > 5 {
		return fmt.Errorf("expected 1..5 bullets, got %d", len(r.Bullets))
	}
	for i, b := range r.Bullets {
		if b == "" {
			return fmt.Errorf("bullet %d is empty", i)
		}
	}
	if r.Advice == "" {
		return fmt.Errorf("advice is empty")
	}
	return nil
}
