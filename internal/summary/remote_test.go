package summary_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"privyscope/internal/interfaces"
	"privyscope/internal/model"
	"privyscope/internal/summary"
)

func chatReply(t *testing.T, content string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		body := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(body)
	}
}

func newRemote(t *testing.T, srv *httptest.Server) *summary.RemoteSummarizer {
	t.Helper()
	return summary.NewRemote(summary.RemoteConfig{
		BaseURL: srv.URL,
		Model:   "test-model",
		Timeout: 2 * time.Second,
	}, interfaces.NewTestLogger(false))
}

func TestRemoteSummarizeAcceptsValidReply(t *testing.T) {
	content := `{"clarity": 82, "safety": 64, "verdict": "CAUTION", "bullets": ["b1", "b2"], "advice": "be careful"}`
	srv := httptest.NewServer(chatReply(t, content))
	defer srv.Close()

	got, err := newRemote(t, srv).Summarize(context.Background(), model.AugmentRequest{})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if got.Clarity != 82 || got.Safety != 64 || got.Verdict != "CAUTION" {
		t.Errorf("unexpected reply %+v", got)
	}
}

func TestRemoteSummarizeRejectsBadReplies(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"clarity out of range", `{"clarity": 140, "safety": 50, "verdict": "CAUTION", "bullets": ["b"], "advice": "a"}`},
		{"unknown verdict", `{"clarity": 50, "safety": 50, "verdict": "MEH", "bullets": ["b"], "advice": "a"}`},
		{"no bullets", `{"clarity": 50, "safety": 50, "verdict": "CAUTION", "bullets": [], "advice": "a"}`},
		{"empty advice", `{"clarity": 50, "safety": 50, "verdict": "CAUTION", "bullets": ["b"], "advice": ""}`},
		{"not json", `sure! here is your summary:`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(chatReply(t, tc.content))
			defer srv.Close()
			if _, err := newRemote(t, srv).Summarize(context.Background(), model.AugmentRequest{}); err == nil {
				t.Errorf("expected error for %s", tc.name)
			}
		})
	}
}

func TestRemoteSummarizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := newRemote(t, srv).Summarize(context.Background(), model.AugmentRequest{}); err == nil {
		t.Fatalf("expected error on HTTP 502")
	}
}

func TestApplyClampsAndBounds(t *testing.T) {
	base := summary.Compose(model.ScoreResult{Level: model.VerdictLikelyOK}, summary.Inputs{})

	resp := model.AugmentResponse{
		Clarity: 85,
		Safety:  30,
		Verdict: "AVOID",
		Bullets: []string{"b1", "b2", "b3", "b4", "b5"},
		Advice:  "leave now",
		Reasons: []string{"tracking everywhere"},
	}

	got := summary.Apply(base, resp)

	if len(got.Bullets) != 3 {
		t.Errorf("bullets = %d, want bounded to 3", len(got.Bullets))
	}
	if got.Advice != "leave now" {
		t.Errorf("advice = %q", got.Advice)
	}
	if got.Score.Level != model.VerdictHighRisk {
		t.Errorf("level = %q, want AVOID normalized to HIGH_RISK", got.Score.Level)
	}
	if got.Score.Clarity == nil || *got.Score.Clarity != 85 {
		t.Errorf("clarity = %v", got.Score.Clarity)
	}
	if got.Score.Safety == nil || *got.Score.Safety != 30 {
		t.Errorf("safety = %v", got.Score.Safety)
	}
	if len(got.Score.Reasons) != 1 || got.Score.Reasons[0] != "tracking everywhere" {
		t.Errorf("reasons = %v", got.Score.Reasons)
	}
}
