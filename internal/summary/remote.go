package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"privyscope/internal/interfaces"
	"privyscope/internal/model"
)

// Summarizer is the optional remote collaborator that rewrites the TL;DR.
// Callers must treat its absence or failure as a handled state.
type Summarizer interface {
	Summarize(ctx context.Context, req model.AugmentRequest) (model.AugmentResponse, error)
}

const systemPrompt = `You write a friendly TL;DR about privacy and cookies.
Return valid JSON: {"clarity": number, "safety": number, "verdict": "LIKELY_OK"|"CAUTION"|"HIGH_RISK", "bullets": string[], "advice": string, "reasons": string[]}.
Keep bullets plain and compare to typical norms (short/typical/long). Avoid jargon.`

// RemoteConfig configures the chat-completions call. BaseURL points at any
// OpenAI-compatible endpoint; Timeout caps the whole round trip.
type RemoteConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// RemoteSummarizer calls an OpenAI-compatible chat-completions endpoint and
// strictly validates the reply. Derived signals only go over the wire, never
// raw policy text.
type RemoteSummarizer struct {
	cfg    RemoteConfig
	client *http.Client
	logger interfaces.Logger
}

func NewRemote(cfg RemoteConfig, logger interfaces.Logger) *RemoteSummarizer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &RemoteSummarizer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(interfaces.Field{Key: "component", Value: "remote-summarizer"}),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat responseFmt   `json:"response_format"`
	Messages       []chatMessage `json:"messages"`
}

type responseFmt struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (r *RemoteSummarizer) Summarize(ctx context.Context, req model.AugmentRequest) (model.AugmentResponse, error) {
	var out model.AugmentResponse

	payload, err := json.Marshal(req)
	if err != nil {
		return out, fmt.Errorf("marshal augment request: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model:          r.cfg.Model,
		Temperature:    0.2,
		ResponseFormat: responseFmt{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(payload)},
		},
	})
	if err != nil {
		return out, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if r.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return out, fmt.Errorf("summarizer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("summarizer returned HTTP %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return out, fmt.Errorf("decode chat response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return out, fmt.Errorf("summarizer returned no choices")
	}

	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &out); err != nil {
		return out, fmt.Errorf("parse summarizer content: %w", err)
	}
	if err := out.Validate(); err != nil {
		return out, fmt.Errorf("summarizer reply rejected: %w", err)
	}

	r.logger.Debug("remote summary accepted",
		interfaces.Field{Key: "verdict", Value: out.Verdict},
		interfaces.Field{Key: "bullets", Value: len(out.Bullets)})
	return out, nil
}

// Apply merges a validated remote reply onto the deterministic summary.
// Scores are clamped to 0..100, bullets bounded to three, and the verdict
// normalized; the original summary is the template the reply refines.
func Apply(sum model.Summary, resp model.AugmentResponse) model.Summary {
	clarity := clamp(resp.Clarity)
	safety := clamp(resp.Safety)
	sum.Score.Clarity = &clarity
	sum.Score.Safety = &safety

	if v, err := model.NormalizeVerdict(resp.Verdict); err == nil {
		sum.Score.Level = v
	}
	if len(resp.Reasons) > 0 {
		sum.Score.Reasons = resp.Reasons
	}

	bullets := resp.Bullets
	if len(bullets) > 3 {
		bullets = bullets[:3]
	}
	sum.Bullets = bullets
	sum.Advice = resp.Advice
	return sum
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
