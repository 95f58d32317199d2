package app

import (
	"privyscope/internal/scorer"
	"privyscope/internal/store"
	"privyscope/internal/summary"
	"privyscope/internal/webclient"
)

// SummarizerConfig controls the optional remote summarizer. FailClosed
// selects the failure policy: fail the whole request when the remote call
// fails, instead of falling back to the deterministic summary.
type SummarizerConfig struct {
	Enabled    bool
	FailClosed bool
	Remote     summary.RemoteConfig
}

// Config aggregates every component's configuration.
type Config struct {
	ListenAddr string

	// Strategy names the scoring model; empty selects the points model.
	Strategy string

	// Optional JSON overrides for the built-in vocabulary and baselines.
	LexiconPath   string
	BaselinesPath string

	WebClientCfg  webclient.Config
	StoreCfg      store.Config
	SummarizerCfg SummarizerConfig
}

// DefaultConfig returns development defaults: plain HTTP acquisition, an
// in-memory store and no remote summarizer.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:   ":8080",
		Strategy:     scorer.StrategyPoints,
		WebClientCfg: webclient.DefaultConfig(),
		StoreCfg:     store.Config{},
		SummarizerCfg: SummarizerConfig{
			Enabled:    false,
			FailClosed: false,
		},
	}
}
