// Command privyscope starts the disclosure analysis API server.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"privyscope/internal/app"
	"privyscope/internal/logging"
	"privyscope/internal/server"
)

func main() {
	cfg := app.DefaultConfig()

	flag.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "HTTP listen address")
	flag.StringVar(&cfg.Strategy, "strategy", cfg.Strategy, "scoring strategy (points, axes)")
	flag.StringVar(&cfg.LexiconPath, "lexicon", "", "path to a lexicon override file (JSON)")
	flag.StringVar(&cfg.BaselinesPath, "baselines", "", "path to a baselines override file (JSON)")
	flag.StringVar(&cfg.StoreCfg.Path, "db", "", "path to the SQLite database (empty = in-memory)")
	flag.StringVar(&cfg.WebClientCfg.Backend, "backend", cfg.WebClientCfg.Backend, "acquisition backend (nethttp, chromedp)")
	flag.BoolVar(&cfg.WebClientCfg.Headless, "headless", cfg.WebClientCfg.Headless, "run the browser backend headless")
	flag.DurationVar(&cfg.WebClientCfg.Timeout, "fetch-timeout", cfg.WebClientCfg.Timeout, "per-request fetch timeout")

	flag.BoolVar(&cfg.SummarizerCfg.Enabled, "summarizer", false, "enable the remote summarizer")
	flag.BoolVar(&cfg.SummarizerCfg.FailClosed, "summarizer-fail-closed", false, "fail requests when the remote summarizer is unavailable")
	flag.StringVar(&cfg.SummarizerCfg.Remote.BaseURL, "summarizer-url", os.Getenv("SUMMARIZER_URL"), "remote summarizer base URL")
	flag.StringVar(&cfg.SummarizerCfg.Remote.Model, "summarizer-model", os.Getenv("SUMMARIZER_MODEL"), "remote summarizer model name")
	flag.Parse()

	// Never on the command line
	cfg.SummarizerCfg.Remote.APIKey = os.Getenv("SUMMARIZER_API_KEY")
	if cfg.SummarizerCfg.Remote.Timeout == 0 {
		cfg.SummarizerCfg.Remote.Timeout = 30 * time.Second
	}

	logger := logging.NewStdoutLogger("privyscope")

	s, err := server.NewServer(server.Config{
		ListenAddr: cfg.ListenAddr,
		AppConfig:  cfg,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("starting server: %v", err)
	}
	defer s.Close()

	log.Printf("listening on %s", cfg.ListenAddr)
	if err := s.HTTPServer().ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
