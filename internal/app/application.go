// Package app wires the acquisition boundary, the deterministic engine and
// the store into one application service, and runs analyses as trackable
// jobs for the API surface.
package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"privyscope/internal/engine"
	"privyscope/internal/interfaces"
	"privyscope/internal/lexicon"
	"privyscope/internal/model"
	"privyscope/internal/policyfetch"
	"privyscope/internal/scorer"
	"privyscope/internal/store"
	"privyscope/internal/summary"
	"privyscope/internal/tableparse"
	"privyscope/internal/webclient"
)

// minFetchedTextLen is the point below which fetched policy text counts as
// too thin and the rendered page text is preferred.
const minFetchedTextLen = 500

// Application owns every long-lived component. The engine stays pure; all
// I/O (acquisition, remote summarizer, persistence) happens here.
type Application struct {
	cfg        *Config
	logger     interfaces.Logger
	lex        *lexicon.Lexicon
	engine     *engine.Engine
	baselines  scorer.Baselines
	wc         webclient.WebClient
	fetcher    *policyfetch.Fetcher
	store      *store.Store
	summarizer summary.Summarizer
}

func NewApplication(cfg *Config, logger interfaces.Logger) (*Application, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	lex, err := lexicon.Load(cfg.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	baselines, err := scorer.LoadBaselines(cfg.BaselinesPath)
	if err != nil {
		return nil, fmt.Errorf("load baselines: %w", err)
	}

	eng, err := engine.New(engine.Config{
		Strategy:  cfg.Strategy,
		Lexicon:   lex,
		Baselines: baselines,
	})
	if err != nil {
		return nil, err
	}

	wc, err := webclient.New(cfg.WebClientCfg, logger)
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.StoreCfg, logger)
	if err != nil {
		wc.Close()
		return nil, err
	}

	a := &Application{
		cfg:       cfg,
		logger:    logger.With(interfaces.Field{Key: "component", Value: "app"}),
		lex:       lex,
		engine:    eng,
		baselines: baselines,
		wc:        wc,
		fetcher:   policyfetch.New(wc, logger),
		store:     st,
	}
	if cfg.SummarizerCfg.Enabled {
		a.summarizer = summary.NewRemote(cfg.SummarizerCfg.Remote, logger)
	}
	return a, nil
}

// Store exposes the persistence layer to the API surface.
func (a *Application) Store() *store.Store { return a.store }

// Baselines exposes the read-only baseline table.
func (a *Application) Baselines() scorer.Baselines { return a.baselines }

func (a *Application) Close() error {
	err := a.wc.Close()
	if cerr := a.store.Close(); err == nil {
		err = cerr
	}
	return err
}

// AnalyzeSnapshot runs the engine over an assembled snapshot, applies the
// optional remote summary and persists the outcome. Persistence failures
// are logged, not fatal; the analysis result is already complete.
func (a *Application) AnalyzeSnapshot(ctx context.Context, in model.AnalysisInput) (model.AnalysisResult, error) {
	res, err := a.engine.Analyze(in)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	if a.summarizer != nil {
		reply, err := a.summarizer.Summarize(ctx, engine.AugmentRequest(res))
		if err != nil {
			if a.cfg.SummarizerCfg.FailClosed {
				return model.AnalysisResult{}, fmt.Errorf("remote summarizer: %w", err)
			}
			a.logger.Warn("remote summarizer unavailable, using deterministic summary",
				interfaces.Field{Key: "error", Value: err.Error()})
		} else {
			res.Summary = summary.Apply(res.Summary, reply)
			res.Score = res.Summary.Score
		}
	}

	a.persist(ctx, in, res)
	return res, nil
}

// AnalyzeURL acquires everything server-side: page HTML, cookie tables,
// policy documents. Each acquisition failure degrades to an absent signal.
func (a *Application) AnalyzeURL(ctx context.Context, pageURL, category string) (model.AnalysisResult, error) {
	resp, err := a.wc.Get(ctx, pageURL)
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("fetch page: %w", err)
	}
	pageHTML := string(resp.Body)

	rows, err := tableparse.ParseHTML(resp.Body, pageURL, a.lex)
	if err != nil {
		a.logger.Warn("cookie table parse failed",
			interfaces.Field{Key: "url", Value: pageURL},
			interfaces.Field{Key: "error", Value: err.Error()})
		rows = nil
	}

	links := policyfetch.FilterSameSite(policyfetch.DiscoverLinks(pageHTML, pageURL), pageURL)
	if len(links) == 0 {
		links = []string{pageURL}
	}
	bundle := a.fetcher.Fetch(ctx, links)

	text := bundle.Text
	if len(text) < minFetchedTextLen {
		if rendered := policyfetch.StripHTML(pageHTML); len(rendered) > len(text) {
			text = rendered
		}
	}

	return a.AnalyzeSnapshot(ctx, model.AnalysisInput{
		PageURL:         pageURL,
		SiteCategory:    category,
		Cookies:         cookieSnapshots(resp),
		PolicyText:      text,
		CookieTableRows: rows,
	})
}

// cookieSnapshots lifts the page response's Set-Cookie headers into the
// input contract, deriving seconds-until-expiry from the fetch time. A
// cookie without Max-Age or Expires stays a session cookie (nil max age).
func cookieSnapshots(resp *webclient.Response) []model.CookieSnapshot {
	parsed := (&http.Response{Header: resp.Headers}).Cookies()
	snaps := make([]model.CookieSnapshot, 0, len(parsed))
	for _, c := range parsed {
		snap := model.CookieSnapshot{
			Name:     c.Name,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
			SameSite: sameSiteOf(c.SameSite),
		}
		switch {
		case c.MaxAge > 0:
			age := int64(c.MaxAge)
			snap.MaxAgeSeconds = &age
			exp := float64(resp.FetchedAt.Unix() + age)
			snap.ExpirationDate = &exp
		case !c.Expires.IsZero():
			exp := float64(c.Expires.Unix())
			snap.ExpirationDate = &exp
			age := c.Expires.Unix() - resp.FetchedAt.Unix()
			if age < 0 {
				age = 0
			}
			snap.MaxAgeSeconds = &age
		}
		snaps = append(snaps, snap)
	}
	return snaps
}

func sameSiteOf(s http.SameSite) model.SameSite {
	switch s {
	case http.SameSiteNoneMode:
		return model.SameSiteNone
	case http.SameSiteLaxMode:
		return model.SameSiteLax
	case http.SameSiteStrictMode:
		return model.SameSiteStrict
	default:
		return model.SameSiteUnspecified
	}
}

func (a *Application) persist(ctx context.Context, in model.AnalysisInput, res model.AnalysisResult) {
	domain := siteDomain(res.PageURL)
	if domain == "" {
		return
	}

	site, err := a.store.UpsertSite(ctx, domain, res.SiteCategory)
	if err != nil {
		a.logger.Warn("persist site failed",
			interfaces.Field{Key: "domain", Value: domain},
			interfaces.Field{Key: "error", Value: err.Error()})
		return
	}
	if in.PolicyText != "" {
		if _, err := a.store.SavePolicy(ctx, site.ID, res.PageURL, in.PolicyText); err != nil {
			a.logger.Warn("persist policy failed",
				interfaces.Field{Key: "domain", Value: domain},
				interfaces.Field{Key: "error", Value: err.Error()})
		}
	}
	if _, err := a.store.SaveAnalysis(ctx, site.ID, res); err != nil {
		a.logger.Warn("persist analysis failed",
			interfaces.Field{Key: "domain", Value: domain},
			interfaces.Field{Key: "error", Value: err.Error()})
	}
}

func siteDomain(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
