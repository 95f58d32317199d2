// Package store persists sites, fetched policy snapshots and completed
// analyses in SQLite. Policy snapshots are diffed against the previous one
// per site so wording changes are auditable over time.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"privyscope/internal/interfaces"
	"privyscope/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

var ErrSiteNotFound = errors.New("site not found")

// Config locates the database. An empty Path selects an in-memory database,
// used by tests and the stateless deployment mode.
type Config struct {
	Path string
}

type Site struct {
	ID        string             `json:"id"`
	Domain    string             `json:"domain"`
	Category  model.SiteCategory `json:"category"`
	CreatedAt time.Time          `json:"created_at"`
}

type PolicyRecord struct {
	ID        string    `json:"id"`
	SiteID    string    `json:"site_id"`
	URL       string    `json:"url"`
	Text      string    `json:"text"`
	TextHash  string    `json:"text_hash"`
	DiffJSON  string    `json:"diff_json,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

type AnalysisRecord struct {
	ID        string               `json:"id"`
	SiteID    string               `json:"site_id"`
	PageURL   string               `json:"page_url"`
	Strategy  string               `json:"strategy"`
	Points    int                  `json:"points"`
	Level     model.Verdict        `json:"level"`
	Result    model.AnalysisResult `json:"result"`
	CreatedAt time.Time            `json:"created_at"`
}

type Store struct {
	db     *sql.DB
	logger interfaces.Logger
}

func New(cfg Config, logger interfaces.Logger) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	componentLogger := logger.With(interfaces.Field{Key: "component", Value: "store"})
	componentLogger.Info("store initialized", interfaces.Field{Key: "path", Value: path})

	return &Store{db: db, logger: componentLogger}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertSite returns the site row for domain, creating it on first sight.
// The category recorded at creation time is kept on later upserts.
func (s *Store) UpsertSite(ctx context.Context, domain string, category model.SiteCategory) (Site, error) {
	if domain == "" {
		return Site{}, errors.New("empty domain")
	}
	if category == "" {
		category = model.CategoryRetail
	}

	site := Site{
		ID:        uuid.NewString(),
		Domain:    domain,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sites (id, domain, category, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(domain) DO NOTHING`,
		site.ID, site.Domain, string(site.Category), site.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Site{}, fmt.Errorf("upsert site: %w", err)
	}
	return s.siteByDomain(ctx, domain)
}

func (s *Store) siteByDomain(ctx context.Context, domain string) (Site, error) {
	var site Site
	var category, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, domain, category, created_at FROM sites WHERE domain = ?`, domain).
		Scan(&site.ID, &site.Domain, &category, &createdAt)
	if err == sql.ErrNoRows {
		return Site{}, fmt.Errorf("%w: %q", ErrSiteNotFound, domain)
	}
	if err != nil {
		return Site{}, fmt.Errorf("query site: %w", err)
	}
	site.Category = model.NormalizeCategory(category)
	site.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return site, nil
}

// ListSites returns all known sites, newest first.
func (s *Store) ListSites(ctx context.Context) ([]Site, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, domain, category, created_at FROM sites ORDER BY rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	sites := []Site{}
	for rows.Next() {
		var site Site
		var category, createdAt string
		if err := rows.Scan(&site.ID, &site.Domain, &category, &createdAt); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		site.Category = model.NormalizeCategory(category)
		site.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// SavePolicy stores a policy snapshot and records the diff against the
// site's previous snapshot; the first snapshot gets an empty diff. Unchanged
// text (same hash as the previous snapshot) returns the existing record
// instead of inserting a duplicate.
func (s *Store) SavePolicy(ctx context.Context, siteID, url, text string) (PolicyRecord, error) {
	prev, err := s.latestPolicy(ctx, siteID)
	if err != nil {
		return PolicyRecord{}, err
	}

	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
	if prev != nil && prev.TextHash == hash {
		return *prev, nil
	}

	rec := PolicyRecord{
		ID:        uuid.NewString(),
		SiteID:    siteID,
		URL:       url,
		Text:      text,
		TextHash:  hash,
		FetchedAt: time.Now().UTC(),
	}
	if prev != nil {
		diff, err := policyDiffJSON(prev.ID, rec.ID, prev.Text, text)
		if err != nil {
			return PolicyRecord{}, err
		}
		rec.DiffJSON = diff
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO policies (id, site_id, url, text, text_hash, diff_json, fetched_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SiteID, rec.URL, rec.Text, rec.TextHash, rec.DiffJSON, rec.FetchedAt.Format(time.RFC3339Nano))
	if err != nil {
		return PolicyRecord{}, fmt.Errorf("insert policy: %w", err)
	}
	return rec, nil
}

func (s *Store) latestPolicy(ctx context.Context, siteID string) (*PolicyRecord, error) {
	var rec PolicyRecord
	var fetchedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, site_id, url, text, text_hash, diff_json, fetched_at FROM policies
		 WHERE site_id = ? ORDER BY rowid DESC LIMIT 1`, siteID).
		Scan(&rec.ID, &rec.SiteID, &rec.URL, &rec.Text, &rec.TextHash, &rec.DiffJSON, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest policy: %w", err)
	}
	rec.FetchedAt, _ = time.Parse(time.RFC3339Nano, fetchedAt)
	return &rec, nil
}

// SaveAnalysis persists a completed analysis under the site's domain.
func (s *Store) SaveAnalysis(ctx context.Context, siteID string, res model.AnalysisResult) (AnalysisRecord, error) {
	resultJSON, err := json.Marshal(res)
	if err != nil {
		return AnalysisRecord{}, fmt.Errorf("marshal result: %w", err)
	}

	rec := AnalysisRecord{
		ID:        uuid.NewString(),
		SiteID:    siteID,
		PageURL:   res.PageURL,
		Strategy:  res.Score.Strategy,
		Points:    res.Score.Points,
		Level:     res.Score.Level,
		Result:    res,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, site_id, page_url, strategy, points, level, result_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SiteID, rec.PageURL, rec.Strategy, rec.Points, string(rec.Level),
		string(resultJSON), rec.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return AnalysisRecord{}, fmt.Errorf("insert analysis: %w", err)
	}
	return rec, nil
}

// ListAnalyses returns a site's analyses, newest first. Verdicts written by
// older versions are normalized on read.
func (s *Store) ListAnalyses(ctx context.Context, domain string) ([]AnalysisRecord, error) {
	site, err := s.siteByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, site_id, page_url, strategy, points, level, result_json, created_at
		 FROM analyses WHERE site_id = ? ORDER BY rowid DESC`, site.ID)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	records := []AnalysisRecord{}
	for rows.Next() {
		var rec AnalysisRecord
		var level, resultJSON, createdAt string
		if err := rows.Scan(&rec.ID, &rec.SiteID, &rec.PageURL, &rec.Strategy, &rec.Points,
			&level, &resultJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}

		verdict, err := model.NormalizeVerdict(level)
		if err != nil {
			s.logger.Warn("skipping analysis with unknown verdict",
				interfaces.Field{Key: "id", Value: rec.ID},
				interfaces.Field{Key: "level", Value: level})
			continue
		}
		rec.Level = verdict

		if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
			return nil, fmt.Errorf("unmarshal analysis %s: %w", rec.ID, err)
		}
		rec.Result.Score.Level = verdict
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}
