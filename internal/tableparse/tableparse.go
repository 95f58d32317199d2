// Package tableparse interprets cookie declaration tables. Real-world tables
// are wildly inconsistent — header wording varies, columns appear in any
// order, half the cells are missing — so column meaning is resolved by
// keyword heuristics and anything unresolvable degrades to the raw row text
// instead of failing.
package tableparse

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"privyscope/internal/lexicon"
	"privyscope/internal/model"
	"privyscope/internal/utils"
)

// Cell is one table cell with its text and, when present, the href of the
// first anchor inside it.
type Cell struct {
	Text string
	Href string
}

// Table is a header row plus data rows, as lifted from markup or handed over
// by an external scraper.
type Table struct {
	Headers []string
	Rows    [][]Cell
}

var domainRe = regexp.MustCompile(`(?i)(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}`)

// ExtractTables pulls every <table> out of an HTML document. Header cells
// come from <th> elements, or from the first row when the table has none.
func ExtractTables(html []byte) ([]Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	var tables []Table
	doc.Find("table").Each(func(_ int, tableSel *goquery.Selection) {
		var t Table

		tableSel.Find("th").Each(func(_ int, th *goquery.Selection) {
			t.Headers = append(t.Headers, cleanText(th.Text()))
		})

		tableSel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			if tr.Find("th").Length() > 0 {
				return
			}
			var row []Cell
			tr.Find("td").Each(func(_ int, td *goquery.Selection) {
				cell := Cell{Text: cleanText(td.Text())}
				if href, ok := td.Find("a[href]").First().Attr("href"); ok {
					cell.Href = strings.TrimSpace(href)
				}
				row = append(row, cell)
			})
			if len(row) > 0 {
				row = append([]Cell(nil), row...)
				if len(t.Headers) == 0 {
					// Headerless table: treat the first data row as headers.
					for _, c := range row {
						t.Headers = append(t.Headers, c.Text)
					}
					return
				}
				t.Rows = append(t.Rows, row)
			}
		})

		if len(t.Headers) > 0 || len(t.Rows) > 0 {
			tables = append(tables, t)
		}
	})

	return tables, nil
}

// columns holds resolved header indices; -1 means the column is absent.
type columns struct {
	name     int
	lifespan int
	category int
	provider int
}

func classifyHeaders(headers []string, lex *lexicon.Lexicon) columns {
	cols := columns{name: -1, lifespan: -1, category: -1, provider: -1}
	for i, h := range headers {
		switch {
		case cols.lifespan == -1 && lexicon.ContainsAny(h, lex.HeaderLifespan):
			cols.lifespan = i
		case cols.provider == -1 && lexicon.ContainsAny(h, lex.HeaderProvider):
			cols.provider = i
		case cols.category == -1 && lexicon.ContainsAny(h, lex.HeaderCategory):
			cols.category = i
		case cols.name == -1 && lexicon.ContainsAny(h, lex.HeaderName):
			cols.name = i
		}
	}
	return cols
}

// accepted requires at least one semantically meaningful column; a table
// where nothing resolved is noise, not a cookie declaration.
func (c columns) accepted() bool {
	return c.name != -1 || c.lifespan != -1 || c.provider != -1
}

// ParseTables converts table structures into typed cookie disclosure rows.
// pageHost is the analyzed page's hostname, used for the third-party
// determination; rows whose provider root matches the page root are
// first-party, differing roots are third-party, and rows with no resolvable
// domain stay unknown (nil).
func ParseTables(tables []Table, pageHost string, lex *lexicon.Lexicon) []model.CookieTableRow {
	siteRoot := utils.ApproxSiteRoot(pageHost)

	var out []model.CookieTableRow
	for _, t := range tables {
		cols := classifyHeaders(t.Headers, lex)
		if !cols.accepted() {
			continue
		}

		for _, row := range t.Rows {
			r := model.CookieTableRow{
				CookieName:   cellText(row, cols.name),
				Category:     cellText(row, cols.category),
				LifespanText: cellText(row, cols.lifespan),
				ProviderText: cellText(row, cols.provider),
				RawRowText:   joinRow(row),
			}

			r.ProviderDomain = providerDomain(row, cols.provider)
			if r.ProviderDomain != "" && siteRoot != "" {
				third := utils.ApproxSiteRoot(r.ProviderDomain) != siteRoot
				r.ThirdParty = &third
			}

			out = append(out, r)
		}
	}
	return out
}

// ParseHTML is the one-call form: extract tables from markup and parse them
// against the page's hostname.
func ParseHTML(html []byte, pageURL string, lex *lexicon.Lexicon) ([]model.CookieTableRow, error) {
	tables, err := ExtractTables(html)
	if err != nil {
		return nil, err
	}
	host := ""
	if u, err := utils.NewURLTools(pageURL); err == nil {
		host = u.URL.Hostname()
	}
	return ParseTables(tables, host, lex), nil
}

// providerDomain prefers an anchor href in the provider cell, then a
// domain-shaped token in the cell text.
func providerDomain(row []Cell, providerIdx int) string {
	if providerIdx < 0 || providerIdx >= len(row) {
		return ""
	}
	cell := row[providerIdx]

	if cell.Href != "" {
		if u, err := utils.NewURLTools(cell.Href); err == nil && u.URL.Hostname() != "" {
			return strings.ToLower(u.URL.Hostname())
		}
	}
	if d := domainRe.FindString(cell.Text); d != "" {
		return strings.ToLower(d)
	}
	return ""
}

func cellText(row []Cell, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx].Text
}

func joinRow(row []Cell) string {
	parts := make([]string, 0, len(row))
	for _, c := range row {
		parts = append(parts, c.Text)
	}
	return strings.TrimSpace(strings.Join(parts, " | "))
}

var spaceRe = regexp.MustCompile(`\s+`)

func cleanText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
