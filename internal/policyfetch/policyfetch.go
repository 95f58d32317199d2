// Package policyfetch discovers privacy-policy links on a page and fetches
// their text. Every fetch failure is swallowed per URL so one dead link never
// aborts the batch; the worst case is an empty bundle, which downstream
// treats as an absent disclosure.
package policyfetch

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"privyscope/internal/interfaces"
	"privyscope/internal/utils"
	"privyscope/internal/webclient"
)

// maxPolicyURLs bounds how many candidate documents one analysis fetches.
const maxPolicyURLs = 5

var linkHintRe = regexp.MustCompile(`(?i)privacy|cookie|policy|datenschutz|gdpr|consent`)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Bundle is the fetched policy corpus: the URLs actually taken and their
// normalized text joined with separators.
type Bundle struct {
	URLs []string
	Text string
}

type Fetcher struct {
	wc     webclient.WebClient
	logger interfaces.Logger
}

func New(wc webclient.WebClient, logger interfaces.Logger) *Fetcher {
	return &Fetcher{
		wc:     wc,
		logger: logger.With(interfaces.Field{Key: "component", Value: "policyfetch"}),
	}
}

// DiscoverLinks returns absolute candidate policy URLs found in pageHTML,
// keeping only links whose href or label mentions policy vocabulary.
func DiscoverLinks(pageHTML, pageURL string) []string {
	base, err := utils.NewURLTools(pageURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		label := strings.TrimSpace(sel.Text())
		if !linkHintRe.MatchString(href) && !linkHintRe.MatchString(label) {
			return
		}
		resolved, err := base.ResolveFullURLString(href)
		if err != nil || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})
	return links
}

// FilterSameSite keeps URLs whose approximate registrable root matches the
// page's. Unparseable candidates are dropped.
func FilterSameSite(urls []string, pageURL string) []string {
	base, err := utils.NewURLTools(pageURL)
	if err != nil {
		return nil
	}
	var out []string
	for _, u := range urls {
		same, err := base.SameSiteString(u)
		if err == nil && same {
			out = append(out, u)
		}
	}
	return out
}

// Fetch retrieves up to five candidate URLs, deduplicated on their canonical
// form, and returns their stripped text joined with "---" separators.
func (f *Fetcher) Fetch(ctx context.Context, urls []string) Bundle {
	var bundle Bundle
	var texts []string
	seen := map[string]bool{}

	for _, u := range urls {
		canonical, err := utils.Canonicalize(u, utils.CanonicalizeOptions{
			DropTrackingParams: true,
			StripTrailingSlash: true,
		})
		if err != nil || seen[canonical] {
			continue
		}
		seen[canonical] = true
		if len(bundle.URLs) >= maxPolicyURLs {
			break
		}
		bundle.URLs = append(bundle.URLs, u)

		resp, err := f.wc.Get(ctx, u)
		if err != nil {
			f.logger.Warn("policy fetch failed",
				interfaces.Field{Key: "url", Value: u},
				interfaces.Field{Key: "error", Value: err.Error()})
			continue
		}
		if text := StripHTML(string(resp.Body)); text != "" {
			texts = append(texts, text)
		}
	}

	bundle.Text = strings.Join(texts, "\n\n---\n\n")
	return bundle
}

// StripHTML reduces a document to its visible text: scripts and styles
// removed, tags dropped, whitespace collapsed.
func StripHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(doc.Text(), " "))
}
