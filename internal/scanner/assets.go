package scanner

import (
	"bytes"
	"net/url"
	"strings"

	"envprobe/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// extractScriptSources pulls external <script src> references from an
// HTML body, resolved against the page URL. Only same-origin http(s)
// results are returned, deduplicated in document order. Third-party
// hosts (CDNs, analytics) never enter the fetch pipeline: every host
// the run touches must stay within the target's scope.
func extractScriptSources(body []byte, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var sources []string
	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok {
			return
		}
		src = strings.TrimSpace(src)
		if src == "" {
			return
		}
		resolved, err := base.Parse(src)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if !strings.EqualFold(resolved.Hostname(), base.Hostname()) {
			return
		}
		u := resolved.String()
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		sources = append(sources, u)
	})
	return sources
}

// looksLikeHTML mirrors the classifier's gate so the scheduler only
// walks script tags on HTML-ish bodies.
func looksLikeHTML(res *models.FetchResult) bool {
	ctype := res.ContentType()
	if strings.Contains(ctype, "text/html") || strings.Contains(ctype, "xhtml+xml") {
		return true
	}
	return bytes.Contains(res.Body, []byte("<script"))
}
