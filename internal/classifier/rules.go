package classifier

import (
	"bytes"
	"strings"

	"envprobe/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// RuleClassifier inspects a fetch result and emits typed discoveries
// for API documentation surfaces, hidden SPA routes, live environment
// permutations and sensitive config paths. A single response may yield
// several variants; all applicable ones are emitted.
type RuleClassifier struct {
	logger zerolog.Logger
}

// NewRuleClassifier creates the built-in response classifier.
func NewRuleClassifier(log zerolog.Logger) *RuleClassifier {
	return &RuleClassifier{
		logger: log.With().Str("component", "RuleClassifier").Logger(),
	}
}

// Name implements Scanner.
func (rc *RuleClassifier) Name() string { return "rules" }

// Scan implements Scanner. Failed fetches and 404s yield nothing; the
// scheduler still counts them in run statistics.
func (rc *RuleClassifier) Scan(cand models.Candidate, res *models.FetchResult) []models.Discovery {
	if res.Failed() || res.StatusCode == 404 {
		return nil
	}

	var discoveries []models.Discovery
	status := res.StatusCode
	path := effectivePath(cand.Path)
	url := cand.URL()

	if status >= 200 && status < 400 && cand.Permuted {
		discoveries = append(discoveries, models.Discovery{
			Type:       models.EnvironmentHit,
			SourceURL:  url,
			Value:      url,
			StatusCode: status,
			Detail:     extractTitle(res.Body),
		})
	}

	if rc.isAPIDoc(path, status, res) {
		discoveries = append(discoveries, models.Discovery{
			Type:       models.ApiDocHit,
			SourceURL:  url,
			Value:      url,
			StatusCode: status,
		})
	}

	if status == 200 && matchesSensitivePath(path) {
		discoveries = append(discoveries, models.Discovery{
			Type:       models.ConfigPathHit,
			SourceURL:  url,
			Value:      url,
			StatusCode: status,
		})
	}

	discoveries = append(discoveries, rc.spaRoutes(cand, res)...)

	return discoveries
}

// isAPIDoc reports whether the response looks like an API-documentation
// surface: a known doc suffix answering 200/401/403, or a body carrying
// a swagger/openapi/GraphQL signature.
func (rc *RuleClassifier) isAPIDoc(path string, status int, res *models.FetchResult) bool {
	if matchesAPIDocSuffix(path) && (status == 200 || status == 401 || status == 403) {
		return true
	}
	if status != 200 || len(res.Body) == 0 {
		return false
	}
	ctype := res.ContentType()
	if strings.Contains(ctype, "json") && apiDocBodyRegex.Match(res.Body) {
		return true
	}
	return graphqlBodyRegex.Match(res.Body)
}

// spaRoutes extracts same-origin anchor and script references carrying
// #/-style hash routes from HTML bodies. Route-level deduplication per
// target is left to the dedup store, keeping this scan pure.
func (rc *RuleClassifier) spaRoutes(cand models.Candidate, res *models.FetchResult) []models.Discovery {
	if !looksLikeHTML(res) {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		rc.logger.Debug().Err(err).Str("url", cand.URL()).Msg("Failed to parse HTML for SPA route extraction")
		return nil
	}

	var discoveries []models.Discovery
	seen := make(map[string]struct{})
	origin := cand.Scheme + "://" + cand.Host

	doc.Find("a[href], script[src]").Each(func(_ int, s *goquery.Selection) {
		ref, ok := s.Attr("href")
		if !ok {
			ref, _ = s.Attr("src")
		}
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return
		}
		// Absolute references must stay on the candidate origin.
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			if !strings.HasPrefix(ref, origin+"/") && ref != origin {
				return
			}
			ref = strings.TrimPrefix(strings.TrimPrefix(ref, origin), "/")
		}
		if !hashRouteRegex.MatchString(ref) && !strings.HasPrefix(ref, "#/") {
			return
		}
		route := origin + "/" + strings.TrimLeft(ref, "/")
		if _, dup := seen[route]; dup {
			return
		}
		seen[route] = struct{}{}
		discoveries = append(discoveries, models.Discovery{
			Type:       models.SpaRouteHit,
			SourceURL:  cand.URL(),
			Value:      route,
			StatusCode: res.StatusCode,
		})
	})

	return discoveries
}

func looksLikeHTML(res *models.FetchResult) bool {
	ctype := res.ContentType()
	if strings.Contains(ctype, "text/html") || strings.Contains(ctype, "xhtml+xml") {
		return true
	}
	return bytes.Contains(res.Body, []byte("<script"))
}

// extractTitle pulls the page <title> for discovery detail, collapsing
// newlines the way the output format expects.
func extractTitle(body []byte) string {
	m := titleRegex.FindSubmatch(body)
	if m == nil {
		return ""
	}
	title := strings.TrimSpace(string(m[1]))
	return strings.Join(strings.Fields(title), " ")
}
