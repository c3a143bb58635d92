package parser

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Belphemur/PlutoDownloader/internal/config"
	"github.com/Belphemur/PlutoDownloader/internal/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// minTitleLength is the shortest title that still yields a usable file name.
const minTitleLength = 3

// navigationPhrases mark site chrome (menus, footer) rather than episodes.
// Matched as substrings of the lower-cased anchor text.
var navigationPhrases = []string{
	"assista agora",
	"tv ao vivo",
	"sob demanda",
	"suporte",
	"termos",
	"privacidade",
	"procurar",
	"go to pluto",
}

// episodeHrefPattern is a coarse recall-oriented filter tuned to Pluto TV URLs.
// It admits false positives ("ep" matches a lot) and misses episode links without
// any of these tokens.
var episodeHrefPattern = regexp.MustCompile(`(?i)temporada|episodio|season|ep|t\d+e\d+`)

var _ Parser[models.Episode] = (*EpisodeParser)(nil)

// EpisodeParser extracts episodes from the anchors of a catalog page
type EpisodeParser struct {
	baseURL string
}

// NewEpisodeParser creates a parser resolving relative links against baseURL
func NewEpisodeParser(baseURL string) *EpisodeParser {
	return &EpisodeParser{
		baseURL: baseURL,
	}
}

// Extract parses markup and returns its episodes in document order.
// Duplicate anchors produce duplicate episodes.
func Extract(markup, baseURL string) ([]models.Episode, error) {
	return NewEpisodeParser(baseURL).ParseHtml(strings.NewReader(markup))
}

// ParseHtml parses the HTML response and extracts episode information
func (p *EpisodeParser) ParseHtml(body io.Reader) ([]models.Episode, error) {
	logger := config.GetLogger()
	logger.Debug().Str("baseURL", p.baseURL).Msg("Starting HTML parsing for episodes")

	base, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", p.baseURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse HTML document")
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	episodes := []models.Episode{}
	anchors := doc.Find("a[href]")
	anchors.Each(func(i int, link *goquery.Selection) {
		if ep := p.extractEpisodeFromGoquery(link, base); ep != nil {
			episodes = append(episodes, *ep)
			logger.Debug().
				Int("anchor", i).
				Str("title", ep.Title).
				Int("season", ep.Season).
				Int("episode", ep.Number).
				Msg("Extracted episode")
		}
	})

	logger.Info().
		Int("anchors", anchors.Length()).
		Int("episodes", len(episodes)).
		Msg("Completed HTML parsing for episodes")
	return episodes, nil
}

// extractEpisodeFromGoquery turns a single anchor into an episode, or nil when the
// anchor is navigation, does not look like an episode link, or has no usable title.
func (p *EpisodeParser) extractEpisodeFromGoquery(link *goquery.Selection, base *url.URL) *models.Episode {
	logger := config.GetLogger()

	href, exists := link.Attr("href")
	if !exists {
		return nil
	}
	href = strings.TrimSpace(href)

	if phrase, ok := matchNavigationPhrase(strippedText(link)); ok {
		logger.Debug().Str("href", href).Str("phrase", phrase).Msg("Skipping navigation link")
		return nil
	}

	if !episodeHrefPattern.MatchString(href) {
		logger.Debug().Str("href", href).Msg("Skipping link without episode markers")
		return nil
	}

	ref, err := url.Parse(href)
	if err != nil {
		logger.Debug().Err(err).Str("href", href).Msg("Skipping unresolvable link")
		return nil
	}
	absolute := base.ResolveReference(ref).String()

	title, _ := link.Attr("title")
	if title == "" {
		title = strings.TrimSpace(link.Text())
	}
	if utf8.RuneCountInString(title) < minTitleLength {
		logger.Debug().Str("href", absolute).Str("title", title).Msg("Skipping link with short title")
		return nil
	}

	description := ""
	if para := link.Find("p").First(); para.Length() > 0 {
		description = strings.TrimSpace(para.Text())
	}

	thumbnail := ""
	if img := link.Find("img").First(); img.Length() > 0 {
		thumbnail, _ = img.Attr("src")
	}

	season, number := Classify(unescapedURL(absolute))
	ep := models.NewEpisode(title, description, absolute, thumbnail, season, number)
	return &ep
}

// unescapedURL undoes the percent-encoding ResolveReference applies, so "%20"
// does not read as digits next to a season or episode marker.
func unescapedURL(resolved string) string {
	if raw, err := url.PathUnescape(resolved); err == nil {
		return raw
	}
	return resolved
}

// matchNavigationPhrase reports the first navigation phrase contained in text.
func matchNavigationPhrase(text string) (string, bool) {
	lower := cases.Lower(language.Und).String(text)
	for _, phrase := range navigationPhrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// strippedText concatenates every text node under the selection, each trimmed of
// surrounding whitespace, with no separator.
func strippedText(sel *goquery.Selection) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return sb.String()
}
