package wikipedia

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/soyeahso/toolchat/internal/version"
)

// DefaultEndpoint is the MediaWiki Action API template; {lang} is replaced
// per request.
const DefaultEndpoint = "https://{lang}.wikipedia.org/w/api.php"

// ErrPageNotFound is returned when no article matches the query.
var ErrPageNotFound = errors.New("page not found")

// DisambiguationError is returned when the query resolves to a
// disambiguation page.
type DisambiguationError struct {
	Title   string
	Options []string
}

func (e *DisambiguationError) Error() string {
	return fmt.Sprintf("%q may refer to: %s", e.Title, strings.Join(e.Options, ", "))
}

// Page is a resolved article with its intro extract.
type Page struct {
	PageID  int64
	Title   string
	Extract string
	URL     string
}

// Client fetches article summaries. lang selects the wiki for this call only.
type Client interface {
	Summary(ctx context.Context, lang, query string, sentences int) (*Page, error)
}

// APIClient talks to the MediaWiki Action API.
type APIClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewAPIClient creates a MediaWiki client. endpoint may contain {lang};
// empty means DefaultEndpoint.
func NewAPIClient(endpoint string) *APIClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &APIClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Summary resolves query to an article and returns its first sentences.
// An exact title (after redirects) wins; otherwise the top search hit is
// used, the way a reader typing into the search box would land.
func (c *APIClient) Summary(ctx context.Context, lang, query string, sentences int) (*Page, error) {
	page, err := c.summaryByTitle(ctx, lang, query, sentences)
	if !errors.Is(err, ErrPageNotFound) {
		return page, err
	}

	hit, serr := c.search(ctx, lang, query)
	if serr != nil {
		return nil, serr
	}
	if hit == "" || strings.EqualFold(hit, query) {
		return nil, err
	}
	return c.summaryByTitle(ctx, lang, hit, sentences)
}

func (c *APIClient) summaryByTitle(ctx context.Context, lang, title string, sentences int) (*Page, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	q.Set("redirects", "1")
	q.Set("prop", "extracts|info|pageprops")
	q.Set("exintro", "1")
	q.Set("explaintext", "1")
	q.Set("exsentences", strconv.Itoa(sentences))
	q.Set("inprop", "url")
	q.Set("ppprop", "disambiguation")
	q.Set("titles", title)

	body, err := c.get(ctx, lang, q)
	if err != nil {
		return nil, err
	}

	pages := gjson.GetBytes(body, "query.pages").Array()
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrPageNotFound, title)
	}
	p := pages[0]
	if p.Get("missing").Bool() || p.Get("invalid").Bool() {
		return nil, fmt.Errorf("%w: %q", ErrPageNotFound, title)
	}

	resolved := p.Get("title").String()
	if p.Get("pageprops.disambiguation").Exists() {
		options, err := c.links(ctx, lang, resolved)
		if err != nil {
			return nil, err
		}
		return nil, &DisambiguationError{Title: resolved, Options: options}
	}

	return &Page{
		PageID:  p.Get("pageid").Int(),
		Title:   resolved,
		Extract: strings.TrimSpace(p.Get("extract").String()),
		URL:     p.Get("fullurl").String(),
	}, nil
}

// links lists the article links of a disambiguation page in the order they
// appear on the page. prop=links on action=query would sort them by title.
func (c *APIClient) links(ctx context.Context, lang, title string) ([]string, error) {
	q := url.Values{}
	q.Set("action", "parse")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	q.Set("prop", "links")
	q.Set("redirects", "1")
	q.Set("page", title)

	body, err := c.get(ctx, lang, q)
	if err != nil {
		return nil, err
	}

	var options []string
	gjson.GetBytes(body, "parse.links.#(ns==0)#.title").ForEach(func(_, v gjson.Result) bool {
		options = append(options, v.String())
		return true
	})
	return options, nil
}

// search returns the title of the best full-text match, or "".
func (c *APIClient) search(ctx context.Context, lang, query string) (string, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	q.Set("list", "search")
	q.Set("srsearch", query)
	q.Set("srlimit", "1")
	q.Set("srinfo", "suggestion")
	q.Set("srprop", "")

	body, err := c.get(ctx, lang, q)
	if err != nil {
		return "", err
	}
	if s := gjson.GetBytes(body, "query.searchinfo.suggestion").String(); s != "" {
		return s, nil
	}
	return gjson.GetBytes(body, "query.search.0.title").String(), nil
}

func (c *APIClient) get(ctx context.Context, lang string, q url.Values) ([]byte, error) {
	endpoint := strings.ReplaceAll(c.endpoint, "{lang}", lang)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON response from %s", endpoint)
	}
	if e := gjson.GetBytes(body, "error"); e.Exists() {
		return nil, fmt.Errorf("mediawiki: %s: %s", e.Get("code").String(), e.Get("info").String())
	}
	return body, nil
}
