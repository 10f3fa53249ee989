package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/stake-plus/claimcheck/src/webclient"
	"golang.org/x/net/html"
)

const (
	duckDuckGoEndpoint = "https://html.duckduckgo.com/html/"
	browserUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// DuckDuckGo scrapes the HTML-only DuckDuckGo endpoint. It needs no credentials
// and serves as the degraded search when Google is not configured.
type DuckDuckGo struct {
	endpoint string
	http     *http.Client
}

// NewDuckDuckGo builds the HTML provider. endpoint may be empty.
func NewDuckDuckGo(endpoint string, hc *http.Client) *DuckDuckGo {
	if endpoint == "" {
		endpoint = duckDuckGoEndpoint
	}
	if hc == nil {
		hc = webclient.NewDefault(0)
	}
	return &DuckDuckGo{endpoint: endpoint, http: hc}
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", browserUserAgent)

	status, body, err := webclient.Do(ctx, d.http, req, 0)
	if err != nil {
		return nil, scrubURLError("duckduckgo", status, body, err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: parse html: %w", err)
	}
	return parseDuckDuckGo(doc, limit), nil
}

// parseDuckDuckGo walks div.result blocks in document order.
func parseDuckDuckGo(doc *html.Node, limit int) []Result {
	var results []Result
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if len(results) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "result") && !hasClass(n, "result--ad") {
			if r, ok := extractResult(n); ok {
				results = append(results, r)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return results
}

func extractResult(n *html.Node) (Result, bool) {
	var r Result
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && c.Data == "a" {
			switch {
			case hasClass(c, "result__a") && r.URL == "":
				r.Title = textContent(c)
				r.URL = unwrapRedirect(attr(c, "href"))
			case hasClass(c, "result__snippet") && r.Snippet == "":
				r.Snippet = textContent(c)
			}
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	return r, r.URL != "" && strings.TrimSpace(r.Title) != ""
}

// unwrapRedirect resolves //duckduckgo.com/l/?uddg=<target> links.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
