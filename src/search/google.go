package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/stake-plus/claimcheck/src/webclient"
)

const (
	googleEndpoint = "https://www.googleapis.com/customsearch/v1"
	// googleMaxNum is the largest page the Custom Search API serves.
	googleMaxNum = 10
)

// Google queries the Custom Search JSON API.
type Google struct {
	apiKey   string
	cx       string
	endpoint string
	http     *http.Client
}

// NewGoogle builds a Custom Search provider. endpoint may be empty.
func NewGoogle(apiKey, cx, endpoint string, hc *http.Client) *Google {
	if endpoint == "" {
		endpoint = googleEndpoint
	}
	if hc == nil {
		hc = webclient.NewDefault(0)
	}
	return &Google{apiKey: apiKey, cx: cx, endpoint: endpoint, http: hc}
}

func (g *Google) Name() string { return "google" }

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

type googleError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (g *Google) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	num := limit
	if num > googleMaxNum {
		num = googleMaxNum
	}
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.cx)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	status, body, err := webclient.Do(ctx, g.http, req, 0)
	if err != nil {
		return nil, scrubURLError("google", status, body, err)
	}

	var decoded googleResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("google: decode response: %w", err)
	}
	results := make([]Result, 0, len(decoded.Items))
	for _, item := range decoded.Items {
		results = append(results, Result{Title: item.Title, URL: item.Link, Snippet: item.Snippet})
	}
	return results, nil
}

// scrubURLError drops the request URL, which carries the API key, from
// transport errors and summarises non-2xx bodies.
func scrubURLError(provider string, status int, body []byte, err error) error {
	var statusErr *webclient.StatusError
	if errors.As(err, &statusErr) {
		var decoded googleError
		if json.Unmarshal(body, &decoded) == nil && decoded.Error.Message != "" {
			return fmt.Errorf("%s: status %d: %s (%s)", provider, status, decoded.Error.Message, decoded.Error.Status)
		}
		return fmt.Errorf("%s: %w", provider, statusErr)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %s request failed: %w", provider, strings.ToLower(urlErr.Op), urlErr.Err)
	}
	return fmt.Errorf("%s: %w", provider, err)
}
