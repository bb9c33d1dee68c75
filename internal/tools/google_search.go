package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const googleSearchBaseURL = "https://www.googleapis.com"

// GoogleSearch queries the Google Custom Search JSON API.
type GoogleSearch struct {
	apiKey  string
	cseID   string
	baseURL string
}

func NewGoogleSearch(apiKey, cseID string) *GoogleSearch {
	return &GoogleSearch{apiKey: apiKey, cseID: cseID, baseURL: googleSearchBaseURL}
}

// WithBaseURL points the tool at another host, used by tests.
func (g *GoogleSearch) WithBaseURL(u string) *GoogleSearch {
	g.baseURL = u
	return g
}

func (g *GoogleSearch) Name() string { return "Google Search" }

func (g *GoogleSearch) Description() string {
	return "Search Google for recent results. Use it for current events, news and general web lookups."
}

type googleSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

func (g *GoogleSearch) Run(ctx context.Context, query string) (string, error) {
	if g.apiKey == "" {
		return unavailable(g.Name(), "GOOGLE_API_KEY"), nil
	}
	if g.cseID == "" {
		return unavailable(g.Name(), "GOOGLE_CSE_ID"), nil
	}
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("search query cannot be empty")
	}

	resp, err := newHTTPClient(g.baseURL).R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key": g.apiKey,
			"cx":  g.cseID,
			"q":   query,
			"num": "5",
		}).
		Get("/customsearch/v1")
	if err != nil {
		return "", fmt.Errorf("google search request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("google search API error %d: %s", resp.StatusCode(), resp.String())
	}

	var result googleSearchResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse google search response: %w", err)
	}
	if len(result.Items) == 0 {
		return "No good Google Search result was found.", nil
	}

	var b strings.Builder
	for i, item := range result.Items {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, item.Title, item.Link)
		if s := strings.TrimSpace(item.Snippet); s != "" {
			fmt.Fprintf(&b, "   %s\n", s)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
