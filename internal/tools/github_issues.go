package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const githubAPIBaseURL = "https://api.github.com"

// GitHubIssuesSearch searches issues and pull requests of one repository.
type GitHubIssuesSearch struct {
	token   string
	repo    string
	baseURL string
}

func NewGitHubIssuesSearch(token, repo string) *GitHubIssuesSearch {
	return &GitHubIssuesSearch{token: token, repo: repo, baseURL: githubAPIBaseURL}
}

func (g *GitHubIssuesSearch) WithBaseURL(u string) *GitHubIssuesSearch {
	g.baseURL = u
	return g
}

func (g *GitHubIssuesSearch) Name() string { return "GitHub Issues Search" }

func (g *GitHubIssuesSearch) Description() string {
	desc := "Search GitHub issues for bug reports, discussions and code examples."
	if g.repo != "" {
		desc += " Results are limited to " + g.repo + "."
	}
	return desc
}

type githubSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		HTMLURL string `json:"html_url"`
	} `json:"items"`
}

func (g *GitHubIssuesSearch) Run(ctx context.Context, query string) (string, error) {
	if g.token == "" {
		return unavailable(g.Name(), "GITHUB_TOKEN"), nil
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return "", fmt.Errorf("search query cannot be empty")
	}
	if g.repo != "" {
		q += " repo:" + g.repo
	}

	resp, err := newHTTPClient(g.baseURL).R().
		SetContext(ctx).
		SetAuthToken(g.token).
		SetHeader("Accept", "application/vnd.github+json").
		SetQueryParams(map[string]string{
			"q":        q,
			"per_page": "3",
		}).
		Get("/search/issues")
	if err != nil {
		return "", fmt.Errorf("github search request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("github API error %d: %s", resp.StatusCode(), resp.String())
	}

	var result githubSearchResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse github response: %w", err)
	}
	if len(result.Items) == 0 {
		return "No relevant issues found on GitHub.", nil
	}

	items := result.Items
	if len(items) > 3 {
		items = items[:3]
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s: %s", item.Title, item.HTMLURL))
	}
	return strings.Join(lines, "\n"), nil
}
