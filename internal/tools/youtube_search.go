package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const youtubeBaseURL = "https://www.youtube.com"

var videoIDRe = regexp.MustCompile(`"videoId":"([A-Za-z0-9_-]{11})"`)

// YouTubeSearch scrapes the public results page; it needs no credentials.
type YouTubeSearch struct {
	maxResults int
	baseURL    string
}

func NewYouTubeSearch(maxResults int) *YouTubeSearch {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &YouTubeSearch{maxResults: maxResults, baseURL: youtubeBaseURL}
}

func (y *YouTubeSearch) WithBaseURL(u string) *YouTubeSearch {
	y.baseURL = u
	return y
}

func (y *YouTubeSearch) Name() string { return "YouTube Search" }

func (y *YouTubeSearch) Description() string {
	return "Search YouTube for videos and tutorials. Returns watch URLs."
}

func (y *YouTubeSearch) Run(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("search query cannot be empty")
	}

	resp, err := newHTTPClient(y.baseURL).R().
		SetContext(ctx).
		SetQueryParam("search_query", query).
		Get("/results")
	if err != nil {
		return "", fmt.Errorf("failed to fetch YouTube results: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("HTTP error %d when fetching YouTube results", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	ids := y.videoIDs(doc)
	if len(ids) == 0 {
		return "No videos found on YouTube.", nil
	}
	urls := make([]string, len(ids))
	for i, id := range ids {
		urls[i] = y.baseURL + "/watch?v=" + id
	}
	return strings.Join(urls, "\n"), nil
}

// videoIDs reads the ytInitialData payload embedded in a script tag.
func (y *YouTubeSearch) videoIDs(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var ids []string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, "ytInitialData") {
			return true
		}
		for _, m := range videoIDRe.FindAllStringSubmatch(text, -1) {
			if seen[m[1]] {
				continue
			}
			seen[m[1]] = true
			ids = append(ids, m[1])
			if len(ids) == y.maxResults {
				return false
			}
		}
		return true
	})
	return ids
}
