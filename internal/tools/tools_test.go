package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolName(t *testing.T) {
	assert.Equal(t, "google_search", ToolName("Google Search"))
	assert.Equal(t, "github_issues_search", ToolName("GitHub Issues Search"))
	assert.Equal(t, "youtube_search", ToolName("  YouTube -- Search!"))
}

func TestMissingCredentials(t *testing.T) {
	ctx := context.Background()

	out, err := NewGoogleSearch("", "cx").Run(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, "Google Search is unavailable: missing GOOGLE_API_KEY.", out)

	out, err = NewGoogleSearch("key", "").Run(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, "Google Search is unavailable: missing GOOGLE_CSE_ID.", out)

	out, err = NewGitHubIssuesSearch("", "a/b").Run(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, "GitHub Issues Search is unavailable: missing GITHUB_TOKEN.", out)
}

func TestGoogleSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customsearch/v1", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("key"))
		assert.Equal(t, "cx", r.URL.Query().Get("cx"))
		assert.Equal(t, "ai news", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"items":[{"title":"AI today","link":"https://x.example/ai","snippet":"big week"}]}`))
	}))
	defer srv.Close()

	out, err := NewGoogleSearch("key", "cx").WithBaseURL(srv.URL).Run(context.Background(), "ai news")
	require.NoError(t, err)
	assert.Equal(t, "1. AI today: https://x.example/ai\n   big week", out)
}

func TestGoogleSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"quota"}`))
	}))
	defer srv.Close()

	_, err := NewGoogleSearch("key", "cx").WithBaseURL(srv.URL).Run(context.Background(), "ai")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestGitHubIssuesSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/issues", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "agent loop repo:langchain-ai/langchain", r.URL.Query().Get("q"))

		type item struct {
			Title   string `json:"title"`
			HTMLURL string `json:"html_url"`
		}
		var items []item
		for i := 1; i <= 4; i++ {
			items = append(items, item{Title: fmt.Sprintf("issue %d", i), HTMLURL: fmt.Sprintf("https://github.com/i/%d", i)})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	}))
	defer srv.Close()

	out, err := NewGitHubIssuesSearch("tok", "langchain-ai/langchain").WithBaseURL(srv.URL).Run(context.Background(), "agent loop")
	require.NoError(t, err)
	assert.Equal(t, "issue 1: https://github.com/i/1\nissue 2: https://github.com/i/2\nissue 3: https://github.com/i/3", out)
}

func TestGitHubIssuesSearchEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	out, err := NewGitHubIssuesSearch("tok", "").WithBaseURL(srv.URL).Run(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Equal(t, "No relevant issues found on GitHub.", out)
}

func TestYouTubeSearch(t *testing.T) {
	page := `<html><body>
<script>var other = {"videoId":"zzzzzzzzzzz"};</script>
<script>var ytInitialData = {"contents":[{"videoId":"aaaaaaaaaaa"},{"videoId":"bbbbbbbbbbb"},{"videoId":"aaaaaaaaaaa"},{"videoId":"ccccccccccc"}]};</script>
</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/results", r.URL.Path)
		assert.Equal(t, "go tutorial", r.URL.Query().Get("search_query"))
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	out, err := NewYouTubeSearch(2).WithBaseURL(srv.URL).Run(context.Background(), "go tutorial")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/watch?v=aaaaaaaaaaa\n"+srv.URL+"/watch?v=bbbbbbbbbbb", out)
}

type stubTool struct {
	out string
	err error
}

func (s stubTool) Name() string        { return "Stub Search" }
func (s stubTool) Description() string { return "stub" }
func (s stubTool) Run(context.Context, string) (string, error) {
	return s.out, s.err
}

func TestAsEinoToolRecordsCalls(t *testing.T) {
	ctx := context.Background()
	rec := &Recorder{}
	ctx = WithRecorder(ctx, rec)

	ok := AsEinoTool(stubTool{out: strings.Repeat("word ", 100)})
	info, err := ok.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "stub_search", info.Name)

	_, err = ok.(tool.InvokableTool).InvokableRun(ctx, `{"query":"first"}`)
	require.NoError(t, err)

	failing := AsEinoTool(stubTool{err: errors.New("boom")})
	out, err := failing.(tool.InvokableTool).InvokableRun(ctx, `{"query":"second"}`)
	require.NoError(t, err, "tool errors are returned as text")
	assert.Contains(t, out, "Stub Search failed: boom")

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.True(t, strings.HasPrefix(entries[0], "Stub Search(first) -> word word"))
	assert.True(t, strings.HasSuffix(entries[0], "..."))
	assert.Equal(t, "Stub Search(second) -> Stub Search failed: boom", entries[1])
}

func TestRecorderFromEmptyContext(t *testing.T) {
	assert.Nil(t, RecorderFrom(context.Background()))
}
