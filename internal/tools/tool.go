package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/go-resty/resty/v2"

	"github.com/dyike/CortexChat/config"
)

const excerptLen = 160

// SearchTool is a named lookup the reasoning loop may call with a free-text query.
type SearchTool interface {
	Name() string
	Description() string
	Run(ctx context.Context, query string) (string, error)
}

// SearchInput is the argument object the model sends when calling a search tool.
type SearchInput struct {
	Query string `json:"query"`
}

// NewSearchTools returns Google Search, YouTube Search and GitHub Issues Search configured from cfg.
// With a positive SearchCacheTTL each tool answers repeated queries from memory.
func NewSearchTools(cfg *config.Config) []SearchTool {
	ts := []SearchTool{
		NewGoogleSearch(cfg.GoogleAPIKey, cfg.GoogleCSEID),
		NewYouTubeSearch(cfg.YouTubeMaxResults),
		NewGitHubIssuesSearch(cfg.GitHubToken, cfg.GitHubRepo),
	}
	if ttl := time.Duration(cfg.SearchCacheTTLSeconds) * time.Second; ttl > 0 {
		for i, t := range ts {
			ts[i] = WithCache(t, ttl)
		}
	}
	return ts
}

// ToolName turns a display name like "GitHub Issues Search" into "github_issues_search".
func ToolName(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// AsEinoTool exposes t to eino agents. Failures are returned to the model as text so the
// loop keeps going, and every call is appended to the Recorder carried by ctx, if any.
func AsEinoTool(t SearchTool) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: ToolName(t.Name()),
			Desc: t.Description(),
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Free-text search query",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input SearchInput) (string, error) {
			out, err := t.Run(ctx, input.Query)
			if err != nil {
				out = fmt.Sprintf("%s failed: %v", t.Name(), err)
			}
			if rec := RecorderFrom(ctx); rec != nil {
				rec.Record(t.Name(), input.Query, out)
			}
			return out, nil
		},
	)
}

func AsEinoTools(ts []SearchTool) []tool.BaseTool {
	out := make([]tool.BaseTool, 0, len(ts))
	for _, t := range ts {
		out = append(out, AsEinoTool(t))
	}
	return out
}

// Recorder collects "<tool>(<query>) -> <excerpt>" entries for one reasoning run.
type Recorder struct {
	mu      sync.Mutex
	entries []string
}

func (r *Recorder) Record(name, query, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, fmt.Sprintf("%s(%s) -> %s", name, query, excerpt(result)))
}

func (r *Recorder) Entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}

type recorderKey struct{}

func WithRecorder(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

func RecorderFrom(ctx context.Context) *Recorder {
	r, _ := ctx.Value(recorderKey{}).(*Recorder)
	return r
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= excerptLen {
		return s
	}
	return string(runes[:excerptLen]) + "..."
}

const unavailableMarker = " is unavailable: missing "

func unavailable(name, credential string) string {
	return fmt.Sprintf("%s%s%s.", name, unavailableMarker, credential)
}

// isUnavailable reports whether text is a missing-credential notice from the named tool.
func isUnavailable(name, text string) bool {
	return strings.HasPrefix(text, name+unavailableMarker)
}

func newHTTPClient(baseURL string) *resty.Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(20 * time.Second)
	client.SetRetryCount(2)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; CortexChat/1.0)")
	return client
}
