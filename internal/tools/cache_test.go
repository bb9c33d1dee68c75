package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/CortexChat/config"
)

type countingTool struct {
	calls int
	err   error
	text  string
}

func (c *countingTool) Name() string        { return "Counting Search" }
func (c *countingTool) Description() string { return "counts calls" }
func (c *countingTool) Run(_ context.Context, query string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	if c.text != "" {
		return c.text, nil
	}
	return "result for " + query, nil
}

func TestCachedToolReusesResults(t *testing.T) {
	inner := &countingTool{}
	cached := WithCache(inner, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cached.now = func() time.Time { return now }
	ctx := context.Background()

	out, err := cached.Run(ctx, "Go  generics")
	require.NoError(t, err)
	assert.Equal(t, "result for Go  generics", out)

	out, err = cached.Run(ctx, "go generics")
	require.NoError(t, err)
	assert.Equal(t, "result for Go  generics", out)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "Counting Search", cached.Name())

	now = now.Add(2 * time.Minute)
	_, err = cached.Run(ctx, "go generics")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedToolSkipsErrors(t *testing.T) {
	inner := &countingTool{err: errors.New("quota exceeded")}
	cached := WithCache(inner, time.Minute)

	for range 2 {
		_, err := cached.Run(context.Background(), "q")
		require.Error(t, err)
	}
	assert.Equal(t, 2, inner.calls)
}

func TestCachedToolSkipsUnavailableNotices(t *testing.T) {
	inner := &countingTool{text: unavailable("Counting Search", "COUNTING_TOKEN")}
	cached := WithCache(inner, time.Minute)

	for range 2 {
		out, err := cached.Run(context.Background(), "q")
		require.NoError(t, err)
		assert.Equal(t, "Counting Search is unavailable: missing COUNTING_TOKEN.", out)
	}
	assert.Equal(t, 2, inner.calls)

	inner.text = ""
	out, err := cached.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "result for q", out)
}

func TestNewSearchToolsCaching(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	ts := NewSearchTools(cfg)
	require.Len(t, ts, 3)
	assert.IsType(t, &CachedTool{}, ts[0])
	assert.Equal(t, "Google Search", ts[0].Name())

	cfg.SearchCacheTTLSeconds = 0
	ts = NewSearchTools(cfg)
	assert.Equal(t, []string{"Google Search", "YouTube Search", "GitHub Issues Search"},
		[]string{ts[0].Name(), ts[1].Name(), ts[2].Name()})
	_, cachedFirst := ts[0].(*CachedTool)
	assert.False(t, cachedFirst)
}
