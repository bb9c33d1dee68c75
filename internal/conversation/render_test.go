package conversation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/CortexChat/internal/extract"
)

func TestRenderStructured(t *testing.T) {
	raw := "Paraphrased Answer: Be kind, see https://a.example\nThought: tone matters\nused Google Search"
	got := Render("Generic Assistant", raw, extract.Default().Extract(raw))

	want := "Response from **Generic Assistant**\n\n" +
		"**Paraphrased Answer**  \nBe kind, see https://a.example\n\n" +
		"**Suggested Actions**  \n- Searched Google for related information.\n\n" +
		"**🤖 Agent's Reasoning**  \n- tone matters\n\n" +
		"📎 **Links Referenced:**\n- [🔗 https://a.example](https://a.example)"
	assert.Equal(t, want, got)
}

func TestRenderUnstructuredFallback(t *testing.T) {
	raw := "\njust some text\n"
	got := Render("Twin", raw, extract.Default().Extract(raw))

	assert.Equal(t, "Response from **Twin**\n\n```markdown\njust some text\n```", got)
}

func TestRenderToolLog(t *testing.T) {
	assert.Equal(t, "*No tool activity logged.*", RenderToolLog(nil))
	assert.Equal(t, "- a\n- b", RenderToolLog([]string{"a", "b"}))
}

func TestTranscript(t *testing.T) {
	o := newTestOrchestrator(t, &fakeResponder{})
	c := New("")
	id, _ := o.Submit(c, "What matters?")
	_, _ = o.SelectPersonas(c, id, []string{"generic"})
	o.Drain(context.Background(), c, nil)
	_, _ = o.Submit(c, "done")

	out := Transcript(c)

	require.True(t, strings.HasPrefix(out, "# Conversation "+c.ID))
	assert.Contains(t, out, "## Question 0\n\nWhat matters?")
	assert.Contains(t, out, "Response from **Generic Assistant**")
	assert.Contains(t, out, "- Google Search(What matters?) -> ok")
	assert.True(t, strings.HasSuffix(out, "*Conversation closed.*\n"))
}

func TestNewConversationsAreIndependent(t *testing.T) {
	a, b := New(""), New("")
	assert.NotEqual(t, a.ID, b.ID)

	o := newTestOrchestrator(t, &fakeResponder{})
	_, _ = o.Submit(a, "q")
	assert.Empty(t, b.Messages())
	assert.Equal(t, 0, b.NextQuestionID())
}
