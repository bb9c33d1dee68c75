package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLabeledResponse(t *testing.T) {
	raw := "Paraphrased Answer: Be kind.\nSuggested Actions:\n- Listen\nThought: considered tone"

	s := Default().Extract(raw)

	assert.Equal(t, "Be kind.", s.Answer)
	assert.Equal(t, "- considered tone", s.Reasoning)
	assert.Equal(t, []string{NoActions}, s.Actions)
	assert.Empty(t, s.Links)
	assert.False(t, s.Unstructured(raw))
}

func TestExtractUnstructured(t *testing.T) {
	raw := "  no structure here \n"

	s := Default().Extract(raw)

	assert.Equal(t, "no structure here", s.Answer)
	assert.Equal(t, []string{NoActions}, s.Actions)
	assert.Equal(t, NoReasoning, s.Reasoning)
	assert.True(t, s.Unstructured(raw))
}

func TestExtractEmpty(t *testing.T) {
	s := Default().Extract("   ")

	assert.Equal(t, NoAnswer, s.Answer)
	assert.Equal(t, NoReasoning, s.Reasoning)
	assert.False(t, s.Unstructured("   "))
}

func TestExtractTemplateShapedOutput(t *testing.T) {
	raw := `📜 Paraphrased Answer:
Culture eats strategy for breakfast.
Start with empathy.

📀 Suggested Actions:
- Run a listening tour
- See https://news.microsoft.com/ceo

🤖 Agent's Reasoning:
Thought: growth mindset applies
Thought: empathy drives innovation`

	s := Default().Extract(raw)

	assert.Equal(t, "Culture eats strategy for breakfast.\nStart with empathy.", s.Answer)
	assert.Equal(t, "- growth mindset applies\n- empathy drives innovation", s.Reasoning)
	assert.Equal(t, []string{"https://news.microsoft.com/ceo"}, s.Links)
}

func TestExtractAnswerLabelVariants(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"final answer lower case", "final answer - Ship it.\nThought: done", "Ship it."},
		{"bold label", "**Final Answer:** Ship it.\n**Next Steps:** none", "Ship it."},
		{"stops at thought", "Final Answer:\nShip it.\nThought: enough", "Ship it."},
		{"bullets kept", "Paraphrased Answer:\n- one\n- two\nNotes: x", "- one\n- two"},
		{"url lines kept", "Final Answer: read\nhttps://a.example\nSee https://b.example\nNotes: x", "read\nhttps://a.example\nSee https://b.example"},
		{"label without body", "Paraphrased Answer:\nSuggested Actions:\n- x", NoAnswer},
		{"label without body before emoji section", "📜 Paraphrased Answer:\n\n📀 Suggested Actions:\n- x", NoAnswer},
		{"colon phrase after bare label", "📜 Paraphrased Answer:\nHere's my advice:\nLead with empathy and invest in AI.\n\n📀 Suggested Actions:\n- Listen\n\n🤖 Agent's Reasoning:\nThought: growth mindset", "Here's my advice:\nLead with empathy and invest in AI."},
		{"colon sentence after bare label", "Paraphrased Answer:\nMicrosoft: a cloud company.\nSuggested Actions:\n- x", "Microsoft: a cloud company."},
		{"label inside a thought is ignored", "Thought: I now know the final answer\nFinal Answer: X", "X"},
		{"label on its own line keeps the newline", "Final Answer\nShip it.", "Ship it."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Default().Extract(tc.raw).Answer)
		})
	}
}

func TestExtractActionsFromMentions(t *testing.T) {
	raw := "I used Google Search and then GitHub to check."

	s := Default().Extract(raw)

	assert.Equal(t, []string{
		"- Searched Google for related information.",
		"- Looked into GitHub issues or code examples.",
	}, s.Actions)
}

func TestExtractLinksKeepDuplicatesInOrder(t *testing.T) {
	raw := "see http://a.example/x and https://b.example then http://a.example/x"

	s := Default().Extract(raw)

	assert.Equal(t, []string{"http://a.example/x", "https://b.example", "http://a.example/x"}, s.Links)
}

func TestExtractReasoningIsCaseSensitive(t *testing.T) {
	s := Default().Extract("thought: lowercase is not a label")
	assert.Equal(t, NoReasoning, s.Reasoning)
}

func TestCustomLabels(t *testing.T) {
	e := New(Labels{
		Answer:   []string{"Respuesta"},
		Thought:  "Pensamiento:",
		Mentions: []Mention{{Needle: "Wikipedia", Action: "- Consulted Wikipedia."}},
	})

	raw := "Respuesta: Hola.\nPensamiento: saludo\nfrom Wikipedia"
	s := e.Extract(raw)

	assert.Equal(t, "Hola.", s.Answer)
	assert.Equal(t, "- saludo", s.Reasoning)
	assert.Equal(t, []string{"- Consulted Wikipedia."}, s.Actions)
}
