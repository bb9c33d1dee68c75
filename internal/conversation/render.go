package conversation

import (
	"fmt"
	"strings"

	"github.com/dyike/CortexChat/internal/extract"
)

// Render builds the markdown stored as an assistant message. Unstructured output is shown
// verbatim in a fenced block.
func Render(displayName, raw string, s extract.Sections) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Response from **%s**\n\n", displayName)

	if s.Unstructured(raw) {
		fmt.Fprintf(&b, "```markdown\n%s\n```", strings.TrimSpace(raw))
	} else {
		fmt.Fprintf(&b, "**Paraphrased Answer**  \n%s\n\n", s.Answer)
		fmt.Fprintf(&b, "**Suggested Actions**  \n%s\n\n", strings.Join(s.Actions, "\n"))
		fmt.Fprintf(&b, "**🤖 Agent's Reasoning**  \n%s", s.Reasoning)
	}

	if len(s.Links) > 0 {
		b.WriteString("\n\n📎 **Links Referenced:**\n")
		for i, link := range s.Links {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "- [🔗 %s](%s)", link, link)
		}
	}
	return b.String()
}

// RenderToolLog formats a trigger's tool log for display.
func RenderToolLog(log []string) string {
	if len(log) == 0 {
		return "*No tool activity logged.*"
	}
	lines := make([]string, len(log))
	for i, entry := range log {
		lines[i] = "- " + entry
	}
	return strings.Join(lines, "\n")
}
