package conversation

import (
	"fmt"
	"strings"
)

// Transcript renders the whole conversation as a markdown document.
func Transcript(c *Conversation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Conversation %s\n\n", c.ID)

	for _, m := range c.messages {
		if m.IsUser() {
			fmt.Fprintf(&b, "## Question %d\n\n%s\n\n", m.QuestionID, m.Content)
			continue
		}
		fmt.Fprintf(&b, "%s\n\n", m.Content)
		if log := c.toolLogs[Trigger{QuestionID: m.QuestionID, Persona: m.Persona}]; len(log) > 0 {
			fmt.Fprintf(&b, "<details><summary>Tool activity (%s)</summary>\n\n%s\n\n</details>\n\n", m.Persona, RenderToolLog(log))
		}
	}

	if c.closed {
		b.WriteString("---\n\n*Conversation closed.*\n")
	}
	return b.String()
}
