// Package extract pulls answer, actions, reasoning and links out of free-form model output.
//
// Extraction is best-effort pattern matching over text that follows no grammar. It never
// fails: missing structure degrades to placeholders, and an answer equal to the whole trimmed
// input tells the caller to show the raw text instead of a structured view.
package extract

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	NoAnswer    = "*No answer found.*"
	NoActions   = "*No actions found.*"
	NoReasoning = "*No reasoning found.*"
)

// Mention maps a collaborator name seen in the text to a fixed action bullet.
type Mention struct {
	Needle string
	Action string
}

// Labels are the prompt-template words the extractor looks for.
// Sections name the other headings a template emits; only they (with the
// answer and thought labels) may end an answer right after a bare answer label.
type Labels struct {
	Answer   []string
	Thought  string
	Sections []string
	Mentions []Mention
}

func DefaultLabels() Labels {
	return Labels{
		Answer:   []string{"Paraphrased Answer", "Final Answer"},
		Thought:  "Thought:",
		Sections: []string{"Suggested Actions", "Agent's Reasoning", "Agent’s Reasoning"},
		Mentions: []Mention{
			{Needle: "Google Search", Action: "- Searched Google for related information."},
			{Needle: "YouTube", Action: "- Queried YouTube for relevant tutorials."},
			{Needle: "GitHub", Action: "- Looked into GitHub issues or code examples."},
		},
	}
}

type Sections struct {
	Answer    string
	Actions   []string
	Reasoning string
	Links     []string
}

// Unstructured reports whether the answer fell back to the whole response.
func (s Sections) Unstructured(raw string) bool {
	return s.Answer == strings.TrimSpace(raw)
}

type Extractor struct {
	labels   Labels
	answerRe *regexp.Regexp
}

var (
	linkRe = regexp.MustCompile(`https?://\S+`)
	// A short capitalized phrase ending in a colon, optionally behind markdown
	// emphasis, a heading marker or an emoji. Bullets never count as labels.
	labelLineRe = regexp.MustCompile(`^(?:\*\*|#+\s*)?(?:[^\w\s\-*•#]+\s*)?[A-Z][A-Za-z'’]*(?: [A-Za-z'’]+){0,3}\s*\**\s*:(?:$|[^/])`)
)

func New(labels Labels) *Extractor {
	e := &Extractor{labels: labels}
	if len(labels.Answer) > 0 {
		alts := make([]string, 0, len(labels.Answer))
		for _, l := range labels.Answer {
			if l = strings.TrimSpace(l); l != "" {
				alts = append(alts, regexp.QuoteMeta(l))
			}
		}
		if len(alts) > 0 {
			e.answerRe = regexp.MustCompile(`(?im)^[^\w\n]*(?:` + strings.Join(alts, "|") + `)[ \t]*\**[ \t]*[:\-–]?\**[ \t]*`)
		}
	}
	return e
}

func Default() *Extractor {
	return New(DefaultLabels())
}

func (e *Extractor) Extract(raw string) Sections {
	return Sections{
		Answer:    e.answer(raw),
		Actions:   e.actions(raw),
		Reasoning: e.reasoning(raw),
		Links:     links(raw),
	}
}

func (e *Extractor) answer(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return NoAnswer
	}
	if e.answerRe == nil {
		return trimmed
	}
	loc := e.answerRe.FindStringIndex(raw)
	if loc == nil {
		return trimmed
	}

	lines := strings.Split(raw[loc[1]:], "\n")
	kept := []string{lines[0]}
	// After a bare label the first body line is answer text unless it opens another section.
	bodyStarted := strings.TrimSpace(lines[0]) != ""
	for _, line := range lines[1:] {
		if !bodyStarted && strings.TrimSpace(line) != "" {
			if e.isSectionLabel(line) {
				break
			}
			bodyStarted = true
			kept = append(kept, line)
			continue
		}
		if e.endsAnswer(line) {
			break
		}
		kept = append(kept, line)
	}
	answer := strings.TrimSpace(strings.Join(kept, "\n"))
	if answer == "" {
		return NoAnswer
	}
	return answer
}

func (e *Extractor) endsAnswer(line string) bool {
	l := strings.TrimSpace(line)
	if e.labels.Thought != "" && strings.HasPrefix(l, e.labels.Thought) {
		return true
	}
	return labelLineRe.MatchString(l)
}

// isSectionLabel matches a configured heading, ignoring leading emoji or markdown.
func (e *Extractor) isSectionLabel(line string) bool {
	l := strings.TrimSpace(line)
	if e.labels.Thought != "" && strings.HasPrefix(l, e.labels.Thought) {
		return true
	}
	l = strings.ToLower(strings.TrimLeftFunc(l, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
	labels := append(append([]string{}, e.labels.Answer...), e.labels.Sections...)
	for _, label := range labels {
		label = strings.ToLower(strings.TrimSpace(label))
		if label == "" || !strings.HasPrefix(l, label) {
			continue
		}
		rest := strings.TrimLeft(l[len(label):], " \t*")
		if strings.HasPrefix(rest, ":") {
			return true
		}
	}
	return false
}

func (e *Extractor) actions(raw string) []string {
	var out []string
	for _, m := range e.labels.Mentions {
		if m.Needle != "" && strings.Contains(raw, m.Needle) {
			out = append(out, m.Action)
		}
	}
	if len(out) == 0 {
		return []string{NoActions}
	}
	return out
}

func (e *Extractor) reasoning(raw string) string {
	if e.labels.Thought == "" {
		return NoReasoning
	}
	var bullets []string
	for _, line := range strings.Split(raw, "\n") {
		l := strings.TrimSpace(line)
		if !strings.HasPrefix(l, e.labels.Thought) {
			continue
		}
		if thought := strings.TrimSpace(strings.TrimPrefix(l, e.labels.Thought)); thought != "" {
			bullets = append(bullets, "- "+thought)
		}
	}
	if len(bullets) == 0 {
		return NoReasoning
	}
	return strings.Join(bullets, "\n")
}

func links(raw string) []string {
	return linkRe.FindAllString(raw, -1)
}
