// Package conversation holds the per-session chat state and the orchestrator that moves it.
//
// A Conversation is Open until the close keyword is submitted, then Closed for good. Each
// submitted question gets the next question id and becomes the only question personas can
// be selected for. Selected personas are queued as triggers and answered one at a time.
package conversation

import (
	"strings"

	"github.com/google/uuid"

	"github.com/dyike/CortexChat/consts"
)

type State int

const (
	Open State = iota
	Closed
)

func (s State) String() string {
	if s == Closed {
		return "closed"
	}
	return "open"
}

// Message is immutable once appended. Persona is empty for user messages.
type Message struct {
	Role       string
	QuestionID int
	Content    string
	Persona    string
}

func (m Message) IsUser() bool { return m.Role == consts.RoleUser }

// Trigger asks one persona to answer one question.
type Trigger struct {
	QuestionID int
	Persona    string
}

// Conversation is only mutated by the Orchestrator.
type Conversation struct {
	ID string

	closeKeyword       string
	messages           []Message
	nextQuestionID     int
	closed             bool
	lastOpenQuestionID int
	queue              []Trigger
	answered           map[Trigger]bool
	toolLogs           map[Trigger][]string
}

// New starts an empty, open conversation. An empty closeKeyword means "done".
func New(closeKeyword string) *Conversation {
	closeKeyword = strings.TrimSpace(closeKeyword)
	if closeKeyword == "" {
		closeKeyword = consts.CloseKeyword
	}
	return &Conversation{
		ID:                 uuid.NewString(),
		closeKeyword:       strings.ToLower(closeKeyword),
		lastOpenQuestionID: -1,
		answered:           make(map[Trigger]bool),
		toolLogs:           make(map[Trigger][]string),
	}
}

func (c *Conversation) State() State {
	if c.closed {
		return Closed
	}
	return Open
}

func (c *Conversation) Closed() bool { return c.closed }

func (c *Conversation) NextQuestionID() int { return c.nextQuestionID }

func (c *Conversation) CloseKeyword() string { return c.closeKeyword }

// Messages returns the log in append order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// OpenQuestion is the question persona selection is currently offered for.
func (c *Conversation) OpenQuestion() (int, bool) {
	if c.closed || c.lastOpenQuestionID < 0 {
		return 0, false
	}
	return c.lastOpenQuestionID, true
}

// Question returns the user message that opened questionID.
func (c *Conversation) Question(questionID int) (Message, bool) {
	for _, m := range c.messages {
		if m.IsUser() && m.QuestionID == questionID {
			return m, true
		}
	}
	return Message{}, false
}

func (c *Conversation) Queue() []Trigger {
	out := make([]Trigger, len(c.queue))
	copy(out, c.queue)
	return out
}

func (c *Conversation) HasAnswer(questionID int, persona string) bool {
	return c.answered[Trigger{QuestionID: questionID, Persona: persona}]
}

// Answered lists the personas that answered questionID, in answer order.
func (c *Conversation) Answered(questionID int) []string {
	var out []string
	for _, m := range c.messages {
		if !m.IsUser() && m.QuestionID == questionID {
			out = append(out, m.Persona)
		}
	}
	return out
}

func (c *Conversation) ToolLog(questionID int, persona string) []string {
	log := c.toolLogs[Trigger{QuestionID: questionID, Persona: persona}]
	out := make([]string, len(log))
	copy(out, log)
	return out
}

func (c *Conversation) isQueued(t Trigger) bool {
	for _, q := range c.queue {
		if q == t {
			return true
		}
	}
	return false
}

func (c *Conversation) isCloseKeyword(text string) bool {
	return strings.ToLower(strings.TrimSpace(text)) == c.closeKeyword
}

func (c *Conversation) appendQuestion(text string) int {
	id := c.nextQuestionID
	c.messages = append(c.messages, Message{Role: consts.RoleUser, QuestionID: id, Content: text})
	c.nextQuestionID++
	c.lastOpenQuestionID = id
	return id
}

func (c *Conversation) enqueue(t Trigger) bool {
	if c.answered[t] || c.isQueued(t) {
		return false
	}
	c.queue = append(c.queue, t)
	return true
}

func (c *Conversation) pop() (Trigger, bool) {
	if len(c.queue) == 0 {
		return Trigger{}, false
	}
	t := c.queue[0]
	c.queue = c.queue[1:]
	return t, true
}

func (c *Conversation) appendAnswer(t Trigger, content string, toolLog []string) Message {
	m := Message{Role: consts.RoleAssistant, QuestionID: t.QuestionID, Content: content, Persona: t.Persona}
	c.messages = append(c.messages, m)
	c.answered[t] = true
	c.toolLogs[t] = toolLog
	return m
}
