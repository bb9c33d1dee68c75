package history

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dyike/CortexChat/consts"
	"github.com/dyike/CortexChat/internal/conversation"
)

// Recorder mirrors live conversations into a Store. Messages are append-only, so
// each Sync only writes what was appended since the previous one.
type Recorder struct {
	store  *Store
	logger *zap.Logger
	synced map[string]int
}

func NewRecorder(store *Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger.Named("history"), synced: make(map[string]int)}
}

func (r *Recorder) Sync(ctx context.Context, c *conversation.Conversation) error {
	status := StatusOpen
	if c.Closed() {
		status = StatusClosed
	}
	if err := r.store.SaveConversation(ctx, ConversationRecord{ID: c.ID, CloseKeyword: c.CloseKeyword(), Status: status}); err != nil {
		return err
	}

	msgs := c.Messages()
	done, ok := r.synced[c.ID]
	if !ok {
		n, err := r.store.MessageCount(ctx, c.ID)
		if err != nil {
			return err
		}
		done = n
	}

	for i := done; i < len(msgs); i++ {
		m := msgs[i]
		rec := MessageRecord{
			ConversationID: c.ID,
			Seq:            i + 1,
			Role:           m.Role,
			QuestionID:     m.QuestionID,
			Persona:        m.Persona,
			Content:        m.Content,
		}
		if !m.IsUser() {
			rec.ToolLog = c.ToolLog(m.QuestionID, m.Persona)
		}
		if err := r.store.InsertMessage(ctx, rec); err != nil {
			r.synced[c.ID] = i
			return err
		}
	}
	r.synced[c.ID] = len(msgs)

	r.logger.Debug("conversation synced",
		zap.String("conversation", c.ID),
		zap.String("status", status),
		zap.Int("messages", len(msgs)))
	return nil
}

// Markdown renders a stored conversation the way live transcripts look.
func Markdown(conv ConversationWithMeta, msgs []MessageWithMeta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Conversation %s\n\n", conv.ID)
	fmt.Fprintf(&b, "*Started %s*\n\n", conv.CreatedAt)

	for _, m := range msgs {
		if m.Role != consts.RoleAssistant {
			fmt.Fprintf(&b, "## Question %d\n\n%s\n\n", m.QuestionID, m.Content)
			continue
		}
		fmt.Fprintf(&b, "%s\n\n", m.Content)
		if len(m.ToolLog) > 0 {
			fmt.Fprintf(&b, "<details><summary>Tool activity (%s)</summary>\n\n%s\n\n</details>\n\n", m.Persona, conversation.RenderToolLog(m.ToolLog))
		}
	}

	if conv.Status == StatusClosed {
		b.WriteString("---\n\n*Conversation closed.*\n")
	}
	return b.String()
}
