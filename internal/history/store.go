package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dyike/CortexChat/consts"
	"github.com/dyike/CortexChat/pkg/sqlite"
)

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Store persists conversations and their messages in sqlite.
type Store struct {
	db *sql.DB
}

type ConversationRecord struct {
	ID           string
	CloseKeyword string
	Status       string
}

// MessageRecord is one appended message. Seq is 1-based and unique per conversation.
type MessageRecord struct {
	ConversationID string
	Seq            int
	Role           string
	QuestionID     int
	Persona        string
	Content        string
	ToolLog        []string
}

type ConversationWithMeta struct {
	ConversationRecord
	RowID         int64
	FirstQuestion string
	Messages      int
	CreatedAt     string
	UpdatedAt     string
}

type MessageWithMeta struct {
	MessageRecord
	CreatedAt string
}

func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    close_keyword TEXT NOT NULL,
    status TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
    conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    role TEXT NOT NULL,
    question_id INTEGER NOT NULL,
    persona TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    tool_log_json TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (conversation_id, seq)
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *Store) SaveConversation(ctx context.Context, conv ConversationRecord) error {
	if strings.TrimSpace(conv.ID) == "" {
		return fmt.Errorf("conversation id is required")
	}
	if conv.Status == "" {
		conv.Status = StatusOpen
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO conversations (id, close_keyword, status)
VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    close_keyword=excluded.close_keyword,
    status=excluded.status,
    updated_at=CASE WHEN conversations.status <> excluded.status THEN CURRENT_TIMESTAMP ELSE conversations.updated_at END
`, conv.ID, conv.CloseKeyword, conv.Status)
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

// InsertMessage is a no-op for a (conversation, seq) pair that is already stored.
func (s *Store) InsertMessage(ctx context.Context, msg MessageRecord) error {
	if msg.Seq <= 0 {
		return fmt.Errorf("message seq must be positive")
	}
	if strings.TrimSpace(msg.Role) == "" {
		return fmt.Errorf("message role is required")
	}

	var toolLog sql.NullString
	if len(msg.ToolLog) > 0 {
		data, err := json.Marshal(msg.ToolLog)
		if err != nil {
			return fmt.Errorf("encode tool log: %w", err)
		}
		toolLog = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO messages (conversation_id, seq, role, question_id, persona, content, tool_log_json)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(conversation_id, seq) DO NOTHING
`, msg.ConversationID, msg.Seq, msg.Role, msg.QuestionID, msg.Persona, msg.Content, toolLog)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, msg.ConversationID)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	return nil
}

// MessageCount reports how many messages are stored for a conversation.
func (s *Store) MessageCount(ctx context.Context, conversationID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// ListConversations pages through conversations newest first. Pass the last RowID as cursor.
func (s *Store) ListConversations(ctx context.Context, cursor int64, limit int) ([]ConversationWithMeta, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT c.rowid, c.id, c.close_keyword, c.status, c.created_at, c.updated_at,
    COALESCE((SELECT m.content FROM messages m
              WHERE m.conversation_id = c.id AND m.role = ?
              ORDER BY m.seq LIMIT 1), ''),
    (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id)
FROM conversations c
WHERE (? = 0 OR c.rowid < ?)
ORDER BY c.rowid DESC
LIMIT ?
`, consts.RoleUser, cursor, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []ConversationWithMeta
	for rows.Next() {
		var rec ConversationWithMeta
		if err := rows.Scan(&rec.RowID, &rec.ID, &rec.CloseKeyword, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.FirstQuestion, &rec.Messages); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations rows: %w", err)
	}
	return out, nil
}

// GetConversation returns nil when no conversation has the id.
func (s *Store) GetConversation(ctx context.Context, id string) (*ConversationWithMeta, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("conversation id is required")
	}
	row := s.db.QueryRowContext(ctx, `
SELECT rowid, id, close_keyword, status, created_at, updated_at
FROM conversations
WHERE id = ?
LIMIT 1
`, id)

	var rec ConversationWithMeta
	if err := row.Scan(&rec.RowID, &rec.ID, &rec.CloseKeyword, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &rec, nil
}

func (s *Store) ListMessages(ctx context.Context, conversationID string) ([]MessageWithMeta, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, fmt.Errorf("conversation id is required")
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT conversation_id, seq, role, question_id, persona, content, tool_log_json, created_at
FROM messages
WHERE conversation_id = ?
ORDER BY seq ASC
`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []MessageWithMeta
	for rows.Next() {
		var (
			rec     MessageWithMeta
			toolLog sql.NullString
		)
		if err := rows.Scan(&rec.ConversationID, &rec.Seq, &rec.Role, &rec.QuestionID, &rec.Persona, &rec.Content,
			&toolLog, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if toolLog.Valid && toolLog.String != "" {
			if err := json.Unmarshal([]byte(toolLog.String), &rec.ToolLog); err != nil {
				return nil, fmt.Errorf("decode tool log: %w", err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages rows: %w", err)
	}
	return out, nil
}

// DeleteConversation removes a conversation and its messages.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id = ?`, id); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("conversation %s not found", id)
	}
	return tx.Commit()
}
