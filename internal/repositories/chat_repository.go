package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"social-chat-service/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

const chatColumns = `id, chat_type, name, avatar_path, user1_id, user2_id, created_at`

// ChatRepository abstracts chat persistence.
type ChatRepository interface {
	CreateOrGetPrivateChat(ctx context.Context, userID, otherID int) (models.Chat, bool, error)
	FindPrivateChat(ctx context.Context, userID, otherID int) (models.Chat, error)
	GetChat(ctx context.Context, chatID int) (models.Chat, error)
	IsMember(ctx context.Context, chatID, userID int) (bool, error)
	ListMembers(ctx context.Context, chatID int) ([]models.User, error)
	ListChatsForUser(ctx context.Context, userID int) ([]models.ChatSummary, error)
	CreateGroupChat(ctx context.Context, creatorID int, memberIDs []int, name, avatarPath string) (models.Chat, error)
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// CreateOrGetPrivateChat returns the private chat between the two users,
// creating it if absent. The second result reports whether a new chat was
// created. Concurrent calls for the same pair converge on one chat: the
// insert targets the partial unique index on the ordered pair, and the
// loser of the race refetches the winner's row.
func (r *ChatRepo) CreateOrGetPrivateChat(ctx context.Context, userID, otherID int) (chat models.Chat, created bool, err error) {
	if userID == otherID {
		return models.Chat{}, false, errors.New("cannot create chat with self")
	}
	user1, user2 := orderPair(userID, otherID)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, false, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	err = tx.QueryRowxContext(ctx, `INSERT INTO chats (chat_type, user1_id, user2_id) VALUES ('private', $1, $2)
        ON CONFLICT (user1_id, user2_id) WHERE chat_type = 'private' DO NOTHING
        RETURNING `+chatColumns, user1, user2).StructScan(&chat)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost the race or the chat already existed; nothing was written.
		tx.Rollback()
		err = nil
		existing, findErr := r.FindPrivateChat(ctx, userID, otherID)
		if findErr != nil {
			return models.Chat{}, false, fmt.Errorf("refetch private chat: %w", findErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return models.Chat{}, false, err
	}

	for _, memberID := range []int{user1, user2} {
		if _, err = tx.ExecContext(ctx, `INSERT INTO chat_members (chat_id, user_id) VALUES ($1, $2)
            ON CONFLICT DO NOTHING`, chat.ID, memberID); err != nil {
			return models.Chat{}, false, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Chat{}, false, err
	}
	return chat, true, nil
}

// FindPrivateChat looks up the private chat for an unordered user pair.
func (r *ChatRepo) FindPrivateChat(ctx context.Context, userID, otherID int) (models.Chat, error) {
	user1, user2 := orderPair(userID, otherID)
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats
        WHERE chat_type = 'private' AND user1_id = $1 AND user2_id = $2`, user1, user2)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT `+chatColumns+` FROM chats WHERE id = $1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// IsMember checks whether the user belongs to the chat.
func (r *ChatRepo) IsMember(ctx context.Context, chatID, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM chat_members WHERE chat_id = $1 AND user_id = $2)`, chatID, userID)
	return exists, err
}

// ListMembers returns the chat's members in join order.
func (r *ChatRepo) ListMembers(ctx context.Context, chatID int) ([]models.User, error) {
	var members []models.User
	err := r.db.SelectContext(ctx, &members, `SELECT u.id, u.username, u.avatar_path
        FROM users u INNER JOIN chat_members cm ON cm.user_id = u.id
        WHERE cm.chat_id = $1 ORDER BY cm.joined_at, u.id`, chatID)
	return members, err
}

type chatSummaryRow struct {
	ID             int            `db:"id"`
	Type           string         `db:"chat_type"`
	Name           string         `db:"name"`
	AvatarPath     string         `db:"avatar_path"`
	User1ID        sql.NullInt64  `db:"user1_id"`
	User2ID        sql.NullInt64  `db:"user2_id"`
	LastContent    sql.NullString `db:"last_content"`
	LastSenderID   sql.NullInt64  `db:"last_sender_id"`
	LastSenderName sql.NullString `db:"last_sender_name"`
}

// ListChatsForUser returns every chat the user belongs to, newest first,
// with the most recent message as preview. Private-chat display names are
// resolved by the caller from FriendID.
func (r *ChatRepo) ListChatsForUser(ctx context.Context, userID int) ([]models.ChatSummary, error) {
	query := `SELECT c.id, c.chat_type, c.name, c.avatar_path, c.user1_id, c.user2_id,
            lm.content AS last_content, lm.sender_id AS last_sender_id, lu.username AS last_sender_name
        FROM chats c
        INNER JOIN chat_members cm ON cm.chat_id = c.id
        LEFT JOIN LATERAL (
            SELECT content, sender_id FROM messages
            WHERE chat_id = c.id ORDER BY created_at DESC, id DESC LIMIT 1
        ) lm ON TRUE
        LEFT JOIN users lu ON lu.id = lm.sender_id
        WHERE cm.user_id = $1
        ORDER BY c.created_at DESC`

	var rows []chatSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, len(rows))
	for _, row := range rows {
		summary := models.ChatSummary{
			ChatID:     row.ID,
			Type:       row.Type,
			Name:       row.Name,
			AvatarPath: row.AvatarPath,
		}
		if row.Type == models.ChatTypePrivate && row.User1ID.Valid && row.User2ID.Valid {
			friendID := int(row.User1ID.Int64)
			if friendID == userID {
				friendID = int(row.User2ID.Int64)
			}
			summary.FriendID = friendID
		}
		if row.LastContent.Valid {
			summary.LastMessage = &models.MessagePreview{
				SenderID:   int(row.LastSenderID.Int64),
				SenderName: row.LastSenderName.String,
				Text:       row.LastContent.String,
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// CreateGroupChat creates a group chat and its memberships atomically. The
// creator is always a member; duplicate ids are collapsed. The avatar path
// is written with the row itself, never patched in afterwards.
func (r *ChatRepo) CreateGroupChat(ctx context.Context, creatorID int, memberIDs []int, name, avatarPath string) (chat models.Chat, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = tx.QueryRowxContext(ctx, `INSERT INTO chats (chat_type, name, avatar_path) VALUES ('group', $1, $2)
        RETURNING `+chatColumns, name, avatarPath).StructScan(&chat); err != nil {
		return models.Chat{}, err
	}

	memberSet := map[int]struct{}{creatorID: {}}
	for _, id := range memberIDs {
		memberSet[id] = struct{}{}
	}
	ids := make([]int, 0, len(memberSet))
	for id := range memberSet {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if _, err = tx.ExecContext(ctx, `INSERT INTO chat_members (chat_id, user_id) VALUES ($1, $2)`, chat.ID, id); err != nil {
			return models.Chat{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

func orderPair(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
