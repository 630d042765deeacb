package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"social-chat-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// ImageUpload is an already-uploaded attachment waiting for its row.
type ImageUpload struct {
	Path string
	Key  string
}

const hydratedMessageColumns = `m.id, m.chat_id, m.sender_id, m.content, m.created_at,
        COALESCE(u.username, '') AS sender_username, COALESCE(u.avatar_path, '') AS sender_avatar`

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, chatID, senderID int, content string, images []ImageUpload) (models.Message, error)
	ListChatMessages(ctx context.Context, chatID int) ([]models.Message, error)
	ListMessagesPage(ctx context.Context, chatID, page, limit int) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage persists a message and its image rows in one transaction.
// Broadcast happens only after this commits; a failure leaves no partial
// rows behind.
func (r *MessageRepo) CreateMessage(ctx context.Context, chatID, senderID int, content string, images []ImageUpload) (msg models.Message, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = tx.QueryRowxContext(ctx, `INSERT INTO messages (chat_id, sender_id, content) VALUES ($1, $2, $3)
        RETURNING id, chat_id, sender_id, content, created_at`, chatID, senderID, content).
		Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Content, &msg.CreatedAt); err != nil {
		return models.Message{}, err
	}

	for _, img := range images {
		var row models.MessageImage
		if err = tx.QueryRowxContext(ctx, `INSERT INTO message_images (message_id, storage_path, storage_key) VALUES ($1, $2, $3)
            RETURNING id, message_id, storage_path, storage_key`, msg.ID, img.Path, img.Key).
			Scan(&row.ID, &row.MessageID, &row.StoragePath, &row.StorageKey); err != nil {
			return models.Message{}, err
		}
		msg.Images = append(msg.Images, row)
	}

	if err = tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// ListChatMessages returns the full history oldest first, hydrated with
// author info and images.
func (r *MessageRepo) ListChatMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+hydratedMessageColumns+`
        FROM messages m LEFT JOIN users u ON u.id = m.sender_id
        WHERE m.chat_id = $1
        ORDER BY m.created_at ASC, m.id ASC`, chatID)
	if err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListMessagesPage returns one page of messages newest first; callers
// reverse it for chronological display. Offset pagination:
// skip = (page-1)*limit.
func (r *MessageRepo) ListMessagesPage(ctx context.Context, chatID, page, limit int) ([]models.Message, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+hydratedMessageColumns+`
        FROM messages m LEFT JOIN users u ON u.id = m.sender_id
        WHERE m.chat_id = $1
        ORDER BY m.created_at DESC, m.id DESC
        LIMIT $2 OFFSET $3`, chatID, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := r.attachImages(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *MessageRepo) attachImages(ctx context.Context, msgs []models.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(msgs))
	byID := make(map[int]*models.Message, len(msgs))
	for i := range msgs {
		ids = append(ids, int64(msgs[i].ID))
		byID[msgs[i].ID] = &msgs[i]
	}

	var images []models.MessageImage
	err := r.db.SelectContext(ctx, &images, `SELECT id, message_id, storage_path, storage_key
        FROM message_images WHERE message_id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return err
	}

	for _, img := range images {
		if msg, ok := byID[img.MessageID]; ok {
			msg.Images = append(msg.Images, img)
		}
	}
	return nil
}
