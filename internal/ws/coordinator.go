package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"social-chat-service/internal/models"
	"social-chat-service/internal/observability"
	"social-chat-service/internal/repositories"
	"social-chat-service/internal/storage"
	"social-chat-service/internal/telemetry"
)

const (
	defaultChatAvatar = "/static/img/chat-placeholder.png"
	defaultPageLimit  = 20
)

// clientError marks failures whose text is safe to send back over the
// socket. Everything else surfaces to the client as a generic message.
type clientError struct {
	msg string
}

func (e clientError) Error() string { return e.msg }

func clientErrorf(format string, args ...any) error {
	return clientError{msg: fmt.Sprintf(format, args...)}
}

// Coordinator owns the chat business logic behind the socket: it validates
// inbound payloads, persists through the repositories, then fans results
// out through the emitter. Persist first, broadcast second; a broadcast
// never describes state that was not committed.
type Coordinator struct {
	router   *Router
	emitter  Emitter
	chats    repositories.ChatRepository
	messages repositories.MessageRepository
	users    repositories.UserRepository
	uploads  storage.Uploader
	audit    *telemetry.AuditEmitter
	validate *validator.Validate
}

// NewCoordinator wires the chat core together.
func NewCoordinator(
	router *Router,
	emitter Emitter,
	chats repositories.ChatRepository,
	messages repositories.MessageRepository,
	users repositories.UserRepository,
	uploads storage.Uploader,
	audit *telemetry.AuditEmitter,
) *Coordinator {
	return &Coordinator{
		router:   router,
		emitter:  emitter,
		chats:    chats,
		messages: messages,
		users:    users,
		uploads:  uploads,
		audit:    audit,
		validate: validator.New(),
	}
}

// HandleEvent dispatches one inbound frame. Handler errors are reported on
// the same session; the connection stays usable afterwards.
func (c *Coordinator) HandleEvent(ctx context.Context, sess *Session, ev Event) {
	observability.IncWSEvent("inbound", ev.Event)

	var err error
	switch ev.Event {
	case EvGetOrCreatePrivateChat:
		err = c.getOrCreatePrivateChat(ctx, sess, ev.Data)
	case EvNewMessage:
		err = c.newMessage(ctx, sess, ev.Data)
	case EvJoinChat:
		err = c.joinChat(ctx, sess, ev.Data)
	case EvGetUserChats:
		err = c.getUserChats(ctx, sess)
	case EvGetChat, EvChat:
		// Some clients echo the outbound name when requesting a chat.
		err = c.getChat(ctx, sess, ev.Data)
	case EvGetChatMessages:
		err = c.getChatMessages(ctx, sess, ev.Data)
	case EvCreateChat:
		err = c.createChat(ctx, sess, ev.Data)
	default:
		err = clientErrorf("unknown event %q", ev.Event)
	}

	if err != nil {
		c.sendError(sess, ev.Event, err)
	}
}

func (c *Coordinator) sendError(sess *Session, event string, err error) {
	observability.IncWSEvent("error", event)

	msg := "internal error"
	var ce clientError
	if errors.As(err, &ce) {
		msg = ce.msg
	} else {
		log.Printf("ws handler %s failed conn=%s user=%d: %v", event, sess.ID, sess.UserID, err)
	}

	if sendErr := sess.Send(EvError, errorPayload{Event: event, Error: msg}); sendErr != nil {
		log.Printf("ws error frame write failed conn=%s: %v", sess.ID, sendErr)
	}
}

// bind decodes and validates one event payload. Both failure modes are
// client errors: the frame came off the wire malformed.
func (c *Coordinator) bind(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return clientError{msg: "missing payload"}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return clientErrorf("invalid payload: %v", err)
	}
	if err := c.validate.Struct(v); err != nil {
		return clientErrorf("invalid payload: %v", err)
	}
	return nil
}

func (c *Coordinator) getOrCreatePrivateChat(ctx context.Context, sess *Session, raw json.RawMessage) error {
	var payload privateChatPayload
	if err := c.bind(raw, &payload); err != nil {
		return err
	}
	if payload.UserID == sess.UserID {
		return clientError{msg: "cannot chat with yourself"}
	}

	chat, err := c.chats.FindPrivateChat(ctx, sess.UserID, payload.UserID)
	if errors.Is(err, repositories.ErrChatNotFound) {
		// No chat yet; it is created lazily by the first message.
		return sess.Send(EvChat, nil)
	}
	if err != nil {
		return fmt.Errorf("find private chat: %w", err)
	}

	detail, err := c.chatDetail(ctx, sess.UserID, chat)
	if err != nil {
		return err
	}
	return sess.Send(EvChat, detail)
}

func (c *Coordinator) newMessage(ctx context.Context, sess *Session, raw json.RawMessage) error {
	var payload newMessagePayload
	if err := c.bind(raw, &payload); err != nil {
		return err
	}

	content := strings.TrimSpace(payload.Message)
	if content == "" && len(payload.Images) == 0 {
		return clientError{msg: "message is empty"}
	}

	author, err := c.users.GetUser(ctx, sess.UserID)
	if err != nil {
		return fmt.Errorf("load author: %w", err)
	}

	chat, created, err := c.resolveChat(ctx, sess, payload)
	if err != nil {
		return err
	}

	images, err := c.uploadImages(ctx, payload.Images)
	if err != nil {
		return err
	}

	msg, err := c.messages.CreateMessage(ctx, chat.ID, sess.UserID, content, images)
	if err != nil {
		c.removeUploads(ctx, images)
		return fmt.Errorf("persist message: %w", err)
	}
	msg.SenderUsername = author.Username
	msg.SenderAvatar = author.AvatarPath

	c.emitter.Emit(ctx, ChatRoom(chat.ID), EvNewMessage, msg)
	c.auditInfo(ctx, sess, fmt.Sprintf("message %d sent to chat %d", msg.ID, chat.ID))

	if created {
		if err := c.announceNewChat(ctx, sess.UserID, chat); err != nil {
			log.Printf("announce new chat %d: %v", chat.ID, err)
		}
	}
	return nil
}

// resolveChat finds the target chat for a message: by chat id when given,
// otherwise the private chat with the addressed user, created on first
// message. The second result reports whether a chat was created.
func (c *Coordinator) resolveChat(ctx context.Context, sess *Session, payload newMessagePayload) (models.Chat, bool, error) {
	if payload.ChatID > 0 {
		member, err := c.chats.IsMember(ctx, payload.ChatID, sess.UserID)
		if err != nil {
			return models.Chat{}, false, fmt.Errorf("membership check: %w", err)
		}
		if !member {
			return models.Chat{}, false, clientError{msg: "not a member of this chat"}
		}
		chat, err := c.chats.GetChat(ctx, payload.ChatID)
		if err != nil {
			return models.Chat{}, false, fmt.Errorf("load chat: %w", err)
		}
		return chat, false, nil
	}

	if payload.UserID <= 0 {
		return models.Chat{}, false, clientError{msg: "chatId or userId is required"}
	}
	if payload.UserID == sess.UserID {
		return models.Chat{}, false, clientError{msg: "cannot chat with yourself"}
	}
	chat, created, err := c.chats.CreateOrGetPrivateChat(ctx, sess.UserID, payload.UserID)
	if err != nil {
		return models.Chat{}, false, fmt.Errorf("get or create private chat: %w", err)
	}
	return chat, created, nil
}

// uploadImages stores every attachment before anything is persisted. On any
// failure the ones already stored are removed so nothing dangles.
func (c *Coordinator) uploadImages(ctx context.Context, uris []string) ([]repositories.ImageUpload, error) {
	if len(uris) == 0 {
		return nil, nil
	}

	uploads := make([]repositories.ImageUpload, 0, len(uris))
	for _, uri := range uris {
		contentType, data, err := decodeDataURI(uri)
		if err != nil {
			c.removeUploads(ctx, uploads)
			return nil, clientErrorf("invalid image: %v", err)
		}

		path, key, err := c.uploads.Upload(ctx, "chat"+extFromContentType(contentType), contentType, data)
		if err != nil {
			c.removeUploads(ctx, uploads)
			if errors.Is(err, storage.ErrDisabled) {
				return nil, clientError{msg: "image upload is not available"}
			}
			return nil, fmt.Errorf("upload image: %w", err)
		}
		uploads = append(uploads, repositories.ImageUpload{Path: path, Key: key})
	}
	return uploads, nil
}

// removeUploads best-effort deletes blobs from an aborted send.
func (c *Coordinator) removeUploads(ctx context.Context, uploads []repositories.ImageUpload) {
	for _, up := range uploads {
		if err := c.uploads.Remove(ctx, up.Key); err != nil {
			log.Printf("remove orphaned upload %s: %v", up.Key, err)
		}
	}
}

// announceNewChat tells every member except the actor that a chat now
// exists, each on their own user room so every device they hold learns of
// it.
func (c *Coordinator) announceNewChat(ctx context.Context, actorID int, chat models.Chat) error {
	members, err := c.chats.ListMembers(ctx, chat.ID)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}

	for _, member := range members {
		if member.ID == actorID {
			continue
		}
		summary := c.summaryFor(chat, member.ID, members)
		c.emitter.Emit(ctx, UserRoom(member.ID), EvNewChat, summary)
	}
	return nil
}

func (c *Coordinator) joinChat(ctx context.Context, sess *Session, raw json.RawMessage) error {
	var payload chatIDPayload
	if err := c.bind(raw, &payload); err != nil {
		return err
	}

	member, err := c.chats.IsMember(ctx, payload.ChatID, sess.UserID)
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return clientError{msg: "not a member of this chat"}
	}

	c.router.Join(sess, ChatRoom(payload.ChatID))
	return nil
}

func (c *Coordinator) getUserChats(ctx context.Context, sess *Session) error {
	summaries, err := c.chats.ListChatsForUser(ctx, sess.UserID)
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}

	// Private chats display the other participant; resolve all of them in
	// one query.
	friendIDs := make([]int, 0, len(summaries))
	for _, s := range summaries {
		if s.Type == models.ChatTypePrivate && s.FriendID > 0 {
			friendIDs = append(friendIDs, s.FriendID)
		}
	}
	friends := map[int]models.User{}
	if len(friendIDs) > 0 {
		users, err := c.users.BulkUsers(ctx, friendIDs)
		if err != nil {
			return fmt.Errorf("resolve chat partners: %w", err)
		}
		for _, u := range users {
			friends[u.ID] = u
		}
	}

	for i := range summaries {
		if friend, ok := friends[summaries[i].FriendID]; ok && summaries[i].Type == models.ChatTypePrivate {
			summaries[i].Name = friend.Username
			summaries[i].AvatarPath = friend.AvatarPath
		}
	}
	return sess.Send(EvUserChats, summaries)
}

func (c *Coordinator) getChat(ctx context.Context, sess *Session, raw json.RawMessage) error {
	var payload chatIDPayload
	if err := c.bind(raw, &payload); err != nil {
		return err
	}

	member, err := c.chats.IsMember(ctx, payload.ChatID, sess.UserID)
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return clientError{msg: "not a member of this chat"}
	}

	chat, err := c.chats.GetChat(ctx, payload.ChatID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			return clientError{msg: "chat not found"}
		}
		return fmt.Errorf("load chat: %w", err)
	}

	detail, err := c.chatDetail(ctx, sess.UserID, chat)
	if err != nil {
		return err
	}
	return sess.Send(EvChat, detail)
}

type chatMessagesResponse struct {
	ChatID   int              `json:"chat_id"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Messages []models.Message `json:"messages"`
}

func (c *Coordinator) getChatMessages(ctx context.Context, sess *Session, raw json.RawMessage) error {
	var payload chatMessagesPayload
	if err := c.bind(raw, &payload); err != nil {
		return err
	}
	if payload.Page == 0 {
		payload.Page = 1
	}
	if payload.Limit == 0 {
		payload.Limit = defaultPageLimit
	}

	member, err := c.chats.IsMember(ctx, payload.ChatID, sess.UserID)
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !member {
		return clientError{msg: "not a member of this chat"}
	}

	msgs, err := c.messages.ListMessagesPage(ctx, payload.ChatID, payload.Page, payload.Limit)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}

	// The page is fetched newest first; clients render oldest first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	return sess.Send(EvChatMessages, chatMessagesResponse{
		ChatID:   payload.ChatID,
		Page:     payload.Page,
		Limit:    payload.Limit,
		Messages: msgs,
	})
}

func (c *Coordinator) createChat(ctx context.Context, sess *Session, raw json.RawMessage) error {
	var payload createChatPayload
	if err := c.bind(raw, &payload); err != nil {
		return err
	}

	// Drop duplicates and the creator; the repository adds the creator back.
	seen := map[int]struct{}{sess.UserID: {}}
	participants := make([]int, 0, len(payload.ParticipantIDs))
	for _, id := range payload.ParticipantIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		participants = append(participants, id)
	}
	if len(participants) == 0 {
		return clientError{msg: "chat needs at least one other participant"}
	}

	if len(participants) == 1 {
		chat, created, err := c.chats.CreateOrGetPrivateChat(ctx, sess.UserID, participants[0])
		if err != nil {
			return fmt.Errorf("get or create private chat: %w", err)
		}
		detail, err := c.chatDetail(ctx, sess.UserID, chat)
		if err != nil {
			return err
		}
		if err := sess.Send(EvChat, detail); err != nil {
			return err
		}
		if created {
			c.auditInfo(ctx, sess, fmt.Sprintf("private chat %d created", chat.ID))
			if err := c.announceNewChat(ctx, sess.UserID, chat); err != nil {
				log.Printf("announce new chat %d: %v", chat.ID, err)
			}
		}
		return nil
	}

	avatarPath := defaultChatAvatar
	if payload.Avatar != "" {
		contentType, data, err := decodeDataURI(payload.Avatar)
		if err != nil {
			return clientErrorf("invalid avatar: %v", err)
		}
		path, _, err := c.uploads.Upload(ctx, "avatar"+extFromContentType(contentType), contentType, data)
		if err != nil {
			if errors.Is(err, storage.ErrDisabled) {
				return clientError{msg: "avatar upload is not available"}
			}
			return fmt.Errorf("upload avatar: %w", err)
		}
		avatarPath = path
	}

	name := strings.TrimSpace(payload.ChatName)
	if name == "" {
		name = "Group chat"
	}

	chat, err := c.chats.CreateGroupChat(ctx, sess.UserID, participants, name, avatarPath)
	if err != nil {
		return fmt.Errorf("create group chat: %w", err)
	}
	c.auditInfo(ctx, sess, fmt.Sprintf("group chat %d created with %d members", chat.ID, len(participants)+1))

	detail, err := c.chatDetail(ctx, sess.UserID, chat)
	if err != nil {
		return err
	}
	if err := sess.Send(EvChat, detail); err != nil {
		return err
	}
	if err := c.announceNewChat(ctx, sess.UserID, chat); err != nil {
		log.Printf("announce new chat %d: %v", chat.ID, err)
	}
	return nil
}

// chatDetail assembles the full chat view for one viewer: members, history
// and the display name the viewer should see.
func (c *Coordinator) chatDetail(ctx context.Context, viewerID int, chat models.Chat) (models.ChatDetail, error) {
	members, err := c.chats.ListMembers(ctx, chat.ID)
	if err != nil {
		return models.ChatDetail{}, fmt.Errorf("list members: %w", err)
	}

	msgs, err := c.messages.ListChatMessages(ctx, chat.ID)
	if err != nil {
		return models.ChatDetail{}, fmt.Errorf("list messages: %w", err)
	}

	name, avatar := c.displayFor(chat, viewerID, members)
	return models.ChatDetail{
		ID:        chat.ID,
		Type:      chat.Type,
		Name:      name,
		Avatar:    avatar,
		Members:   members,
		Messages:  msgs,
		CreatedAt: chat.CreatedAt,
	}, nil
}

// displayFor resolves the name and avatar a viewer sees: group chats carry
// their own, private chats show the other participant.
func (c *Coordinator) displayFor(chat models.Chat, viewerID int, members []models.User) (string, string) {
	if chat.Type != models.ChatTypePrivate {
		return chat.Name, chat.AvatarPath
	}
	for _, m := range members {
		if m.ID != viewerID {
			return m.Username, m.AvatarPath
		}
	}
	return chat.Name, chat.AvatarPath
}

func (c *Coordinator) summaryFor(chat models.Chat, viewerID int, members []models.User) models.ChatSummary {
	name, avatar := c.displayFor(chat, viewerID, members)
	summary := models.ChatSummary{
		ChatID:     chat.ID,
		Type:       chat.Type,
		Name:       name,
		AvatarPath: avatar,
		Members:    members,
	}
	if chat.Type == models.ChatTypePrivate {
		for _, m := range members {
			if m.ID != viewerID {
				summary.FriendID = m.ID
				break
			}
		}
	}
	return summary
}

func (c *Coordinator) auditInfo(ctx context.Context, sess *Session, text string) {
	userID := int64(sess.UserID)
	c.audit.Emit(ctx, "info", text, sess.ID, &userID)
}
