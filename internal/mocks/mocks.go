package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"social-chat-service/internal/auth"
	"social-chat-service/internal/models"
	"social-chat-service/internal/repositories"
	"social-chat-service/internal/storage"
)

type ChatRepositoryMock struct {
	mock.Mock
}

var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)

func (m *ChatRepositoryMock) CreateOrGetPrivateChat(ctx context.Context, userID, otherID int) (models.Chat, bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Get(0).(models.Chat), args.Bool(1), args.Error(2)
}

func (m *ChatRepositoryMock) FindPrivateChat(ctx context.Context, userID, otherID int) (models.Chat, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Get(0).(models.Chat), args.Error(1)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(models.Chat), args.Error(1)
}

func (m *ChatRepositoryMock) IsMember(ctx context.Context, chatID, userID int) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ChatRepositoryMock) ListMembers(ctx context.Context, chatID int) ([]models.User, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *ChatRepositoryMock) ListChatsForUser(ctx context.Context, userID int) ([]models.ChatSummary, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.ChatSummary), args.Error(1)
}

func (m *ChatRepositoryMock) CreateGroupChat(ctx context.Context, creatorID int, memberIDs []int, name, avatarPath string) (models.Chat, error) {
	args := m.Called(ctx, creatorID, memberIDs, name, avatarPath)
	return args.Get(0).(models.Chat), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, chatID, senderID int, content string, images []repositories.ImageUpload) (models.Message, error) {
	args := m.Called(ctx, chatID, senderID, content, images)
	return args.Get(0).(models.Message), args.Error(1)
}

func (m *MessageRepositoryMock) ListChatMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MessageRepositoryMock) ListMessagesPage(ctx context.Context, chatID, page, limit int) ([]models.Message, error) {
	args := m.Called(ctx, chatID, page, limit)
	return args.Get(0).([]models.Message), args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserRepositoryMock) BulkUsers(ctx context.Context, ids []int) ([]models.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.User), args.Error(1)
}

type UploaderMock struct {
	mock.Mock
}

var _ storage.Uploader = (*UploaderMock)(nil)

func (m *UploaderMock) Upload(ctx context.Context, filename, contentType string, data []byte) (string, string, error) {
	args := m.Called(ctx, filename, contentType, data)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *UploaderMock) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type VerifierMock struct {
	mock.Mock
}

var _ auth.TokenVerifier = (*VerifierMock)(nil)

func (m *VerifierMock) Verify(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}
