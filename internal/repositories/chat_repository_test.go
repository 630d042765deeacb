package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var chatCols = []string{"id", "chat_type", "name", "avatar_path", "user1_id", "user2_id", "created_at"}

const (
	insertChatPattern  = `INSERT INTO chats \(chat_type, user1_id, user2_id\)`
	insertMemberQuery  = `INSERT INTO chat_members (chat_id, user_id) VALUES ($1, $2)`
	selectPrivateQuery = `FROM chats
        WHERE chat_type = 'private' AND user1_id = $1 AND user2_id = $2`
)

func TestCreateOrGetPrivateChatInsertWins(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepo(db)
	now := time.Now()

	mock.ExpectBegin()
	// Pair is normalized to ascending order before the insert.
	mock.ExpectQuery(insertChatPattern).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows(chatCols).AddRow(5, "private", "", "", 1, 2, now))
	mock.ExpectExec(regexp.QuoteMeta(insertMemberQuery)).
		WithArgs(5, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertMemberQuery)).
		WithArgs(5, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	chat, created, err := repo.CreateOrGetPrivateChat(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 5, chat.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrGetPrivateChatLostRaceRefetches(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepo(db)
	now := time.Now()

	mock.ExpectBegin()
	// ON CONFLICT DO NOTHING returns no row when another transaction
	// already inserted the pair.
	mock.ExpectQuery(insertChatPattern).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows(chatCols))
	mock.ExpectRollback()
	mock.ExpectQuery(regexp.QuoteMeta(selectPrivateQuery)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows(chatCols).AddRow(9, "private", "", "", 1, 2, now))

	chat, created, err := repo.CreateOrGetPrivateChat(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, created, "loser of the race must not report creation")
	assert.Equal(t, 9, chat.ID, "loser must return the winner's row")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrGetPrivateChatRefetchFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(insertChatPattern).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows(chatCols))
	mock.ExpectRollback()
	mock.ExpectQuery(regexp.QuoteMeta(selectPrivateQuery)).
		WithArgs(1, 2).
		WillReturnError(errors.New("connection reset"))

	_, created, err := repo.CreateOrGetPrivateChat(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refetch private chat")
	assert.False(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrGetPrivateChatSelfRejected(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewChatRepo(db)

	_, created, err := repo.CreateOrGetPrivateChat(context.Background(), 3, 3)
	require.Error(t, err)
	assert.False(t, created)
}

func TestFindPrivateChatNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectPrivateQuery)).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows(chatCols))

	_, err := repo.FindPrivateChat(context.Background(), 2, 1)
	assert.ErrorIs(t, err, ErrChatNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
