package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"social-chat-service/internal/mocks"
	"social-chat-service/internal/telemetry"
)

func TestEmitPublishesEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit_log.chat", "social-chat-service", "test")

	var captured telemetry.AuditEnvelope
	publisher.On("Publish", mock.Anything, "audit_log.chat", mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(telemetry.AuditEnvelope)
		}).
		Return(nil).Once()

	userID := int64(42)
	emitter.Emit(context.Background(), "info", "message sent", "conn-1", &userID)

	publisher.AssertExpectations(t)
	assert.Equal(t, 1, captured.SchemaVersion)
	assert.Equal(t, "audit_log", captured.EventType)
	assert.Equal(t, "social-chat-service", captured.Service)
	assert.Equal(t, "test", captured.Environment)
	assert.Equal(t, "conn-1", captured.ConnID)
	require.NotNil(t, captured.UserID)
	assert.Equal(t, int64(42), *captured.UserID)
	assert.Equal(t, "info", captured.Payload.Level)
	assert.Equal(t, "message sent", captured.Payload.Text)
	assert.NotEmpty(t, captured.OccurredAt)
}

func TestEmitSwallowsPublishErrors(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit_log.chat", "svc", "test")

	publisher.On("Publish", mock.Anything, "audit_log.chat", mock.Anything).
		Return(errors.New("broker down")).Once()

	emitter.Emit(context.Background(), "error", "boom", "", nil)
	publisher.AssertExpectations(t)
}

func TestEmitNilEmitterIsSafe(t *testing.T) {
	var emitter *telemetry.AuditEmitter
	emitter.Emit(context.Background(), "info", "ignored", "", nil)
}
