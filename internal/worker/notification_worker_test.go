package worker

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/ticket-import/internal/config"
	"github.com/spec-kit/ticket-import/internal/events"
	"github.com/spec-kit/ticket-import/internal/service"
)

func TestStartNotificationWorker(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, config.NotificationConfig{
		EmailFrom:  "noreply@example.com",
		WebhookURL: "https://hooks.example.com/import",
	})

	StartNotificationWorker(notifications, logger)
	require.Equal(t, 1, logs.FilterMessage("notification handlers registered").Len())

	err := dispatcher.Publish(context.Background(), events.NewEvent(events.EventImportCompleted, uuid.New(), 7,
		events.ImportCompletedPayload{Success: 1}))
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("ImportCompleted").Len())
	require.Equal(t, 1, logs.FilterMessage("sendEmailNotificationStub").Len())
	require.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())
}

func TestStartNotificationWorker_Nil(t *testing.T) {
	require.NotPanics(t, func() { StartNotificationWorker(nil, nil) })
}
