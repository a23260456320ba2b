package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-import/internal/events"
	"github.com/spec-kit/ticket-import/internal/service"
)

// StartNotificationWorker registers the import notification handlers on the
// dispatcher. Handlers run synchronously inside the publishing import.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	if logger != nil {
		logger.Info("notification handlers registered",
			zap.Strings("events", []string{
				string(events.EventTicketImported),
				string(events.EventImportCompleted),
			}))
	}
}
