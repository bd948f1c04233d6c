package worker

import (
	"github.com/salim0986/okr-production-sub000/internal/service"
)

// StartNotificationWorker subscribes the notification fan-out to domain events.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
