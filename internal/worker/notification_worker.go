package worker

import (
	"context"

	"github.com/senelec/reclamations-api/internal/service"
)

// StartNotificationWorker registers notification handlers and starts the pool
// that delivers their emails.
func StartNotificationWorker(ctx context.Context, pool *Pool, notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	if pool != nil {
		pool.Start(ctx)
		notificationService.UseSubmitter(pool)
	}
	notificationService.RegisterHandlers()
}
