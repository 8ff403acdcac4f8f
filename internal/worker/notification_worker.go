package worker

import (
	"context"
	"sync"

	"github.com/localhands/marketplace-api/internal/realtime"
	"github.com/localhands/marketplace-api/internal/service"
)

// NotificationWorkers are the background parts of the notification pipeline.
type NotificationWorkers struct {
	Notifications *service.NotificationService
	Notifier      *realtime.Notifier
	Hub           *realtime.Hub
	// Relay is nil when broadcasts stay in-process.
	Relay *realtime.RedisRelay
}

// StartNotificationWorker registers event handlers and starts the hub and relay loops.
// The returned func blocks until both loops have exited after ctx is cancelled.
func StartNotificationWorker(ctx context.Context, w NotificationWorkers) (wait func()) {
	if w.Notifications != nil {
		w.Notifications.RegisterHandlers()
	}
	if w.Notifier != nil {
		w.Notifier.RegisterHandlers()
	}

	var wg sync.WaitGroup
	if w.Hub != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Hub.Run(ctx)
		}()
	}
	if w.Relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Relay.Run(ctx)
		}()
	}
	return wg.Wait
}
