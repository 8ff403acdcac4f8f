package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/localhands/marketplace-api/internal/config"
	"github.com/localhands/marketplace-api/internal/events"
	"github.com/localhands/marketplace-api/internal/realtime"
	"github.com/localhands/marketplace-api/internal/service"
)

func TestStartNotificationWorker_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dispatcher := events.NewInMemoryDispatcher()
	hub := realtime.NewHub(config.RealtimeConfig{}, zap.NewNop(), nil)

	wait := StartNotificationWorker(ctx, NotificationWorkers{
		Notifications: service.NewNotificationService(dispatcher, zap.NewNop(), nil),
		Notifier:      realtime.NewNotifier(dispatcher, hub, zap.NewNop(), nil),
		Hub:           hub,
	})

	assert.NoError(t, dispatcher.Publish(context.Background(), events.NewEvent(events.EventListingDeleted, "l1", "p1", nil)))

	cancel()
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not stop")
	}
}
