package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/localhands/marketplace-api/internal/events"
	"github.com/localhands/marketplace-api/internal/observability"
)

// NotificationService records listing lifecycle events in the log and metrics.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventListingCreated, n.handleListingCreated)
	n.dispatcher.Subscribe(events.EventListingUpdated, n.handleListingChanged)
	n.dispatcher.Subscribe(events.EventListingDeleted, n.handleListingChanged)
}

func (n *NotificationService) handleListingCreated(_ context.Context, event events.Event) error {
	n.metrics.ListingCreated()
	fields := []zap.Field{
		zap.String("listing_id", event.ListingID),
		zap.String("provider_id", event.ActorID),
	}
	if payload, ok := event.Payload.(events.ListingCreatedPayload); ok {
		fields = append(fields,
			zap.String("service_name", payload.Listing.ServiceName),
			zap.String("category", string(payload.Listing.Category)))
	}
	n.logger.Info("ListingCreated", fields...)
	return nil
}

func (n *NotificationService) handleListingChanged(_ context.Context, event events.Event) error {
	n.logger.Info("ListingChanged",
		zap.String("event_type", string(event.Type)),
		zap.String("listing_id", event.ListingID),
		zap.String("provider_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}
