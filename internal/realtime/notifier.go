package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/localhands/marketplace-api/internal/api/dto"
	"github.com/localhands/marketplace-api/internal/events"
	"github.com/localhands/marketplace-api/internal/observability"
)

// MessageNewListing is the envelope type announcing a created listing.
const MessageNewListing = "new_service_listing"

var errBroadcastDropped = errors.New("broadcast dropped")

// Envelope is the frame pushed to viewers.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Publisher fans an encoded envelope out to viewers, locally or through a relay.
type Publisher interface {
	Publish(ctx context.Context, message []byte) error
}

// Notifier turns listing events into viewer broadcasts. Delivery is fire-and-forget.
type Notifier struct {
	dispatcher events.Dispatcher
	publisher  Publisher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewNotifier builds a notifier publishing through publisher.
func NewNotifier(dispatcher events.Dispatcher, publisher Publisher, logger *zap.Logger, metrics *observability.Metrics) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{dispatcher: dispatcher, publisher: publisher, logger: logger, metrics: metrics}
}

// RegisterHandlers subscribes to listing creation.
func (n *Notifier) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventListingCreated, n.handleListingCreated)
}

func (n *Notifier) handleListingCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ListingCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected %s payload %T", event.Type, event.Payload)
	}

	message, err := json.Marshal(Envelope{Type: MessageNewListing, Data: dto.NewListingResponse(payload.Listing)})
	if err != nil {
		n.metrics.RecordBroadcast(MessageNewListing, "failed")
		return fmt.Errorf("encode %s: %w", MessageNewListing, err)
	}

	if err := n.publisher.Publish(ctx, message); err != nil {
		n.metrics.RecordBroadcast(MessageNewListing, "failed")
		n.logger.Warn("listing broadcast failed", zap.String("listing_id", event.ListingID), zap.Error(err))
		return err
	}
	n.metrics.RecordBroadcast(MessageNewListing, "sent")
	return nil
}
