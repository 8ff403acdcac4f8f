package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/localhands/marketplace-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventListingCreated EventType = "listing_created"
	EventListingUpdated EventType = "listing_updated"
	EventListingDeleted EventType = "listing_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ListingID string      `json:"listing_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps a fresh event id and timestamp.
func NewEvent(eventType EventType, listingID, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ListingID: listingID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ListingCreatedPayload carries the joined view of the new listing.
type ListingCreatedPayload struct {
	Listing domain.ListingView `json:"listing"`
}

// ListingUpdatedPayload payload.
type ListingUpdatedPayload struct {
	ServiceName string          `json:"service_name"`
	Category    domain.Category `json:"category"`
	Price       float64         `json:"price"`
}

// ListingDeletedPayload payload.
type ListingDeletedPayload struct {
	ServiceName string `json:"service_name"`
}
