package persistence

import "time"

// EventType defines the possible event types for collection operations.
type EventType string

const (
	EntityFetchStart    EventType = "entity:fetch:start"
	EntityFetchSuccess  EventType = "entity:fetch:success"
	EntityFetchFailed   EventType = "entity:fetch:failed"
	EntityInsertStart   EventType = "entity:insert:start"
	EntityInsertSuccess EventType = "entity:insert:success"
	EntityInsertFailed  EventType = "entity:insert:failed"
	EntityUpdateStart   EventType = "entity:update:start"
	EntityUpdateSuccess EventType = "entity:update:success"
	EntityUpdateFailed  EventType = "entity:update:failed"
	EntityDeleteStart   EventType = "entity:delete:start"
	EntityDeleteSuccess EventType = "entity:delete:success"
	EntityDeleteFailed  EventType = "entity:delete:failed"

	SubscriptionRegister   EventType = "subscription:register"
	SubscriptionUnregister EventType = "subscription:unregister"
)

// Event is the envelope emitted around every collection operation. Input,
// Output and Filter are diagnostic payloads; Filter carries the describe()
// rendering of the filter the operation ran with, when there was one.
type Event struct {
	Type       EventType `json:"type"`
	Timestamp  int64     `json:"timestamp"` // Unix milliseconds
	Operation  string    `json:"operation"`
	Collection *string   `json:"collection,omitempty"`
	Input      any       `json:"input,omitempty"`
	Output     any       `json:"output,omitempty"`
	Filter     *string   `json:"filter,omitempty"`
	Error      *string   `json:"error,omitempty"`
	Duration   *int64    `json:"duration,omitempty"` // milliseconds
}

func createEvent(
	eventType EventType,
	operation string,
	collectionName string,
	input any,
	output any,
	filterDescription *string,
	err *string,
	startTime time.Time,
) Event {
	var duration *int64
	if !startTime.IsZero() {
		d := time.Since(startTime).Milliseconds()
		duration = &d
	}

	return Event{
		Type:       eventType,
		Timestamp:  time.Now().UnixMilli(),
		Operation:  operation,
		Collection: &collectionName,
		Input:      input,
		Output:     output,
		Filter:     filterDescription,
		Error:      err,
		Duration:   duration,
	}
}
