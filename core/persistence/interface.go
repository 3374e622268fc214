// Package persistence implements the fetch/query orchestrator that consumes
// the filter capability: collections of typed entities backed by an opaque
// document store, filtered in memory one (entity, record) pair at a time.
package persistence

import (
	"context"

	"github.com/SpectralDragon/percy/core/schema"
)

// DocumentIDField is the document field holding the stable identifier of a
// stored entity. Inserts generate one when the entity does not carry it.
const DocumentIDField = "id"

// Store is the opaque storage boundary the collection layer runs on. A Store
// deals purely in documents and knows nothing about entities or filters;
// filtering happens above it, during the fetch pass.
type Store interface {
	// CreateCollection ensures the named collection exists.
	CreateCollection(ctx context.Context, collection string) error

	// SelectDocuments returns every document in the collection, in a stable
	// store order.
	SelectDocuments(ctx context.Context, collection string) ([]schema.Document, error)

	// InsertDocuments persists the given documents. Each document carries its
	// identifier under DocumentIDField.
	InsertDocuments(ctx context.Context, collection string, docs []schema.Document) error

	// UpdateDocument replaces the document with the given identifier and
	// returns the number of documents affected.
	UpdateDocument(ctx context.Context, collection string, id string, doc schema.Document) (int64, error)

	// DeleteDocuments removes the documents with the given identifiers and
	// returns the number of documents affected.
	DeleteDocuments(ctx context.Context, collection string, ids []string) (int64, error)
}

// EventCallback is invoked for every event a subscription matches.
type EventCallback func(ctx context.Context, event Event) error

// RegisterSubscriptionOptions defines options for registering a subscription.
type RegisterSubscriptionOptions struct {
	Event       EventType
	Label       *string
	Description *string
	Callback    EventCallback
}

// SubscriptionInfo describes a registered subscription.
type SubscriptionInfo struct {
	Event       EventType `json:"event"`
	Label       *string   `json:"label,omitempty"`
	Description *string   `json:"description,omitempty"`
	Unsubscribe func()    `json:"-"`
}
