package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SpectralDragon/percy/core/filter"
	"github.com/SpectralDragon/percy/core/schema"
	"github.com/SpectralDragon/percy/utils"
	"github.com/asaidimu/go-events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Collection is a typed collection of entities backed by a document Store.
// Reads run a filtering pass: every stored document is decoded to an entity
// and the filter's Decide is invoked once per (entity, document) pair, in
// store order. Filters are never translated into store queries.
type Collection[E any] struct {
	name          string
	store         Store
	logger        *zap.Logger
	bus           *events.TypedEventBus[Event]
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
}

// NewCollection creates a collection with the given name on top of a Store,
// ensuring the underlying collection exists.
func NewCollection[E any](ctx context.Context, name string, store Store, logger *zap.Logger) (*Collection[E], error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bus, err := events.NewTypedEventBus[Event](events.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("could not initialize event bus: %w", err)
	}
	if err := store.CreateCollection(ctx, name); err != nil {
		return nil, fmt.Errorf("failed to create collection '%s': %w", name, err)
	}

	return &Collection[E]{
		name:          name,
		store:         store,
		logger:        logger,
		bus:           bus,
		subscriptions: map[string]*SubscriptionInfo{},
	}, nil
}

// Name returns the collection name.
func (c *Collection[E]) Name() string {
	return c.name
}

// emitEvent is a helper method to emit events.
func (c *Collection[E]) emitEvent(event Event) {
	if c.bus != nil {
		c.bus.Emit(string(event.Type), event)
	}
}

// withEvents wraps an operation with start, success, and failure events.
func (c *Collection[E]) withEvents(
	operation string,
	startEventType EventType,
	successEventType EventType,
	failedEventType EventType,
	input any,
	filterDescription *string,
	fn func() (any, error),
) (any, error) {
	startTime := time.Now()
	c.emitEvent(createEvent(startEventType, operation, c.name, input, nil, filterDescription, nil, startTime))

	result, err := fn()
	if err != nil {
		errStr := err.Error()
		c.emitEvent(createEvent(failedEventType, operation, c.name, input, nil, filterDescription, &errStr, startTime))
		return nil, err
	}

	c.emitEvent(createEvent(successEventType, operation, c.name, input, result, filterDescription, nil, startTime))
	return result, nil
}

// describeFilter renders a filter for diagnostics; nil filters match all.
func describeFilter[E any](f filter.Filter[E]) *string {
	if f == nil {
		return nil
	}
	description := f.Describe()
	return &description
}

// Fetch returns every entity accepted by the filter, in store order. A nil
// filter matches everything. Decide is called exactly once per pair, so a
// panicking predicate aborts the whole fetch.
func (c *Collection[E]) Fetch(ctx context.Context, f filter.Filter[E]) ([]E, error) {
	description := describeFilter(f)

	result, err := c.withEvents("fetch", EntityFetchStart, EntityFetchSuccess, EntityFetchFailed, nil, description, func() (any, error) {
		docs, err := c.store.SelectDocuments(ctx, c.name)
		if err != nil {
			return nil, fmt.Errorf("failed to select documents from collection '%s': %w", c.name, err)
		}

		entities := make([]E, 0, len(docs))
		for _, doc := range docs {
			entity, err := utils.DocumentToEntity[E](doc)
			if err != nil {
				return nil, fmt.Errorf("failed to decode document in collection '%s': %w", c.name, err)
			}
			if f == nil || f.Decide(entity, doc) {
				entities = append(entities, entity)
			}
		}

		if description != nil {
			c.logger.Debug("Filtering pass complete",
				zap.String("collection", c.name),
				zap.String("filter", *description),
				zap.Int("candidates", len(docs)),
				zap.Int("matched", len(entities)))
		}
		return entities, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]E), nil
}

// FetchOne returns the first entity accepted by the filter, in store order.
// The filtering pass stops at the first match; the second return reports
// whether any entity matched. Subscribers observe it under the fetch event
// types with the "fetch_one" operation.
func (c *Collection[E]) FetchOne(ctx context.Context, f filter.Filter[E]) (E, bool, error) {
	var zero E
	description := describeFilter(f)

	var matched E
	var found bool
	_, err := c.withEvents("fetch_one", EntityFetchStart, EntityFetchSuccess, EntityFetchFailed, nil, description, func() (any, error) {
		docs, err := c.store.SelectDocuments(ctx, c.name)
		if err != nil {
			return nil, fmt.Errorf("failed to select documents from collection '%s': %w", c.name, err)
		}

		for _, doc := range docs {
			entity, err := utils.DocumentToEntity[E](doc)
			if err != nil {
				return nil, fmt.Errorf("failed to decode document in collection '%s': %w", c.name, err)
			}
			if f == nil || f.Decide(entity, doc) {
				matched = entity
				found = true
				return entity, nil
			}
		}
		return nil, nil
	})
	if err != nil {
		return zero, false, err
	}
	return matched, found, nil
}

// Count returns the number of entities the filter accepts. It runs a full
// filtering pass, so subscribers observe it as a "fetch" operation.
func (c *Collection[E]) Count(ctx context.Context, f filter.Filter[E]) (int, error) {
	entities, err := c.Fetch(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(entities), nil
}

// Insert persists the given entities and returns them as stored. Entities
// without an id field are assigned a generated one.
func (c *Collection[E]) Insert(ctx context.Context, entities ...E) ([]E, error) {
	result, err := c.withEvents("insert", EntityInsertStart, EntityInsertSuccess, EntityInsertFailed, entities, nil, func() (any, error) {
		docs := make([]schema.Document, 0, len(entities))
		for _, entity := range entities {
			doc, err := utils.EntityToDocument(entity)
			if err != nil {
				return nil, fmt.Errorf("failed to encode entity for collection '%s': %w", c.name, err)
			}
			if id, ok := doc[DocumentIDField].(string); !ok || id == "" {
				doc[DocumentIDField] = uuid.New().String()
			}
			docs = append(docs, doc)
		}

		if err := c.store.InsertDocuments(ctx, c.name, docs); err != nil {
			return nil, fmt.Errorf("failed to insert documents into collection '%s': %w", c.name, err)
		}

		stored := make([]E, 0, len(docs))
		for _, doc := range docs {
			entity, err := utils.DocumentToEntity[E](doc)
			if err != nil {
				return nil, fmt.Errorf("failed to decode inserted document in collection '%s': %w", c.name, err)
			}
			stored = append(stored, entity)
		}
		return stored, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]E), nil
}

// Update replaces the stored document whose id matches the entity's and
// returns the number of documents affected.
func (c *Collection[E]) Update(ctx context.Context, entity E) (int64, error) {
	result, err := c.withEvents("update", EntityUpdateStart, EntityUpdateSuccess, EntityUpdateFailed, entity, nil, func() (any, error) {
		doc, err := utils.EntityToDocument(entity)
		if err != nil {
			return nil, fmt.Errorf("failed to encode entity for collection '%s': %w", c.name, err)
		}
		id, ok := doc[DocumentIDField].(string)
		if !ok || id == "" {
			return nil, fmt.Errorf("entity for collection '%s' has no '%s' field to update by", c.name, DocumentIDField)
		}

		affected, err := c.store.UpdateDocument(ctx, c.name, id, doc)
		if err != nil {
			return nil, fmt.Errorf("failed to update document '%s' in collection '%s': %w", id, c.name, err)
		}
		return affected, nil
	})
	if err != nil {
		return 0, err
	}

	return result.(int64), nil
}

// Delete removes every entity the filter accepts and returns the number of
// documents affected. A nil filter is rejected; deleting a whole collection
// must be spelled out with an explicit match-all filter.
func (c *Collection[E]) Delete(ctx context.Context, f filter.Filter[E]) (int64, error) {
	if f == nil {
		return 0, fmt.Errorf("refusing to delete from collection '%s' without a filter", c.name)
	}
	description := describeFilter(f)

	result, err := c.withEvents("delete", EntityDeleteStart, EntityDeleteSuccess, EntityDeleteFailed, nil, description, func() (any, error) {
		docs, err := c.store.SelectDocuments(ctx, c.name)
		if err != nil {
			return nil, fmt.Errorf("failed to select documents from collection '%s': %w", c.name, err)
		}

		var ids []string
		for _, doc := range docs {
			entity, err := utils.DocumentToEntity[E](doc)
			if err != nil {
				return nil, fmt.Errorf("failed to decode document in collection '%s': %w", c.name, err)
			}
			if !f.Decide(entity, doc) {
				continue
			}
			id, ok := doc[DocumentIDField].(string)
			if !ok || id == "" {
				c.logger.Warn("Matched document has no id, skipping delete",
					zap.String("collection", c.name))
				continue
			}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			return int64(0), nil
		}

		affected, err := c.store.DeleteDocuments(ctx, c.name, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to delete documents from collection '%s': %w", c.name, err)
		}
		return affected, nil
	})
	if err != nil {
		return 0, err
	}

	return result.(int64), nil
}

// RegisterSubscription registers a collection-scoped subscription and
// returns its identifier.
func (c *Collection[E]) RegisterSubscription(options RegisterSubscriptionOptions) string {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	unsubscribe := c.bus.Subscribe(string(options.Event), options.Callback)
	callbackID := uuid.New().String()

	c.subscriptions[callbackID] = &SubscriptionInfo{
		Event:       options.Event,
		Unsubscribe: unsubscribe,
		Label:       options.Label,
		Description: options.Description,
	}

	c.emitEvent(createEvent(SubscriptionRegister, "register_subscription", c.name,
		map[string]any{"event": options.Event, "subscriptionId": callbackID}, nil, nil, nil, time.Now()))
	return callbackID
}

// UnregisterSubscription removes a collection-scoped subscription.
func (c *Collection[E]) UnregisterSubscription(id string) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	info := c.subscriptions[id]
	if info != nil {
		info.Unsubscribe()
		delete(c.subscriptions, id)
	}

	c.emitEvent(createEvent(SubscriptionUnregister, "unregister_subscription", c.name,
		map[string]any{"subscriptionId": id}, nil, nil, nil, time.Now()))
}

// Subscriptions returns all registered collection-scoped subscriptions.
func (c *Collection[E]) Subscriptions() []SubscriptionInfo {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	infos := make([]SubscriptionInfo, 0, len(c.subscriptions))
	for _, info := range c.subscriptions {
		infos = append(infos, *info)
	}
	return infos
}
