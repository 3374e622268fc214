// Package utils provides the codec between Go entity structs and the
// documents the persistence layer stores and filters against.
package utils

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/SpectralDragon/percy/core/schema"
)

// EntityToDocument converts an entity struct (or pointer to struct) into a
// schema.Document via a JSON round trip, respecting `json` tags. Nested
// structs become nested map values; numbers become float64, as
// encoding/json decodes them.
func EntityToDocument[E any](entity E) (schema.Document, error) {
	val := reflect.ValueOf(entity)
	if !val.IsValid() {
		return nil, fmt.Errorf("entity cannot be nil")
	}
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("entity cannot be a nil pointer")
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entity must be a struct or a pointer to a struct, got %s", val.Kind())
	}

	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}

	var doc schema.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity into document: %w", err)
	}
	return doc, nil
}

// DocumentToEntity converts a schema.Document into a new instance of the
// entity type E. It is the inverse of EntityToDocument.
func DocumentToEntity[E any](doc schema.Document) (E, error) {
	var zero E
	if doc == nil {
		return zero, fmt.Errorf("document cannot be nil")
	}

	typ := reflect.TypeOf(zero)
	if typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return zero, fmt.Errorf("entity type must be a struct (or pointer to struct)")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal document: %w", err)
	}

	var entity E
	if err := json.Unmarshal(raw, &entity); err != nil {
		return zero, fmt.Errorf("failed to unmarshal document into entity: %w", err)
	}
	return entity, nil
}
