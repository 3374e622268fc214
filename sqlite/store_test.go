package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/SpectralDragon/percy/core/filter"
	"github.com/SpectralDragon/percy/core/persistence"
	"github.com/SpectralDragon/percy/core/predicate"
	"github.com/SpectralDragon/percy/core/schema"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func doc(id, name string, age float64) schema.Document {
	return schema.Document{"id": id, "name": name, "age": age}
}

func TestStore_InsertAndSelect(t *testing.T) {
	store := NewStore(openTestDB(t), nil, nil)
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, "users"))
	require.NoError(t, store.InsertDocuments(ctx, "users", []schema.Document{
		doc("u1", "alice", 30),
		doc("u2", "bob", 17),
	}))

	docs, err := store.SelectDocuments(ctx, "users")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Insertion order is the store order.
	assert.Equal(t, "alice", docs[0]["name"])
	assert.Equal(t, "bob", docs[1]["name"])
	assert.Equal(t, float64(30), docs[0]["age"])
}

func TestStore_CreateCollectionIsIdempotent(t *testing.T) {
	store := NewStore(openTestDB(t), nil, nil)
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, "users"))
	require.NoError(t, store.CreateCollection(ctx, "users"))
}

func TestStore_InsertRequiresID(t *testing.T) {
	store := NewStore(openTestDB(t), nil, nil)
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, "users"))
	err := store.InsertDocuments(ctx, "users", []schema.Document{{"name": "ghost"}})
	assert.Error(t, err)
}

func TestStore_UpdateDocument(t *testing.T) {
	store := NewStore(openTestDB(t), nil, nil)
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, "users"))
	require.NoError(t, store.InsertDocuments(ctx, "users", []schema.Document{doc("u1", "alice", 30)}))

	affected, err := store.UpdateDocument(ctx, "users", "u1", doc("u1", "alice", 31))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = store.UpdateDocument(ctx, "users", "missing", doc("missing", "x", 1))
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	docs, err := store.SelectDocuments(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, float64(31), docs[0]["age"])
}

func TestStore_DeleteDocuments(t *testing.T) {
	store := NewStore(openTestDB(t), nil, nil)
	ctx := context.Background()

	require.NoError(t, store.CreateCollection(ctx, "users"))
	require.NoError(t, store.InsertDocuments(ctx, "users", []schema.Document{
		doc("u1", "alice", 30),
		doc("u2", "bob", 17),
		doc("u3", "carol", 45),
	}))

	affected, err := store.DeleteDocuments(ctx, "users", []string{"u1", "u3"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	affected, err = store.DeleteDocuments(ctx, "users", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	docs, err := store.SelectDocuments(ctx, "users")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "bob", docs[0]["name"])
}

func TestStore_Transactions(t *testing.T) {
	store := NewStore(openTestDB(t), nil, nil)
	ctx := context.Background()
	require.NoError(t, store.CreateCollection(ctx, "users"))

	// Rolled-back writes never become visible.
	tx, err := store.StartTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertDocuments(ctx, "users", []schema.Document{doc("u1", "alice", 30)}))
	require.NoError(t, tx.Rollback(ctx))

	docs, err := store.SelectDocuments(ctx, "users")
	require.NoError(t, err)
	assert.Empty(t, docs)

	// Committed writes do.
	tx, err = store.StartTransaction(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertDocuments(ctx, "users", []schema.Document{doc("u2", "bob", 17)}))
	require.NoError(t, tx.Commit(ctx))

	docs, err = store.SelectDocuments(ctx, "users")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	// Nested transactions and misplaced commit/rollback are rejected.
	tx, err = store.StartTransaction(ctx)
	require.NoError(t, err)
	_, err = tx.StartTransaction(ctx)
	assert.Error(t, err)
	require.NoError(t, tx.Rollback(ctx))
	assert.Error(t, store.Commit(ctx))
	assert.Error(t, store.Rollback(ctx))
}

type item struct {
	ID    string  `json:"id,omitempty"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestStore_BacksACollectionFilteringPass(t *testing.T) {
	store := NewStore(openTestDB(t), nil, nil)
	ctx := context.Background()

	col, err := persistence.NewCollection[item](ctx, "items", store, nil)
	require.NoError(t, err)

	_, err = col.Insert(ctx,
		item{Name: "laptop", Price: 1200},
		item{Name: "mouse", Price: 25},
		item{Name: "keyboard", Price: 90},
	)
	require.NoError(t, err)

	cheap := filter.Or[item](
		filter.NewPredicateFilter[item](predicate.Lt("price", 100)),
		filter.NewFunctionFilter(func(i item) bool { return i.Name == "laptop" }),
	)

	matched, err := col.Fetch(ctx, cheap)
	require.NoError(t, err)
	assert.Len(t, matched, 3)

	expensive := filter.Not[item](filter.NewPredicateFilter[item](predicate.Lt("price", 100)))
	matched, err = col.Fetch(ctx, expensive)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "laptop", matched[0].Name)
}
