package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/SaveNTravel/saventravel-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_EqualityPredicate(t *testing.T) {
	ds := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, ds.Set(ctx, "friendRequests", "r1", map[string]interface{}{"from": "a", "to": "b", "status": "pending"}))
	require.NoError(t, ds.Set(ctx, "friendRequests", "r2", map[string]interface{}{"from": "b", "to": "a", "status": "accepted"}))

	docs, err := ds.Query(ctx, "friendRequests", store.Eq("from", "a"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "r1", docs[0].ID)
}

func TestQuery_ArrayContains(t *testing.T) {
	ds := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, ds.Set(ctx, "Splits", "s1", map[string]interface{}{
		"authoredBy": "a",
		"sharedWith": []string{"b", "c"},
	}))
	require.NoError(t, ds.Set(ctx, "Splits", "s2", map[string]interface{}{
		"authoredBy": "a",
		"sharedWith": []string{"d"},
	}))

	docs, err := ds.Query(ctx, "Splits", store.ArrayContains("sharedWith", "b"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "s1", docs[0].ID)
}

func TestQuery_CombinedPredicates(t *testing.T) {
	ds := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, ds.Set(ctx, "Splits", "s1", map[string]interface{}{
		"authoredBy": "a", "tripCode": "X", "sharedWith": []string{"b"},
	}))
	require.NoError(t, ds.Set(ctx, "Splits", "s2", map[string]interface{}{
		"authoredBy": "a", "tripCode": "Y", "sharedWith": []string{"b"},
	}))

	docs, err := ds.Query(ctx, "Splits",
		store.Eq("authoredBy", "a"),
		store.ArrayContains("sharedWith", "b"),
		store.Eq("tripCode", "X"),
	)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "s1", docs[0].ID)
}

func TestQuery_InsertionOrder(t *testing.T) {
	ds := NewDocumentStore()
	ctx := context.Background()

	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, ds.Set(ctx, "Splits", id, map[string]interface{}{"authoredBy": "a"}))
	}

	docs, err := ds.Query(ctx, "Splits")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "s1", docs[0].ID)
	assert.Equal(t, "s3", docs[2].ID)
}

func TestGet_NotFound(t *testing.T) {
	ds := NewDocumentStore()

	_, err := ds.Get(context.Background(), "trips", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdate_MergesPartialData(t *testing.T) {
	ds := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, ds.Set(ctx, "friendRequests", "r1", map[string]interface{}{"from": "a", "status": "pending"}))
	require.NoError(t, ds.Update(ctx, "friendRequests", "r1", map[string]interface{}{"status": "accepted"}))

	doc, err := ds.Get(ctx, "friendRequests", "r1")
	require.NoError(t, err)
	assert.Equal(t, "accepted", doc.Data["status"])
	assert.Equal(t, "a", doc.Data["from"])
}

func TestUpdate_NotFound(t *testing.T) {
	ds := NewDocumentStore()

	err := ds.Update(context.Background(), "friendRequests", "missing", map[string]interface{}{"status": "accepted"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDelete_MissingDocumentIsNotAnError(t *testing.T) {
	ds := NewDocumentStore()
	assert.NoError(t, ds.Delete(context.Background(), "trips", "missing"))
}

func TestAdd_GeneratesUniqueIDs(t *testing.T) {
	ds := NewDocumentStore()
	ctx := context.Background()

	id1, err := ds.Add(ctx, "Splits", map[string]interface{}{"authoredBy": "a"})
	require.NoError(t, err)
	id2, err := ds.Add(ctx, "Splits", map[string]interface{}{"authoredBy": "a"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

func TestNumbersRoundTripAsJSONNumber(t *testing.T) {
	ds := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, ds.Set(ctx, "Splits", "s1", map[string]interface{}{
		"price": json.Number("12.50"),
	}))

	doc, err := ds.Get(ctx, "Splits", "s1")
	require.NoError(t, err)
	price, ok := doc.Data["price"].(json.Number)
	require.True(t, ok)
	assert.Equal(t, "12.50", price.String())
}

func TestDocumentsAreIsolatedFromCallerMutation(t *testing.T) {
	ds := NewDocumentStore()
	ctx := context.Background()

	data := map[string]interface{}{"status": "pending"}
	require.NoError(t, ds.Set(ctx, "friendRequests", "r1", data))
	data["status"] = "accepted"

	doc, err := ds.Get(ctx, "friendRequests", "r1")
	require.NoError(t, err)
	assert.Equal(t, "pending", doc.Data["status"])

	doc.Data["status"] = "accepted"
	again, err := ds.Get(ctx, "friendRequests", "r1")
	require.NoError(t, err)
	assert.Equal(t, "pending", again.Data["status"])
}
