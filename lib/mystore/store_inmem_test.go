package mystore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type thing struct {
	UID   string
	Name  string
	Count int
}

func TestInMemoryStore(t *testing.T) {
	c := context.TODO()
	store, cleanup, err := NewInMemoryStore[thing](c)
	assert.NoError(t, err)
	defer cleanup()

	t.Run("Get on empty store", func(t *testing.T) {
		_, exists, err := store.Get(c, "missing")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Put and get", func(t *testing.T) {
		err := store.Put(c, "1", thing{UID: "1", Name: "one", Count: 1})
		assert.NoError(t, err)

		got, exists, err := store.Get(c, "1")
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, thing{UID: "1", Name: "one", Count: 1}, got)
	})

	t.Run("List", func(t *testing.T) {
		err := store.Put(c, "2", thing{UID: "2", Name: "two", Count: 2})
		assert.NoError(t, err)

		all, err := store.List(c)
		assert.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("Transaction rolls back on error", func(t *testing.T) {
		err := store.RunInTransaction(c, func(c context.Context) error {
			return fmt.Errorf("forced error")
		})
		assert.Error(t, err)

		// store still usable after rollback
		_, exists, err := store.Get(c, "1")
		assert.NoError(t, err)
		assert.True(t, exists)
	})
}
