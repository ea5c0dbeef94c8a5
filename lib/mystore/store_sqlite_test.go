package mystore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSqliteStoreRoundTrip(t *testing.T) {
	c := context.TODO()
	store, cleanup, err := NewSqliteStore[thing](c, filepath.Join(t.TempDir(), "store.db"))
	assert.NoError(t, err)
	defer cleanup()

	t.Run("Load of never-saved key returns empty", func(t *testing.T) {
		_, exists, err := store.Get(c, "never-saved")
		assert.NoError(t, err)
		assert.False(t, exists)

		all, err := store.List(c)
		assert.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("Save then load is deep-equal", func(t *testing.T) {
		saved := thing{UID: "42", Name: "deep", Count: 7}
		err := store.Put(c, saved.UID, saved)
		assert.NoError(t, err)

		got, exists, err := store.Get(c, "42")
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, saved, got)
	})

	t.Run("Overwrite replaces document", func(t *testing.T) {
		err := store.Put(c, "42", thing{UID: "42", Name: "replaced", Count: 8})
		assert.NoError(t, err)

		got, exists, err := store.Get(c, "42")
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, "replaced", got.Name)
	})
}

func TestSqliteStoreCorruptDocument(t *testing.T) {
	c := context.TODO()
	store, cleanup, err := NewSqliteStore[thing](c, filepath.Join(t.TempDir(), "store.db"))
	assert.NoError(t, err)
	defer cleanup()

	err = store.Put(c, "ok", thing{UID: "ok", Name: "fine", Count: 1})
	assert.NoError(t, err)

	// corrupt a stored document behind the store's back
	_, err = store.db.Exec(`UPDATE records SET doc = 'not-json{' WHERE uid = 'ok'`)
	assert.NoError(t, err)

	t.Run("Corrupt document reads as absent", func(t *testing.T) {
		_, exists, err := store.Get(c, "ok")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Corrupt document is skipped on list", func(t *testing.T) {
		all, err := store.List(c)
		assert.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestSqliteStoreTransaction(t *testing.T) {
	c := context.TODO()
	store, cleanup, err := NewSqliteStore[thing](c, filepath.Join(t.TempDir(), "store.db"))
	assert.NoError(t, err)
	defer cleanup()

	err = store.RunInTransaction(c, func(c context.Context) error {
		if err := store.Put(c, "a", thing{UID: "a"}); err != nil {
			return err
		}
		return store.Put(c, "b", thing{UID: "b"})
	})
	assert.NoError(t, err)

	all, err := store.List(c)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	err = store.RunInTransaction(c, func(c context.Context) error {
		if err := store.Put(c, "c", thing{UID: "c"}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.Error(t, err)

	_, exists, err := store.Get(c, "c")
	assert.NoError(t, err)
	assert.False(t, exists)
}
