// Package storetest checks a repository.StateStore implementation against
// the behavior the session manager and cart rely on.
package storetest

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/vikrantan5/FitSphere-sub000/internal/repository"
)

// Run exercises store. Session ids are random so a shared backing database
// can be reused between runs.
func Run(t *testing.T, store repository.StateStore) {
	t.Helper()

	t.Run("missing key is ErrNotFound", func(t *testing.T) {
		_, err := store.Get(context.Background(), uuid.NewString(), repository.KeyToken)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("Get = %v, want ErrNotFound", err)
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		ctx := context.Background()
		sid := uuid.NewString()
		mustSet(t, store, sid, repository.KeyCart, []byte(`[]`))
		mustSet(t, store, sid, repository.KeyCart, []byte(`[{"product_id":"p-1"}]`))
		expect(t, store, sid, repository.KeyCart, []byte(`[{"product_id":"p-1"}]`))

		if _, err := store.Get(ctx, sid, repository.KeyToken); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("unset key in a live session = %v, want ErrNotFound", err)
		}
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		a, b := uuid.NewString(), uuid.NewString()
		mustSet(t, store, a, repository.KeyRole, []byte("admin"))
		mustSet(t, store, b, repository.KeyRole, []byte("user"))
		expect(t, store, a, repository.KeyRole, []byte("admin"))
		expect(t, store, b, repository.KeyRole, []byte("user"))
	})

	t.Run("delete removes only the listed keys", func(t *testing.T) {
		ctx := context.Background()
		sid := uuid.NewString()
		mustSet(t, store, sid, repository.KeyToken, []byte("tok"))
		mustSet(t, store, sid, repository.KeyRole, []byte("user"))
		mustSet(t, store, sid, repository.KeyCart, []byte(`[]`))

		if err := store.Delete(ctx, sid, repository.KeyToken, repository.KeyRole); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		for _, key := range []string{repository.KeyToken, repository.KeyRole} {
			if _, err := store.Get(ctx, sid, key); !errors.Is(err, repository.ErrNotFound) {
				t.Errorf("%s after Delete = %v, want ErrNotFound", key, err)
			}
		}
		expect(t, store, sid, repository.KeyCart, []byte(`[]`))
	})

	t.Run("delete of missing keys is not an error", func(t *testing.T) {
		ctx := context.Background()
		sid := uuid.NewString()
		if err := store.Delete(ctx, sid, repository.KeyToken, repository.KeyUser); err != nil {
			t.Fatalf("Delete on unknown session: %v", err)
		}
		mustSet(t, store, sid, repository.KeyCart, []byte(`[]`))
		if err := store.Delete(ctx, sid, repository.KeyUser); err != nil {
			t.Fatalf("Delete of unset key: %v", err)
		}
		if err := store.Delete(ctx, sid); err != nil {
			t.Fatalf("Delete with no keys: %v", err)
		}
		expect(t, store, sid, repository.KeyCart, []byte(`[]`))
	})
}

func mustSet(t *testing.T, store repository.StateStore, sid, key string, value []byte) {
	t.Helper()
	if err := store.Set(context.Background(), sid, key, value); err != nil {
		t.Fatalf("Set %s: %v", key, err)
	}
}

func expect(t *testing.T, store repository.StateStore, sid, key string, want []byte) {
	t.Helper()
	got, err := store.Get(context.Background(), sid, key)
	if err != nil {
		t.Fatalf("Get %s: %v", key, err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Get %s = %q, want %q", key, got, want)
	}
}
