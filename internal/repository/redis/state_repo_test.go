package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/vikrantan5/FitSphere-sub000/internal/config"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository/storetest"
)

func newTestStore(t *testing.T, ttl time.Duration) (repository.StateStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewClient(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	if err := Ping(context.Background(), client); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	return NewStateRepository(client, ttl), mr
}

func TestStateStoreContract(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	storetest.Run(t, store)
}

func TestSessionExpiresWhenIdle(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, time.Hour)

	if err := store.Set(ctx, "sid", repository.KeyToken, []byte("tok")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL(hashKey("sid")); ttl != time.Hour {
		t.Fatalf("TTL = %v, want 1h", ttl)
	}

	mr.FastForward(30 * time.Minute)
	// A write pushes the expiry forward for the whole session.
	if err := store.Set(ctx, "sid", repository.KeyCart, []byte(`[]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(45 * time.Minute)
	if _, err := store.Get(ctx, "sid", repository.KeyToken); err != nil {
		t.Fatalf("token expired early: %v", err)
	}

	mr.FastForward(time.Hour)
	if _, err := store.Get(ctx, "sid", repository.KeyToken); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Get after expiry = %v, want ErrNotFound", err)
	}
}
