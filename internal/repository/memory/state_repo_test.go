package memory

import (
	"context"
	"testing"

	"github.com/vikrantan5/FitSphere-sub000/internal/repository"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository/storetest"
)

func TestStateStoreContract(t *testing.T) {
	storetest.Run(t, NewStateRepository())
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewStateRepository()
	_ = store.Set(ctx, "sid", repository.KeyCart, []byte("abc"))

	v, _ := store.Get(ctx, "sid", repository.KeyCart)
	v[0] = 'x'
	if again, _ := store.Get(ctx, "sid", repository.KeyCart); string(again) != "abc" {
		t.Fatalf("stored value mutated through Get: %q", again)
	}
}
