package crypto

import (
	"context"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "p@ss1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "p@ss1" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected hash: %q", hash)
	}

	ok, err := h.Compare(ctx, "p@ss1", hash)
	if err != nil || !ok {
		t.Fatalf("compare with correct password: ok=%v err=%v", ok, err)
	}

	ok, err = h.Compare(ctx, "wrong", hash)
	if err != nil {
		t.Fatalf("compare with wrong password errored: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not match")
	}
}

func TestHasher_SaltedHashesDiffer(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 1)
	ctx := context.Background()

	a, _ := h.Hash(ctx, "same")
	b, _ := h.Hash(ctx, "same")
	if a == b {
		t.Fatal("two hashes of the same password must differ (salt)")
	}
}

func TestHasher_MalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 1)

	ok, err := h.Compare(context.Background(), "anything", "not-a-bcrypt-hash")
	if err != nil {
		t.Fatalf("malformed hash must not error: %v", err)
	}
	if ok {
		t.Fatal("malformed hash must not match")
	}
}

func TestHasher_ContextCancelledWhileQueued(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 1)

	// Occupy the only slot so the next caller has to queue.
	h.slots <- struct{}{}
	defer func() { <-h.slots }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.Hash(ctx, "pass"); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := h.Compare(ctx, "pass", "hash"); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestHasher_Concurrent(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hash, err := h.Hash(ctx, "pass")
			if err != nil {
				t.Errorf("hash: %v", err)
				return
			}
			if ok, _ := h.Compare(ctx, "pass", hash); !ok {
				t.Error("round trip failed")
			}
		}()
	}
	wg.Wait()
}

func TestNewHasher_Defaults(t *testing.T) {
	h := NewHasher(0, 0)
	if h.cost != defaultCost {
		t.Fatalf("expected default cost %d, got %d", defaultCost, h.cost)
	}
	if cap(h.slots) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, cap(h.slots))
	}
}
