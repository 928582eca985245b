package credentials

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memoryKeyStore struct {
	key string
	err error
}

func (m *memoryKeyStore) GeminiAPIKey(ctx context.Context) (string, error) {
	return m.key, m.err
}

func waitPending(t *testing.T, sel *Selector, sessionID string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !sel.Pending(sessionID) {
		if time.Now().After(deadline) {
			t.Fatalf("selection for %s never became pending", sessionID)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSelectorPrecedence(t *testing.T) {
	ctx := context.Background()
	store := &memoryKeyStore{key: "stored"}

	sel := NewSelector(SelectorOptions{Store: store})
	if key, _ := sel.APIKey(ctx, "s1"); key != "stored" {
		t.Fatalf("APIKey = %q, want stored", key)
	}
	if err := sel.SelectKey(ctx, "s1", " picked "); err != nil {
		t.Fatalf("SelectKey error: %v", err)
	}
	if key, _ := sel.APIKey(ctx, "s1"); key != "picked" {
		t.Fatalf("APIKey = %q, want picked", key)
	}
	if store.key != "stored" {
		t.Fatalf("selection must not be persisted, store has %q", store.key)
	}

	fixed := NewSelector(SelectorOptions{EnvKey: "env", Store: store})
	if key, _ := fixed.APIKey(ctx, "s1"); key != "env" {
		t.Fatalf("APIKey = %q, want env", key)
	}
	if !fixed.Configured() {
		t.Fatal("expected configured selector")
	}
}

func TestSelectionIsScopedToSession(t *testing.T) {
	ctx := context.Background()
	sel := NewSelector(SelectorOptions{})

	if err := sel.SelectKey(ctx, "visitor-a", "key-a"); err != nil {
		t.Fatalf("SelectKey error: %v", err)
	}
	a := sel.ForSession("visitor-a")
	b := sel.ForSession("visitor-b")

	if key, _ := a.APIKey(ctx); key != "key-a" {
		t.Fatalf("session a key = %q, want key-a", key)
	}
	if ok, _ := b.HasSelectedKey(ctx); ok {
		t.Fatal("session b must not see session a's key")
	}
	if key, _ := b.APIKey(ctx); key != "" {
		t.Fatalf("session b key = %q, want empty", key)
	}

	a.Release()
	if ok, _ := a.HasSelectedKey(ctx); ok {
		t.Fatal("released session must not keep its key")
	}
}

func TestSelectKeyOnlyReleasesOwnSession(t *testing.T) {
	sel := NewSelector(SelectorOptions{Window: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	doneA := make(chan error, 1)
	doneB := make(chan error, 1)
	go func() { doneA <- sel.ForSession("a").OpenSelectKey(ctx) }()
	go func() { doneB <- sel.ForSession("b").OpenSelectKey(ctx) }()
	waitPending(t, sel, "a")
	waitPending(t, sel, "b")

	if err := sel.SelectKey(context.Background(), "a", "abc"); err != nil {
		t.Fatalf("SelectKey error: %v", err)
	}
	select {
	case err := <-doneA:
		if err != nil {
			t.Fatalf("OpenSelectKey(a) error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("OpenSelectKey(a) did not return after selection")
	}
	select {
	case <-doneB:
		t.Fatal("selection for a released session b")
	case <-time.After(20 * time.Millisecond):
	}
	if !sel.Pending("b") {
		t.Fatal("session b should still be waiting")
	}
	if sel.Pending("a") {
		t.Fatal("session a should have no pending selection")
	}

	cancel()
	if err := <-doneB; !errors.Is(err, context.Canceled) {
		t.Fatalf("OpenSelectKey(b) error = %v, want context.Canceled", err)
	}
}

func TestSelectorHasSelectedKey(t *testing.T) {
	ctx := context.Background()
	sel := NewSelector(SelectorOptions{})
	ok, err := sel.HasSelectedKey(ctx, "s1")
	if err != nil || ok {
		t.Fatalf("HasSelectedKey = %v, %v; want false", ok, err)
	}

	failing := NewSelector(SelectorOptions{Store: &memoryKeyStore{err: errors.New("db down")}})
	if _, err := failing.HasSelectedKey(ctx, "s1"); err == nil {
		t.Fatal("expected store error")
	}
}

func TestOpenSelectKeyWindowElapses(t *testing.T) {
	sel := NewSelector(SelectorOptions{Window: 5 * time.Millisecond})
	if err := sel.OpenSelectKey(context.Background(), "s1"); err != nil {
		t.Fatalf("OpenSelectKey error: %v", err)
	}
	if sel.Pending("s1") {
		t.Fatal("expected waiter to be removed after window")
	}
}

func TestOpenSelectKeyContextCancelled(t *testing.T) {
	sel := NewSelector(SelectorOptions{Window: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sel.OpenSelectKey(ctx, "s1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("OpenSelectKey error = %v, want context.Canceled", err)
	}
}

func TestSelectKeyRejectsEmpty(t *testing.T) {
	sel := NewSelector(SelectorOptions{})
	if err := sel.SelectKey(context.Background(), "s1", "  "); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := sel.SelectKey(context.Background(), "", "abc"); err == nil {
		t.Fatal("expected error for empty session id")
	}
}
