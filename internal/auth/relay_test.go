package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRelayTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return rdb, mr
}

func clearedTrigger() *RefreshTrigger {
	tr := NewRefreshTrigger()
	tr.CheckAndClear()
	tr.drainWake()
	return tr
}

func TestTriggerRelayPropagatesToOtherReplica(t *testing.T) {
	rdb, _ := newRelayTestClient(t)

	localA, localB := clearedTrigger(), clearedTrigger()
	relayA := NewTriggerRelay(localA, rdb, "auth:refresh", nil)
	relayB := NewTriggerRelay(localB, rdb, "auth:refresh", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 2)
	go func() { done <- relayA.Listen(ctx) }()
	go func() { done <- relayB.Listen(ctx) }()

	// Publish until B's subscription is live.
	waitFor(t, "relayed trigger", func() bool {
		relayA.Set()
		return localB.CheckAndClear()
	})
	if !localA.CheckAndClear() {
		t.Fatal("expected Set to raise the local trigger")
	}

	cancel()
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("listen: %v", err)
		}
	}
}

func TestTriggerRelayIgnoresOwnMessages(t *testing.T) {
	rdb, _ := newRelayTestClient(t)

	local := clearedTrigger()
	relay := NewTriggerRelay(local, rdb, "auth:refresh", nil)
	peer := NewTriggerRelay(clearedTrigger(), rdb, "auth:refresh", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = relay.Listen(ctx) }()
	go func() { _ = peer.Listen(ctx) }()

	// A peer message proves the subscription is live.
	waitFor(t, "subscription", func() bool {
		peer.Set()
		return local.CheckAndClear()
	})
	// Let in-flight peer announcements land before checking for echoes.
	time.Sleep(50 * time.Millisecond)
	local.CheckAndClear()

	relay.Set()
	if !local.CheckAndClear() {
		t.Fatal("expected local raise from Set")
	}
	// The echo of our own publish arrives shortly; it must be ignored.
	time.Sleep(50 * time.Millisecond)
	if local.CheckAndClear() {
		t.Fatal("own publish must not raise the trigger a second time")
	}
}

func TestTriggerRelaySetDoesNotWaitOnRedis(t *testing.T) {
	// Nothing listens on this address; Set must not dial it.
	rdb := redis.NewClient(&redis.Options{Addr: "10.255.255.1:6379", DialTimeout: 5 * time.Second})
	t.Cleanup(func() { _ = rdb.Close() })

	local := clearedTrigger()
	relay := NewTriggerRelay(local, rdb, "auth:refresh", nil)

	start := time.Now()
	for i := 0; i < 10; i++ {
		relay.Set()
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("Set blocked for %s", elapsed)
	}
	if !local.CheckAndClear() {
		t.Fatal("expected local raise")
	}
	if len(relay.pending) != 1 {
		t.Fatalf("expected announcements to coalesce into one, got %d", len(relay.pending))
	}
}

func TestTriggerRelayListenSurvivesRedisOutage(t *testing.T) {
	rdb, mr := newRelayTestClient(t)
	mr.Close()

	local := clearedTrigger()
	relay := NewTriggerRelay(local, rdb, "auth:refresh", nil)
	relay.Set()
	if !local.CheckAndClear() {
		t.Fatal("expected local raise despite unreachable redis")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := relay.Listen(ctx); err != nil {
		t.Fatalf("expected outage to be absorbed, got %v", err)
	}
}

func TestTriggerRelayWithoutClient(t *testing.T) {
	local := clearedTrigger()
	relay := NewTriggerRelay(local, nil, "auth:refresh", nil)
	relay.Set()
	if !local.CheckAndClear() {
		t.Fatal("expected local raise")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := relay.Listen(ctx); err != nil {
		t.Fatalf("expected nil from local-only listen, got %v", err)
	}
}
