package redis

import (
	"context"
	"net"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"social-blog/config"
)

// newTestLocker connects to the Redis named by REDIS_TEST_ADDR
// ("host:port"), skipping the test when it is not set.
func newTestLocker(t *testing.T) *Locker {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("bad REDIS_TEST_ADDR %q", addr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("bad REDIS_TEST_ADDR %q", addr)
	}

	client, err := NewClient(context.Background(), config.RedisConfig{Host: host, Port: port, DB: 15})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return NewLocker(client, config.LockConfig{TTL: 2 * time.Second, Retry: 200})
}

func TestLockerMutualExclusion(t *testing.T) {
	locker := newTestLocker(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "reaction:Blog:1")
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("%d holders at once", maxSeen)
	}
}

func TestOfflineStoreDrainOrder(t *testing.T) {
	locker := newTestLocker(t)
	store := NewOfflineStore(locker.client)
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three"} {
		if err := store.Push(ctx, 9, []byte(msg)); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := store.Count(ctx, 9); n != 3 {
		t.Fatalf("Count = %d, want 3", n)
	}

	got, err := store.Drain(ctx, 9)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || string(got[0]) != "one" || string(got[2]) != "three" {
		t.Fatalf("Drain = %q", got)
	}
	if n, _ := store.Count(ctx, 9); n != 0 {
		t.Errorf("Count after drain = %d", n)
	}
}

func TestRetryDelayGrows(t *testing.T) {
	if d := retryDelay(1); d < 10*time.Millisecond || d >= 30*time.Millisecond {
		t.Errorf("retryDelay(1) = %v", d)
	}
	if d := retryDelay(10); d < 30*time.Millisecond {
		t.Errorf("retryDelay(10) = %v, want at least 30ms", d)
	}
}
