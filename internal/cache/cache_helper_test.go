package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedQuiz struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, QuizCacheConfig.Prefix), server
}

func TestCacheHelper_SetAndGet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	in := cachedQuiz{ID: "quiz-1", Title: "Capitals"}
	if err := helper.Set(ctx, "quiz-1", in, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out cachedQuiz
	if err := helper.Get(ctx, "quiz-1", &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestCacheHelper_GetMiss(t *testing.T) {
	helper, _ := newTestHelper(t)

	var out cachedQuiz
	err := helper.Get(context.Background(), "missing", &out)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelper_Expiry(t *testing.T) {
	helper, server := newTestHelper(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "quiz-1", cachedQuiz{ID: "quiz-1"}, time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	server.FastForward(2 * time.Second)

	var out cachedQuiz
	if err := helper.Get(ctx, "quiz-1", &out); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected expired entry to miss, got %v", err)
	}
}

func TestCacheHelper_Delete(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "quiz-1", cachedQuiz{ID: "quiz-1"}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := helper.Delete(ctx, "quiz-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var out cachedQuiz
	if err := helper.Get(ctx, "quiz-1", &out); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected miss after delete, got %v", err)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	for _, key := range []string{"id:1", "id:2", "stats:1"} {
		if err := helper.Set(ctx, key, cachedQuiz{ID: key}, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "id:*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	var out cachedQuiz
	if err := helper.Get(ctx, "id:1", &out); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected id:1 invalidated, got %v", err)
	}
	if err := helper.Get(ctx, "stats:1", &out); err != nil {
		t.Errorf("expected stats:1 to survive, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	calls := 0
	load := func() (interface{}, error) {
		calls++
		return cachedQuiz{ID: "quiz-1", Title: "Capitals"}, nil
	}

	var out cachedQuiz
	if err := helper.CacheOrExecute(ctx, "quiz-1", &out, time.Minute, load); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if err := helper.CacheOrExecute(ctx, "quiz-1", &out, time.Minute, load); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected loader to run once, ran %d times", calls)
	}
	if out.Title != "Capitals" {
		t.Errorf("unexpected cached value: %+v", out)
	}
}

func TestCacheHelper_NilClient(t *testing.T) {
	helper := NewCacheHelper(nil, "quiz:")
	ctx := context.Background()

	var out cachedQuiz
	if err := helper.Get(ctx, "quiz-1", &out); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("expected ErrCacheNotAvailable, got %v", err)
	}
	if err := helper.Set(ctx, "quiz-1", cachedQuiz{}, time.Minute); err != nil {
		t.Errorf("Set without client must be a no-op, got %v", err)
	}

	// The loader must still run so an unconfigured cache degrades gracefully.
	if err := helper.CacheOrExecute(ctx, "quiz-1", &out, time.Minute, func() (interface{}, error) {
		return cachedQuiz{ID: "quiz-1"}, nil
	}); err != nil {
		t.Fatalf("CacheOrExecute without client failed: %v", err)
	}
	if out.ID != "quiz-1" {
		t.Errorf("expected loader result, got %+v", out)
	}
}
