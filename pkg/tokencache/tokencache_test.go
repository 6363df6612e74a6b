package tokencache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"marketgw/pkg/tokencache"

	"github.com/stretchr/testify/assert"
)

func TestCache_SetAndGet(t *testing.T) {
	cache := tokencache.New()
	cache.Set("ecom", "jwt-abc", time.Minute)

	token, ok := cache.Get("ecom")
	assert.True(t, ok)
	assert.Equal(t, "jwt-abc", token)
}

func TestCache_GetUnknownKey(t *testing.T) {
	cache := tokencache.New()

	token, ok := cache.Get("voucher")
	assert.False(t, ok)
	assert.Empty(t, token)
}

func TestCache_ExpiredEntryIsMasked(t *testing.T) {
	cache := tokencache.New()
	cache.Set("ecom", "stale-token", 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)

	token, ok := cache.Get("ecom")
	assert.False(t, ok)
	assert.Empty(t, token)
}

func TestCache_SetOverwritesPreviousEntry(t *testing.T) {
	cache := tokencache.New()
	cache.Set("voucher", "old-token", time.Minute)
	cache.Set("voucher", "new-token", time.Minute)

	token, ok := cache.Get("voucher")
	assert.True(t, ok)
	assert.Equal(t, "new-token", token)
}

func TestCache_SetRefreshesExpiredKey(t *testing.T) {
	cache := tokencache.New()
	cache.Set("ecom", "first", 5*time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	cache.Set("ecom", "second", time.Minute)

	token, ok := cache.Get("ecom")
	assert.True(t, ok)
	assert.Equal(t, "second", token)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := tokencache.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			cache.Set("ecom", fmt.Sprintf("token-%d", n), time.Minute)
		}(i)
		go func() {
			defer wg.Done()
			cache.Get("ecom")
		}()
	}
	wg.Wait()

	// Whatever write landed last, the entry must be internally consistent.
	token, ok := cache.Get("ecom")
	assert.True(t, ok)
	assert.Contains(t, token, "token-")
}
