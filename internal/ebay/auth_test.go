package ebay_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/ebay-seller-connect/internal/ebay"
)

// tokenJSON returns a valid eBay client-credentials token response.
func tokenJSON(token string) []byte {
	return fmt.Appendf(nil,
		`{"access_token":%q,"expires_in":7200,"token_type":"Application Access Token"}`,
		token,
	)
}

func countingTokenServer(t *testing.T, calls *atomic.Int32, token string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(tokenJSON(fmt.Sprintf("%s-%d", token, n)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAppTokenCache_Token(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantErr   bool
		wantToken string
		wantKind  ebay.Kind
	}{
		{
			name: "successful token fetch",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write(tokenJSON("test-token-123"))
			},
			wantToken: "test-token-123",
		},
		{
			name: "invalid client credentials",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"client authentication failed"}`))
			},
			wantErr:  true,
			wantKind: ebay.KindServer,
		},
		{
			name: "server returns 500",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr:  true,
			wantKind: ebay.KindServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			cache := ebay.NewAppTokenCache("test-app-id", "test-cert-id", ebay.WithTokenURL(srv.URL))

			token, err := cache.Token(context.Background())

			if tt.wantErr {
				require.Error(t, err)
				var e *ebay.Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, tt.wantKind, e.Kind)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestAppTokenCache_Caching(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := countingTokenServer(t, &calls, "cached")

	cache := ebay.NewAppTokenCache("app", "cert", ebay.WithTokenURL(srv.URL))

	token1, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached-1", token1)

	token2, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cached-1", token2)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAppTokenCache_RefreshOnExpiry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := countingTokenServer(t, &calls, "expiring")

	now := time.Now()
	currentTime := now
	var mu sync.Mutex

	cache := ebay.NewAppTokenCache(
		"app", "cert",
		ebay.WithTokenURL(srv.URL),
		ebay.WithExpiryBuffer(0),
		ebay.WithNowFunc(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return currentTime
		}),
	)

	_, err := cache.Token(context.Background())
	require.NoError(t, err)

	mu.Lock()
	currentTime = now.Add(7100 * time.Second)
	mu.Unlock()

	token, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "expiring-1", token, "still valid without a buffer")

	mu.Lock()
	currentTime = now.Add(7201 * time.Second)
	mu.Unlock()

	token, err = cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "expiring-2", token)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAppTokenCache_Invalidate(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := countingTokenServer(t, &calls, "inv")

	cache := ebay.NewAppTokenCache("app", "cert", ebay.WithTokenURL(srv.URL))

	_, err := cache.Token(context.Background())
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(context.Background()))

	token, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "inv-2", token)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAppTokenCache_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(tokenJSON("concurrent-token"))
	}))
	defer srv.Close()

	cache := ebay.NewAppTokenCache("app", "cert", ebay.WithTokenURL(srv.URL))

	const goroutines = 10

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			token, err := cache.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "concurrent-token", token)
		}()
	}
	wg.Wait()

	// Concurrent misses may each fetch; later calls are served from the slot.
	before := calls.Load()
	assert.LessOrEqual(t, before, int32(goroutines))

	_, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, calls.Load())
}

func TestAppTokenCache_RequestFormat(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "my-app-id", user)
		assert.Equal(t, "my-cert-id", pass)

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		assert.Contains(t, r.FormValue("scope"), "api.ebay.com")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(tokenJSON("format-test-token"))
	}))
	defer srv.Close()

	cache := ebay.NewAppTokenCache("my-app-id", "my-cert-id", ebay.WithTokenURL(srv.URL))

	token, err := cache.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "format-test-token", token)
}

func TestAppTokenCache_RedisSlotSharedAcrossCaches(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var calls atomic.Int32
	srv := countingTokenServer(t, &calls, "shared")

	a := ebay.NewAppTokenCache("app", "cert",
		ebay.WithTokenURL(srv.URL), ebay.WithSlot(ebay.NewRedisSlot(rdb, "")))
	b := ebay.NewAppTokenCache("app", "cert",
		ebay.WithTokenURL(srv.URL), ebay.WithSlot(ebay.NewRedisSlot(rdb, "")))

	tokA, err := a.Token(context.Background())
	require.NoError(t, err)
	tokB, err := b.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, tokA, tokB)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, mr.Exists("seller-connect:app-token"))

	require.NoError(t, b.Invalidate(context.Background()))
	assert.False(t, mr.Exists("seller-connect:app-token"))
}

func TestRedisSlot_StoreExpired(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	slot := ebay.NewRedisSlot(rdb, "k")
	ctx := context.Background()

	require.NoError(t, slot.Store(ctx, &ebay.AppToken{Token: "t", ExpiresAt: time.Now().Add(time.Hour)}))
	got, err := slot.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "t", got.Token)
	assert.Greater(t, mr.TTL("k"), 59*time.Minute)

	require.NoError(t, slot.Store(ctx, &ebay.AppToken{Token: "old", ExpiresAt: time.Now().Add(-time.Minute)}))
	got, err = slot.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
