package helix_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/helixmedia/helix"
	"github.com/helixmedia/helix/helixtest"
)

const testLicenseKey = "test-license"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestConfig(t *testing.T, creds helix.Credentials, opts ...helix.Option) (*helix.Config, *helixtest.Server) {
	t.Helper()

	srv := helixtest.NewServer(t, testLicenseKey)
	creds.Site = srv.URL()
	if creds.LicenseKey == "" {
		creds.LicenseKey = testLicenseKey
	}

	cfg, err := helix.New(creds, opts...)
	require.NoError(t, err)
	return cfg, srv
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key helix.SignatureKey) (helix.CachedSignature, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(helix.CachedSignature), args.Bool(1), args.Error(2)
}

func (m *MockStore) Set(ctx context.Context, key helix.SignatureKey, sig helix.CachedSignature) error {
	args := m.Called(ctx, key, sig)
	return args.Error(0)
}

func TestConfig_Signature(t *testing.T) {
	ctx := context.Background()

	t.Run("fetched once then cached", func(t *testing.T) {
		cfg, srv := newTestConfig(t, helix.Credentials{})

		first, err := cfg.Signature(ctx, helix.SignatureView, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, first)
		assert.NotContains(t, first, "\n")

		second, err := cfg.Signature(ctx, helix.SignatureView, nil)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, srv.SignatureFetches(helix.SignatureView))
	})

	t.Run("types cached independently", func(t *testing.T) {
		cfg, srv := newTestConfig(t, helix.Credentials{})

		view, err := cfg.Signature(ctx, helix.SignatureView, nil)
		require.NoError(t, err)
		ingest, err := cfg.Signature(ctx, helix.SignatureIngest, nil)
		require.NoError(t, err)

		assert.NotEqual(t, view, ingest)
		assert.Equal(t, 1, srv.SignatureFetches(helix.SignatureView))
		assert.Equal(t, 1, srv.SignatureFetches(helix.SignatureIngest))
		assert.Zero(t, srv.SignatureFetches(helix.SignatureUpdate))
	})

	t.Run("refreshed when expired", func(t *testing.T) {
		clock := newTestClock()
		cfg, srv := newTestConfig(t, helix.Credentials{}, helix.WithClock(clock.Now))

		first, err := cfg.Signature(ctx, helix.SignatureUpdate, nil)
		require.NoError(t, err)

		clock.Advance(helix.SignatureDuration - time.Second)
		again, err := cfg.Signature(ctx, helix.SignatureUpdate, nil)
		require.NoError(t, err)
		assert.Equal(t, first, again)
		assert.Equal(t, 1, srv.SignatureFetches(helix.SignatureUpdate))

		clock.Advance(time.Second)
		refreshed, err := cfg.Signature(ctx, helix.SignatureUpdate, nil)
		require.NoError(t, err)
		assert.NotEqual(t, first, refreshed)
		assert.Equal(t, 2, srv.SignatureFetches(helix.SignatureUpdate))
	})

	t.Run("invalid type", func(t *testing.T) {
		cfg, srv := newTestConfig(t, helix.Credentials{})

		_, err := cfg.Signature(ctx, helix.SignatureType("bogus"), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, helix.ErrInvalidSignatureType)
		assert.Equal(t, "I don't understand 'bogus'. Please give me one of :ingest, :update, or :view.", err.Error())
		assert.Empty(t, srv.SignatureQueries())
	})

	t.Run("license key required", func(t *testing.T) {
		cfg, err := helix.New(helix.Credentials{Site: "http://localhost"})
		require.NoError(t, err)

		_, err = cfg.Signature(ctx, helix.SignatureView, nil)
		assert.ErrorIs(t, err, helix.ErrLicenseKeyRequired)
	})

	t.Run("rejected license key is not cached", func(t *testing.T) {
		store := helix.NewMemoryStore()
		cfg, _ := newTestConfig(t, helix.Credentials{LicenseKey: "wrong"}, helix.WithSignatureStore(store))

		_, err := cfg.Signature(ctx, helix.SignatureView, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, helix.ErrUnauthorized)
		assert.Zero(t, store.Len())
	})

	t.Run("concurrent callers share one fetch", func(t *testing.T) {
		cfg, srv := newTestConfig(t, helix.Credentials{})

		const callers = 20
		tokens := make([]string, callers)
		errs := make([]error, callers)

		var wg sync.WaitGroup
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tokens[i], errs[i] = cfg.Signature(ctx, helix.SignatureView, nil)
			}()
		}
		wg.Wait()

		for i := range callers {
			require.NoError(t, errs[i])
			assert.Equal(t, tokens[0], tokens[i])
		}
		assert.Equal(t, 1, srv.SignatureFetches(helix.SignatureView))
	})

	t.Run("cancelled caller does not fail the others", func(t *testing.T) {
		arrived := make(chan struct{}, 1)
		release := make(chan struct{})
		var fetches atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fetches.Add(1)
			arrived <- struct{}{}
			<-release
			_, _ = w.Write([]byte("shared-token\n"))
		}))
		t.Cleanup(srv.Close)

		store := helix.NewMemoryStore()
		cfg, err := helix.New(helix.Credentials{Site: srv.URL, LicenseKey: "lk"}, helix.WithSignatureStore(store))
		require.NoError(t, err)

		firstCtx, cancel := context.WithCancel(ctx)
		firstErr := make(chan error, 1)
		go func() {
			_, err := cfg.Signature(firstCtx, helix.SignatureView, nil)
			firstErr <- err
		}()
		<-arrived

		type result struct {
			token string
			err   error
		}
		second := make(chan result, 1)
		go func() {
			token, err := cfg.Signature(ctx, helix.SignatureView, nil)
			second <- result{token, err}
		}()
		time.Sleep(50 * time.Millisecond)

		cancel()
		assert.ErrorIs(t, <-firstErr, context.Canceled)

		close(release)
		got := <-second
		require.NoError(t, got.err)
		assert.Equal(t, "shared-token", got.token)
		assert.Equal(t, int32(1), fetches.Load())
		assert.Equal(t, 1, store.Len())
	})

	t.Run("cache keyed by license key", func(t *testing.T) {
		store := helix.NewMemoryStore()
		srv := helixtest.NewServer(t, testLicenseKey)

		cfg, err := helix.New(helix.Credentials{Site: srv.URL(), LicenseKey: testLicenseKey}, helix.WithSignatureStore(store))
		require.NoError(t, err)
		_, err = cfg.Signature(ctx, helix.SignatureView, nil)
		require.NoError(t, err)

		_, found, err := store.Get(ctx, helix.SignatureKey{LicenseKey: testLicenseKey, Type: helix.SignatureView})
		require.NoError(t, err)
		assert.True(t, found)

		_, found, err = store.Get(ctx, helix.SignatureKey{LicenseKey: "other", Type: helix.SignatureView})
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestConfig_SignatureURL(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ingest_key", r.URL.Path)
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte("token-1\n"))
	}))
	defer srv.Close()

	cfg, err := helix.New(helix.Credentials{Site: srv.URL, LicenseKey: "K 1"})
	require.NoError(t, err)

	token, err := cfg.Signature(context.Background(), helix.SignatureIngest, url.Values{
		"contributor": {"bob"},
		"company_id":  {"c1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "token-1", token)
	assert.Equal(t, "licenseKey=K+1&duration=1200&company_id=c1&contributor=bob", rawQuery)
}

func TestConfig_ExistingSignature(t *testing.T) {
	ctx := context.Background()
	cfg, _ := newTestConfig(t, helix.Credentials{})

	expired, err := cfg.SignatureExpired(ctx, helix.SignatureView)
	require.NoError(t, err)
	assert.True(t, expired)

	_, ok, err := cfg.ExistingSignature(ctx, helix.SignatureView)
	require.NoError(t, err)
	assert.False(t, ok)

	token, err := cfg.Signature(ctx, helix.SignatureView, nil)
	require.NoError(t, err)

	cached, ok, err := cfg.ExistingSignature(ctx, helix.SignatureView)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, token, cached)

	expired, err = cfg.SignatureExpired(ctx, helix.SignatureView)
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestConfig_SignatureStoreErrors(t *testing.T) {
	ctx := context.Background()
	key := helix.SignatureKey{LicenseKey: testLicenseKey, Type: helix.SignatureView}

	t.Run("read error", func(t *testing.T) {
		store := new(MockStore)
		store.On("Get", mock.Anything, key).Return(helix.CachedSignature{}, false, errors.New("disk gone"))

		cfg, srv := newTestConfig(t, helix.Credentials{}, helix.WithSignatureStore(store))

		_, err := cfg.Signature(ctx, helix.SignatureView, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read signature cache")
		assert.Zero(t, srv.SignatureFetches(helix.SignatureView))
		store.AssertExpectations(t)
	})

	t.Run("write error", func(t *testing.T) {
		store := new(MockStore)
		store.On("Get", mock.Anything, key).Return(helix.CachedSignature{}, false, nil)
		store.On("Set", mock.Anything, key, mock.AnythingOfType("helix.CachedSignature")).Return(errors.New("read only"))

		cfg, _ := newTestConfig(t, helix.Credentials{}, helix.WithSignatureStore(store))

		_, err := cfg.Signature(ctx, helix.SignatureView, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "write signature cache")
		store.AssertExpectations(t)
	})

	t.Run("cached entry served from store", func(t *testing.T) {
		clock := newTestClock()
		store := new(MockStore)
		store.On("Get", mock.Anything, key).Return(helix.CachedSignature{
			Token:     "stored-token",
			ExpiresAt: clock.Now().Add(time.Minute),
		}, true, nil)

		cfg, srv := newTestConfig(t, helix.Credentials{}, helix.WithSignatureStore(store), helix.WithClock(clock.Now))

		token, err := cfg.Signature(ctx, helix.SignatureView, nil)
		require.NoError(t, err)
		assert.Equal(t, "stored-token", token)
		assert.Zero(t, srv.SignatureFetches(helix.SignatureView))
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}
