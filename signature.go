package helix

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// SignatureDuration is how long a fetched signature stays cached. The
	// same value is sent to the server as the requested validity.
	SignatureDuration = 1200 * time.Second
)

// Signature returns a token of type t for the configured license key.
//
// A cached, unexpired token is returned without a network call. Otherwise a
// fresh one is requested from {site}/api/{t}_key, with extra appended to the
// query, and cached for SignatureDuration. Concurrent refreshes of the same
// key share a single request; each caller stops waiting when its own ctx
// is done.
func (c *Config) Signature(ctx context.Context, t SignatureType, extra url.Values) (string, error) {
	if !t.IsValid() {
		return "", &SignatureTypeError{Type: t}
	}

	key := SignatureKey{LicenseKey: c.LicenseKey(), Type: t}
	if key.LicenseKey == "" {
		return "", ErrLicenseKeyRequired
	}

	token, ok, err := c.existingSignature(ctx, key)
	if err != nil {
		return "", err
	}
	if ok {
		return token, nil
	}

	// The shared fetch outlives any one caller; the http.Client timeout bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.refresh.DoChan(key.String(), func() (any, error) {
		// another caller may have refreshed while this one waited
		if token, ok, err := c.existingSignature(fetchCtx, key); err == nil && ok {
			return token, nil
		}
		return c.fetchSignature(fetchCtx, key, extra)
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("fetch %s signature: %w", t, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// ExistingSignature returns the cached token of type t if it has not expired.
func (c *Config) ExistingSignature(ctx context.Context, t SignatureType) (string, bool, error) {
	return c.existingSignature(ctx, SignatureKey{LicenseKey: c.LicenseKey(), Type: t})
}

// SignatureExpired reports whether the token of type t must be refreshed
// before use. A token that was never fetched counts as expired.
func (c *Config) SignatureExpired(ctx context.Context, t SignatureType) (bool, error) {
	_, ok, err := c.ExistingSignature(ctx, t)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (c *Config) existingSignature(ctx context.Context, key SignatureKey) (string, bool, error) {
	sig, found, err := c.store.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("read signature cache: %w", err)
	}
	if !found || sig.Expired(c.now()) {
		return "", false, nil
	}
	return sig.Token, true, nil
}

func (c *Config) fetchSignature(ctx context.Context, key SignatureKey, extra url.Values) (string, error) {
	rawURL := c.signatureURL(key, extra)

	body, err := c.doRequest(ctx, http.MethodGet, rawURL, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("fetch %s signature: %w", key.Type, err)
	}

	sig := CachedSignature{
		Token:     strings.TrimSpace(string(body)),
		ExpiresAt: c.now().Add(SignatureDuration),
	}
	if err := c.store.Set(ctx, key, sig); err != nil {
		return "", fmt.Errorf("write signature cache: %w", err)
	}

	c.logger.Debug("signature refreshed",
		"type", key.Type,
		"expires_at", sig.ExpiresAt,
	)
	return sig.Token, nil
}

// signatureURL keeps licenseKey and duration first, in the order the service documents.
func (c *Config) signatureURL(key SignatureKey, extra url.Values) string {
	var b strings.Builder
	b.WriteString(c.Credentials().Site)
	b.WriteString("/api/")
	b.WriteString(string(key.Type))
	b.WriteString("_key?licenseKey=")
	b.WriteString(url.QueryEscape(key.LicenseKey))
	b.WriteString("&duration=")
	b.WriteString(strconv.Itoa(int(SignatureDuration / time.Second)))
	if len(extra) > 0 {
		b.WriteString("&")
		b.WriteString(extra.Encode())
	}
	return b.String()
}
