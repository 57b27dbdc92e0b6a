package helix

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMediaType is the URL segment used when no media type is given.
	DefaultMediaType = "videos"

	// DefaultFormat is the response extension used when none is given.
	DefaultFormat = "json"
)

// Config holds the tenancy credentials for one deployment, builds scoped
// URLs and hands out cached signatures. It is safe for concurrent use.
type Config struct {
	mu    sync.RWMutex
	creds Credentials

	httpClient *http.Client
	store      SignatureStore
	refresh    singleflight.Group
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Config.
type Option func(*Config)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.httpClient.Timeout = timeout
	}
}

// WithSignatureStore replaces the in-memory signature cache.
func WithSignatureStore(store SignatureStore) Option {
	return func(c *Config) {
		if store != nil {
			c.store = store
		}
	}
}

// WithClock overrides the time source used for signature expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger for request and signature events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Config for the given credentials.
func New(creds Credentials, opts ...Option) (*Config, error) {
	if strings.TrimSpace(creds.Site) == "" {
		return nil, ErrSiteRequired
	}
	creds.Site = strings.TrimSuffix(creds.Site, "/")

	c := &Config{
		creds:      creds,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		store:      NewMemoryStore(),
		now:        time.Now,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Load reads credentials from path and creates a Config from them.
// An empty path means DefaultCredentialsFile.
func Load(path string, opts ...Option) (*Config, error) {
	creds, err := LoadCredentials(path)
	if err != nil {
		return nil, err
	}
	return New(creds, opts...)
}

// Credentials returns a copy of the current credentials.
func (c *Config) Credentials() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

// LicenseKey returns the license key signatures are requested for.
func (c *Config) LicenseKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds.LicenseKey
}

// ScopeToLibrary narrows subsequent URLs to the given library.
func (c *Config) ScopeToLibrary(library string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds.Library = library
}

// ScopeToCompany narrows subsequent URLs to the given company.
func (c *Config) ScopeToCompany(company string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds.Company = company
}

// ScopeToReseller narrows subsequent URLs to the given reseller.
func (c *Config) ScopeToReseller(reseller string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds.Reseller = reseller
}

// URLOptions describes one resource URL.
type URLOptions struct {
	MediaType string // defaults to DefaultMediaType
	GUID      string
	Action    string
	Format    string // defaults to DefaultFormat
	// ContentType replaces Format as the extension when set.
	ContentType string
	// OmitExtension drops the extension unless ContentType is set.
	OmitExtension bool
}

// BuildURL builds a URL from the site, each tenancy level that is present and opts.
//
// Scope levels are appended independently: a company without a reseller
// still produces "/companies/{company}".
func (c *Config) BuildURL(opts URLOptions) string {
	creds := c.Credentials()

	var b strings.Builder
	b.WriteString(creds.Site)

	if creds.Reseller != "" {
		b.WriteString("/resellers/" + creds.Reseller)
	}
	if creds.Company != "" {
		b.WriteString("/companies/" + creds.Company)
	}
	if creds.Library != "" {
		b.WriteString("/libraries/" + creds.Library)
	}

	mediaType := opts.MediaType
	if mediaType == "" {
		mediaType = DefaultMediaType
	}
	b.WriteString("/" + mediaType)

	if opts.GUID != "" {
		b.WriteString("/" + opts.GUID)
	}
	if opts.Action != "" {
		b.WriteString("/" + opts.Action)
	}

	if ext := opts.extension(); ext != "" {
		b.WriteString("." + ext)
	}

	return b.String()
}

func (o URLOptions) extension() string {
	switch {
	case o.ContentType != "":
		return o.ContentType
	case o.OmitExtension:
		return ""
	case o.Format != "":
		return o.Format
	default:
		return DefaultFormat
	}
}
