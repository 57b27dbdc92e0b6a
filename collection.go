package helix

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Collection performs class-level operations for one media kind and wraps
// each resulting Resource into T.
type Collection[T any] struct {
	config *Config
	kind   Kind
	wrap   func(*Resource) T
}

func newCollection[T any](cfg *Config, kind Kind, wrap func(*Resource) T) *Collection[T] {
	return &Collection[T]{config: cfg, kind: kind, wrap: wrap}
}

// Kind returns the media kind of the collection.
func (c *Collection[T]) Kind() Kind { return c.kind }

// New wraps attrs into an instance without contacting the service.
func (c *Collection[T]) New(attrs Attributes) T {
	return c.wrap(newResource(c.config, c.kind, attrs))
}

// Create posts attrs with an ingest signature and returns the created resource.
func (c *Collection[T]) Create(ctx context.Context, attrs Attributes) (T, error) {
	var zero T
	rawURL := c.config.BuildURL(URLOptions{
		MediaType: c.kind.Plural,
		Action:    "create_many",
	})

	body, err := c.config.signedForm(ctx, http.MethodPost, rawURL, SignatureIngest, attrs.form(""))
	if err != nil {
		return zero, fmt.Errorf("create %s: %w", c.kind.Name, err)
	}

	raw, err := decodeJSON(body)
	if err != nil {
		return zero, fmt.Errorf("create %s: %w", c.kind.Name, err)
	}

	created, ok := massageAttributes(raw, c.kind)
	if !ok {
		created = Attributes{}
	}
	return c.New(created), nil
}

// Find loads the resource identified by guid.
func (c *Collection[T]) Find(ctx context.Context, guid string) (T, error) {
	var zero T
	r := newResource(c.config, c.kind, Attributes{c.kind.GUIDName: guid})
	if err := r.Load(ctx, nil); err != nil {
		return zero, err
	}
	return c.wrap(r), nil
}

// FindAll lists resources matching query. A response without the plural
// root key yields an empty slice; otherwise elements keep their order.
func (c *Collection[T]) FindAll(ctx context.Context, query url.Values) ([]T, error) {
	rawURL := c.config.BuildURL(URLOptions{
		MediaType: c.kind.Plural,
		Format:    "json",
	})

	raw, err := c.config.GetResponse(ctx, rawURL, SignatureView, query)
	if err != nil {
		return nil, fmt.Errorf("find all %s: %w", c.kind.Plural, err)
	}

	results := []T{}
	root, _ := raw.(map[string]any)
	dataSets, ok := root[c.kind.Plural].([]any)
	if !ok {
		return results, nil
	}

	for _, ds := range dataSets {
		attrs, _ := ds.(map[string]any)
		results = append(results, c.New(Attributes(attrs)))
	}
	return results, nil
}

// Where is FindAll under the name callers filtering by query expect.
func (c *Collection[T]) Where(ctx context.Context, query url.Values) ([]T, error) {
	return c.FindAll(ctx, query)
}

// All lists every resource of the kind in the current scope.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	return c.FindAll(ctx, nil)
}
