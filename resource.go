package helix

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Resource is a single media resource bound to the Config it was loaded through.
type Resource struct {
	kind   Kind
	attrs  Attributes
	config *Config
}

func newResource(cfg *Config, kind Kind, attrs Attributes) *Resource {
	if attrs == nil {
		attrs = Attributes{}
	}
	return &Resource{kind: kind, attrs: attrs, config: cfg}
}

// Kind returns the media kind of the resource.
func (r *Resource) Kind() Kind { return r.kind }

// TypeName returns the display name of the resource type, e.g. "Video".
func (r *Resource) TypeName() string {
	return cases.Title(language.English).String(r.kind.Name)
}

// GUID returns the resource identifier.
func (r *Resource) GUID() string {
	return r.attrs.String(r.kind.GUIDName)
}

// Attributes returns a copy of the resource attributes.
func (r *Resource) Attributes() Attributes {
	return r.attrs.clone()
}

// Get returns the attribute named key, or an *AttributeError when the
// resource does not carry it.
func (r *Resource) Get(key string) (any, error) {
	v, ok := r.attrs.Lookup(key)
	if !ok {
		return nil, &AttributeError{Name: key, Owner: r.TypeName()}
	}
	return v, nil
}

// Load replaces the attributes with the ones the service holds for this GUID.
func (r *Resource) Load(ctx context.Context, params url.Values) error {
	guid := r.GUID()
	rawURL := r.config.BuildURL(URLOptions{
		MediaType: r.kind.Plural,
		GUID:      guid,
		Format:    "json",
	})

	raw, err := r.config.GetResponse(ctx, rawURL, SignatureView, params)
	if err != nil {
		return fmt.Errorf("load %s %s: %w", r.kind.Name, guid, err)
	}

	attrs, ok := massageAttributes(raw, r.kind)
	if !ok {
		return fmt.Errorf("load %s %s: %w", r.kind.Name, guid, ErrNotFound)
	}
	if _, has := attrs[r.kind.GUIDName]; !has {
		attrs[r.kind.GUIDName] = guid
	}
	r.attrs = attrs
	return nil
}

// Update sends attrs to the service as {kind}[key]=value fields and merges
// them into the local attributes on success.
func (r *Resource) Update(ctx context.Context, attrs Attributes) error {
	rawURL := r.config.BuildURL(URLOptions{
		MediaType: r.kind.Plural,
		GUID:      r.GUID(),
		Format:    "xml",
	})

	if _, err := r.config.signedForm(ctx, http.MethodPut, rawURL, SignatureUpdate, attrs.form(r.kind.Name)); err != nil {
		return fmt.Errorf("update %s %s: %w", r.kind.Name, r.GUID(), err)
	}

	for k, v := range attrs {
		r.attrs[k] = v
	}
	return nil
}

// Destroy deletes the resource on the service.
func (r *Resource) Destroy(ctx context.Context) error {
	rawURL := r.config.BuildURL(URLOptions{
		MediaType: r.kind.Plural,
		GUID:      r.GUID(),
		Format:    "xml",
	})

	if err := r.config.signedDelete(ctx, rawURL, SignatureUpdate); err != nil {
		return fmt.Errorf("destroy %s %s: %w", r.kind.Name, r.GUID(), err)
	}
	return nil
}

// fetchAction downloads the raw payload of a per-resource action such as
// "file" or "play". An empty contentType requests the URL without extension.
func (r *Resource) fetchAction(ctx context.Context, action, contentType string) ([]byte, error) {
	rawURL := r.config.BuildURL(URLOptions{
		MediaType:     r.kind.Plural,
		GUID:          r.GUID(),
		Action:        action,
		ContentType:   contentType,
		OmitExtension: true,
	})

	data, err := r.config.signedGet(ctx, rawURL, SignatureView, nil)
	if err != nil {
		return nil, fmt.Errorf("%s %s %s: %w", action, r.kind.Name, r.GUID(), err)
	}
	return data, nil
}
