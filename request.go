package helix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const formContentType = "application/x-www-form-urlencoded"

// GetResponse performs a GET against rawURL carrying a signature of type t
// plus params, and decodes the JSON body. The result is a map[string]any or
// a []any depending on the endpoint; an empty body decodes to nil.
func (c *Config) GetResponse(ctx context.Context, rawURL string, t SignatureType, params url.Values) (any, error) {
	body, err := c.signedGet(ctx, rawURL, t, params)
	if err != nil {
		return nil, err
	}
	return decodeJSON(body)
}

func (c *Config) signedGet(ctx context.Context, rawURL string, t SignatureType, params url.Values) ([]byte, error) {
	query, err := c.signedValues(ctx, t, params)
	if err != nil {
		return nil, err
	}
	return c.doRequest(ctx, http.MethodGet, rawURL, query, nil, "")
}

func (c *Config) signedDelete(ctx context.Context, rawURL string, t SignatureType) error {
	query, err := c.signedValues(ctx, t, nil)
	if err != nil {
		return err
	}
	_, err = c.doRequest(ctx, http.MethodDelete, rawURL, query, nil, "")
	return err
}

// signedForm sends form as a url-encoded body with the signature alongside it.
func (c *Config) signedForm(ctx context.Context, method, rawURL string, t SignatureType, form url.Values) ([]byte, error) {
	values, err := c.signedValues(ctx, t, form)
	if err != nil {
		return nil, err
	}
	return c.doRequest(ctx, method, rawURL, nil, strings.NewReader(values.Encode()), formContentType)
}

func (c *Config) signedValues(ctx context.Context, t SignatureType, params url.Values) (url.Values, error) {
	sig, err := c.Signature(ctx, t, nil)
	if err != nil {
		return nil, err
	}
	values := make(url.Values, len(params)+1)
	for k, v := range params {
		values[k] = append([]string(nil), v...)
	}
	values.Set("signature", sig)
	return values, nil
}

// doRequest performs one HTTP request and returns the body of a 2xx response.
func (c *Config) doRequest(ctx context.Context, method, rawURL string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	target := rawURL
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}

	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("helix request", "method", method, "url", rawURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	return data, nil
}

func decodeJSON(body []byte) (any, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return v, nil
}
